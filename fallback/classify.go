package fallback

import (
	"context"
	"errors"
	"strings"
)

// ClassifyError maps a generation transport error onto a trigger. Quota
// wording wins over timeout wording when both appear: quota exhaustion is
// the actionable cause.
func ClassifyError(err error) Trigger {
	if err == nil {
		return TriggerLLMError
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return TriggerAPIQuotaExceeded
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline exceeded"):
		return TriggerTimeout
	default:
		return TriggerLLMError
	}
}
