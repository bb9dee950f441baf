package fallback

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Trigger
	}{
		{
			name: "quota wording",
			err:  errors.New("insufficient quota for this request"),
			want: TriggerAPIQuotaExceeded,
		},
		{
			name: "rate limit wording",
			err:  errors.New("rate limit reached for gpt-4o"),
			want: TriggerAPIQuotaExceeded,
		},
		{
			name: "http 429",
			err:  errors.New("request failed with status 429"),
			want: TriggerAPIQuotaExceeded,
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("chat completion failed, err: %w", context.DeadlineExceeded),
			want: TriggerTimeout,
		},
		{
			name: "timeout wording",
			err:  errors.New("connection timed out"),
			want: TriggerTimeout,
		},
		{
			name: "quota wins over timeout wording",
			err:  errors.New("timeout waiting for quota window"),
			want: TriggerAPIQuotaExceeded,
		},
		{
			name: "generic failure",
			err:  errors.New("connection refused"),
			want: TriggerLLMError,
		},
		{
			name: "nil error",
			err:  nil,
			want: TriggerLLMError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
