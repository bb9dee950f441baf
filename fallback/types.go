// Package fallback holds the decision layer that sits between generation
// and the caller: response validation, trigger classification and the
// construction of safe templated answers when a generated one cannot be
// trusted.
package fallback

// Trigger is the classified reason a fallback response is needed.
type Trigger int

const (
	TriggerLLMError Trigger = iota
	TriggerEmptyResponse
	TriggerLowConfidence
	TriggerUnsupportedQuery
	TriggerTimeout
	TriggerAPIQuotaExceeded
	TriggerInvalidResponse
	TriggerOutOfDomain
)

// String returns the string representation of Trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerLLMError:
		return "LLM_ERROR"
	case TriggerEmptyResponse:
		return "EMPTY_RESPONSE"
	case TriggerLowConfidence:
		return "LOW_CONFIDENCE"
	case TriggerUnsupportedQuery:
		return "UNSUPPORTED_QUERY"
	case TriggerTimeout:
		return "TIMEOUT"
	case TriggerAPIQuotaExceeded:
		return "API_QUOTA_EXCEEDED"
	case TriggerInvalidResponse:
		return "INVALID_RESPONSE"
	case TriggerOutOfDomain:
		return "OUT_OF_DOMAIN"
	default:
		return "UNKNOWN"
	}
}

// Strategy is the fallback-response construction method chosen for a
// given trigger and query.
type Strategy int

const (
	StrategyPredefined Strategy = iota
	StrategyTemplateBased
	StrategyHelpSuggestions
	StrategyEscalation
)

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyPredefined:
		return "PREDEFINED"
	case StrategyTemplateBased:
		return "TEMPLATE_BASED"
	case StrategyHelpSuggestions:
		return "HELP_SUGGESTIONS"
	case StrategyEscalation:
		return "ESCALATION"
	default:
		return "UNKNOWN"
	}
}

// Response is a structured fallback answer. Actionable is false only for
// the emergency/last-resort path, telling the UI layer not to present the
// suggestions as clickable next steps.
type Response struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
	Strategy    Strategy `json:"strategy_used"`
	Trigger     Trigger  `json:"trigger"`
	Confidence  float64  `json:"confidence"`
	Actionable  bool     `json:"actionable"`
}
