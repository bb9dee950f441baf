package fallback

import (
	"strings"

	"github.com/gtaquino-automatelabs/proativo-sub001/vocab"
)

// minResponseLength is the threshold below which a response counts as
// empty. Genuinely useful answers about maintenance data are longer.
const minResponseLength = 20

// Verdict is the validation outcome for one generated response. Trigger is
// meaningful only when Valid is false.
type Verdict struct {
	Valid   bool
	Trigger Trigger
}

// Validate inspects a generated response for adequacy. Checks run in a
// fixed order and the first failure determines the trigger:
//
//  1. empty or below the minimum length
//  2. hedging/apology/error phrasing in the response
//  3. off-topic subject markers in the query
//  4. no domain vocabulary in the response (unless it is a help message)
func Validate(response, query string) Verdict {
	trimmed := strings.TrimSpace(response)
	if len(trimmed) < minResponseLength {
		return Verdict{Trigger: TriggerEmptyResponse}
	}

	lowered := strings.ToLower(trimmed)
	for _, pattern := range vocab.InadequatePatterns {
		if strings.Contains(lowered, pattern) {
			return Verdict{Trigger: TriggerInvalidResponse}
		}
	}

	loweredQuery := strings.ToLower(query)
	for _, marker := range vocab.OffTopicMarkers {
		if strings.Contains(loweredQuery, marker) {
			return Verdict{Trigger: TriggerOutOfDomain}
		}
	}

	if !containsDomainKeyword(lowered) && !isHelpMessage(lowered) {
		return Verdict{Trigger: TriggerOutOfDomain}
	}

	return Verdict{Valid: true}
}

func containsDomainKeyword(lowered string) bool {
	for kw := range vocab.DomainKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	// Colloquial synonyms count as domain signal too; they fold onto
	// canonical keywords during normalization.
	for syn, canon := range vocab.Synonyms {
		if _, ok := vocab.DomainKeywords[canon]; !ok {
			continue
		}
		if strings.Contains(lowered, syn) {
			return true
		}
	}
	return false
}

func isHelpMessage(lowered string) bool {
	for _, indicator := range vocab.HelpIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}
