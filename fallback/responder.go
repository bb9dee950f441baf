package fallback

import (
	"strings"

	"github.com/gtaquino-automatelabs/proativo-sub001/common/logger"
	"github.com/gtaquino-automatelabs/proativo-sub001/normalize"
	"github.com/gtaquino-automatelabs/proativo-sub001/vocab"
)

// Fallback answers carry a confidence below the band of genuinely
// generated answers so downstream consumers can tell them apart.
const (
	templateConfidence   = 0.3
	predefinedConfidence = 0.25
	helpConfidence       = 0.2
	emergencyConfidence  = 0.1
)

// maxSuggestions bounds the suggestion list of any fallback response.
const maxSuggestions = 6

// predefined holds the fixed message+suggestions pairs for transport-level
// triggers. Membership in this table is what selects the PREDEFINED
// strategy for a non-domain query.
var predefined = map[Trigger]Response{
	TriggerLLMError: {
		Message: "The answer service hit an internal problem while processing your question. " +
			"Please try again in a moment.",
		Suggestions: []string{
			"Try asking the question again",
			"Rephrase the question with the equipment name",
		},
	},
	TriggerTimeout: {
		Message: "The answer took too long to generate and was interrupted. " +
			"Shorter, more specific questions usually complete faster.",
		Suggestions: []string{
			"Ask about one equipment at a time",
			"Narrow the question to a shorter period",
		},
	},
}

// Responder builds fallback answers from the static rule table. It is
// stateless and safe for concurrent use.
type Responder struct {
	// buildFn is swapped in tests to exercise the emergency path.
	buildFn func(Trigger, string) Response
}

// NewResponder creates a Responder with the default rule table.
func NewResponder() *Responder {
	r := &Responder{}
	r.buildFn = r.build
	return r
}

// Generate produces a fallback response for the trigger and original
// query. It never panics: any internal failure during strategy selection
// or formatting is replaced by the hardcoded emergency response.
func (r *Responder) Generate(trigger Trigger, query string) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("fallback: response construction failed: %v", rec)
			resp = Emergency(trigger)
		}
	}()
	build := r.buildFn
	if build == nil {
		build = r.build
	}
	return build(trigger, query)
}

// build evaluates the strategy decision table in order: out-of-domain
// queries get help suggestions, domain queries get a category template,
// transport errors get their predefined message, everything else gets
// general help.
func (r *Responder) build(trigger Trigger, query string) Response {
	if trigger == TriggerOutOfDomain {
		return r.helpResponse(trigger,
			"That seems to be outside what I can help with. I answer questions about "+
				"equipment, maintenance, failures and costs. For example:")
	}

	if queryHasDomainKeyword(query) {
		if tmpl, ok := matchTemplate(query); ok {
			return Response{
				Message:     tmpl.Message,
				Suggestions: capSuggestions(tmpl.Examples),
				Strategy:    StrategyTemplateBased,
				Trigger:     trigger,
				Confidence:  templateConfidence,
				Actionable:  true,
			}
		}
	}

	if base, ok := predefined[trigger]; ok {
		return Response{
			Message:     base.Message,
			Suggestions: capSuggestions(base.Suggestions),
			Strategy:    StrategyPredefined,
			Trigger:     trigger,
			Confidence:  predefinedConfidence,
			Actionable:  true,
		}
	}

	return r.helpResponse(trigger,
		"I could not produce a reliable answer for that question. Here are some "+
			"examples of questions I can answer:")
}

// helpResponse builds a HELP_SUGGESTIONS response with example queries
// drawn round-robin from every category template, deduplicated.
func (r *Responder) helpResponse(trigger Trigger, message string) Response {
	return Response{
		Message:     message,
		Suggestions: generalSuggestions(),
		Strategy:    StrategyHelpSuggestions,
		Trigger:     trigger,
		Confidence:  helpConfidence,
		Actionable:  true,
	}
}

// Emergency is the hardcoded last-resort response. It must always succeed,
// so it allocates nothing that can fail and consults no tables.
func Emergency(trigger Trigger) Response {
	return Response{
		Message: "The assistant is temporarily unable to answer. " +
			"Please try again later or contact the maintenance team directly.",
		Suggestions: nil,
		Strategy:    StrategyEscalation,
		Trigger:     trigger,
		Confidence:  emergencyConfidence,
		Actionable:  false,
	}
}

func queryHasDomainKeyword(query string) bool {
	for _, tok := range normalize.Tokens(query) {
		if _, ok := vocab.DomainKeywords[tok]; ok {
			return true
		}
	}
	return false
}

// matchTemplate finds the first category template whose keywords appear in
// the normalized query.
func matchTemplate(query string) (vocab.Template, bool) {
	tokens := normalize.Tokens(query)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	lowered := strings.ToLower(query)
	for _, tmpl := range vocab.Templates {
		for _, kw := range tmpl.Keywords {
			if _, ok := set[kw]; ok {
				return tmpl, true
			}
			if strings.Contains(lowered, kw) {
				return tmpl, true
			}
		}
	}
	return vocab.Template{}, false
}

// generalSuggestions interleaves one example per category at a time until
// the bound is reached.
func generalSuggestions() []string {
	seen := make(map[string]struct{}, maxSuggestions)
	out := make([]string, 0, maxSuggestions)
	for round := 0; ; round++ {
		added := false
		for _, tmpl := range vocab.Templates {
			if round >= len(tmpl.Examples) {
				continue
			}
			ex := tmpl.Examples[round]
			if _, dup := seen[ex]; dup {
				continue
			}
			seen[ex] = struct{}{}
			out = append(out, ex)
			added = true
			if len(out) >= maxSuggestions {
				return out
			}
		}
		if !added {
			return out
		}
	}
}

func capSuggestions(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= maxSuggestions {
			break
		}
	}
	return out
}
