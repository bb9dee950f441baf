// Package normalize canonicalizes free-text maintenance queries into a
// deterministic token form so that differently phrased questions can be
// compared and cached under one key.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gtaquino-automatelabs/proativo-sub001/vocab"
)

var (
	// Date tokens: 12/05/2023, 2023-05-12, 12-05-23 and similar.
	datePattern = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2})$`)
	// Equipment-looking tokens: TR-01, GE02, 12345.
	equipPattern = regexp.MustCompile(`^[a-z]{0,5}-?\d+[a-z0-9-]*$`)
	// Split on anything that is not a letter, digit, underscore, dash or
	// slash; dash and slash stay so dates and tags survive as one token.
	splitPattern = regexp.MustCompile(`[^\p{L}\p{N}_/-]+`)
)

// Tokens returns the sorted, deduplicated canonical token set for text.
// Empty or whitespace-only input yields an empty slice.
func Tokens(text string) []string {
	fields := splitPattern.Split(text, -1)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-/")
		if f == "" {
			continue
		}
		tok, ok := canonical(f)
		if !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// canonical maps one raw token to its canonical form, or reports that the
// token is dropped (stop word).
func canonical(raw string) (string, bool) {
	// Placeholders pass through unchanged so normalization is idempotent.
	if raw == vocab.PlaceholderEquipmentID || raw == vocab.PlaceholderDate {
		return raw, true
	}
	low := strings.ToLower(raw)
	switch {
	case datePattern.MatchString(low):
		return vocab.PlaceholderDate, true
	case equipPattern.MatchString(low):
		return vocab.PlaceholderEquipmentID, true
	}
	if syn, ok := vocab.Synonyms[low]; ok {
		low = syn
	}
	if _, stop := vocab.StopWords[low]; stop {
		return "", false
	}
	return low, true
}

// Normalize canonicalizes a free-text query. The result is stable under
// input token reordering: "A B C" and "C B A" normalize identically.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Similarity computes a Jaccard token-set overlap between two queries in
// [0,1]. Both inputs are normalized internally, so known synonyms and
// volatile tokens (IDs, dates) do not count as differences.
func Similarity(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		// Queries made entirely of stop words still compare equal to
		// themselves.
		at := strings.ToLower(strings.TrimSpace(a))
		bt := strings.ToLower(strings.TrimSpace(b))
		if at != "" && at == bt {
			return 1.0
		}
		return 0.0
	}
	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	shared := 0
	for _, t := range tb {
		if _, ok := set[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}

// EquipmentIDs extracts the raw equipment-looking tokens from text, in
// lowercase, for use in data-layer filter expressions.
func EquipmentIDs(text string) []string {
	fields := splitPattern.Split(text, -1)
	seen := make(map[string]struct{})
	out := make([]string, 0, 2)
	for _, f := range fields {
		f = strings.Trim(f, "-/")
		if f == "" {
			continue
		}
		low := strings.ToLower(f)
		if datePattern.MatchString(low) || !equipPattern.MatchString(low) {
			continue
		}
		if _, dup := seen[low]; dup {
			continue
		}
		seen[low] = struct{}{}
		out = append(out, low)
	}
	return out
}
