// Package retriever supplies maintenance records as supporting context for
// answer generation when the host has not already attached them to a
// request.
package retriever

import (
	"context"
	"strings"

	"github.com/gtaquino-automatelabs/proativo-sub001/normalize"
	"github.com/gtaquino-automatelabs/proativo-sub001/schema"
)

// Retriever fetches supporting records for a query. Implementations must
// honor ctx; returning no records is not an error.
type Retriever interface {
	Fetch(ctx context.Context, query string, limit int) ([]schema.Record, error)
}

// StaticRetriever serves records from a fixed in-memory slice, filtered by
// token overlap with the query. Useful for tests and demo setups.
type StaticRetriever struct {
	Records []schema.Record
}

// Fetch returns records sharing at least one normalized token with the
// query, up to limit.
func (r *StaticRetriever) Fetch(_ context.Context, query string, limit int) ([]schema.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	tokens := normalize.Tokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make([]schema.Record, 0, limit)
	for _, rec := range r.Records {
		content := strings.ToLower(rec.Content)
		for _, tok := range tokens {
			if strings.Contains(content, tok) {
				out = append(out, rec)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	// Callers receive copies so the shared backing records cannot be
	// mutated through a fetch result.
	return schema.CloneRecords(out), nil
}
