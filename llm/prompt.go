package llm

import (
	"strings"

	"github.com/gtaquino-automatelabs/proativo-sub001/schema"
)

const answerSystemPrompt = `You are a maintenance-data assistant. Answer the question using only the
maintenance records provided as context. Be specific: name equipment,
dates, statuses and costs when the records contain them. If the records do
not cover the question, say so briefly.`

// BuildPrompt renders the query and its supporting records into one
// generation prompt.
func BuildPrompt(query string, records []schema.Record) string {
	var b strings.Builder
	b.WriteString(answerSystemPrompt)
	b.WriteString("\n\n")
	if len(records) > 0 {
		b.WriteString("Maintenance records:\n")
		for _, rec := range records {
			b.WriteString("- ")
			if rec.ID != "" {
				b.WriteString("[")
				b.WriteString(rec.ID)
				b.WriteString("] ")
			}
			b.WriteString(strings.ReplaceAll(rec.Content, "\n", " "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}
