package schema

// Record is a retrieved maintenance record supplied as supporting context
// for answer generation. Fields carries the raw column values when the
// record came from the data layer.
type Record struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Source  string         `json:"source,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// CloneRecords returns a deep copy so cached payloads cannot be mutated
// through a previously returned slice.
func CloneRecords(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.Fields != nil {
			fields := make(map[string]any, len(r.Fields))
			for k, v := range r.Fields {
				fields[k] = v
			}
			out[i].Fields = fields
		}
	}
	return out
}
