package cache

import "time"

// Status partitions an entry's lifetime: fresh, stale (past 75% of its TTL
// but still servable) and expired.
type Status int

const (
	StatusFresh Status = iota
	StatusStale
	StatusExpired
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// staleFraction of the TTL after which an entry is flagged stale.
const staleFraction = 0.75

// Entry is one cached answer payload with its bookkeeping.
type Entry struct {
	Key             string
	OriginalQuery   string
	NormalizedQuery string
	Response        any
	CreatedAt       time.Time
	LastAccessedAt  time.Time
	AccessCount     int64
	TTL             time.Duration
	Tags            map[string]struct{}
	Confidence      float64
}

func (e *Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

func (e *Entry) stale(now time.Time) bool {
	elapsed := now.Sub(e.CreatedAt)
	return elapsed >= time.Duration(staleFraction*float64(e.TTL)) && elapsed <= e.TTL
}

func (e *Entry) status(now time.Time) Status {
	switch {
	case e.expired(now):
		return StatusExpired
	case e.stale(now):
		return StatusStale
	default:
		return StatusFresh
	}
}

func (e *Entry) hasAnyTag(tags []string) bool {
	for _, t := range tags {
		if _, ok := e.Tags[t]; ok {
			return true
		}
	}
	return false
}

// EntryInfo is the read-only view of an entry exposed to admin callers.
type EntryInfo struct {
	Key             string    `json:"key"`
	OriginalQuery   string    `json:"original_query"`
	NormalizedQuery string    `json:"normalized_query"`
	CreatedAt       time.Time `json:"created_at"`
	LastAccessedAt  time.Time `json:"last_accessed_at"`
	AccessCount     int64     `json:"access_count"`
	TTLSeconds      int       `json:"ttl_seconds"`
	Status          string    `json:"status"`
	Tags            []string  `json:"tags,omitempty"`
	Confidence      float64   `json:"confidence"`
}
