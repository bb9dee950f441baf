// Package cache provides the in-memory response cache for the answer core:
// capacity-bounded, per-entry TTL, exact and similarity-based lookup, tag
// invalidation and a best-effort background sweep. Correctness never
// depends on the sweep; expired entries are evicted lazily on read.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gtaquino-automatelabs/proativo-sub001/common/logger"
	"github.com/gtaquino-automatelabs/proativo-sub001/metrics"
	"github.com/gtaquino-automatelabs/proativo-sub001/normalize"
)

// Strategy selects how Get matches a query against cached entries.
type Strategy int

const (
	// ExactMatch requires an identical computed cache key.
	ExactMatch Strategy = iota
	// NormalizedMatch additionally scans live entries for the best
	// similarity match at or above the configured threshold.
	NormalizedMatch
)

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	switch s {
	case ExactMatch:
		return "exact_match"
	case NormalizedMatch:
		return "normalized_match"
	default:
		return "unknown"
	}
}

// TTL sizing bounds. Per-entry TTL scales with confidence and supporting
// data volume but always lands inside this window.
const (
	minTTL = 30 * time.Minute
	maxTTL = 4 * time.Hour
)

// Store is the shared mutable cache. All mutations hold one mutex, so two
// concurrent Sets cannot break the capacity invariant and a Get never
// observes a half-written entry.
type Store struct {
	mu                  sync.Mutex
	entries             map[string]*Entry
	maxSize             int
	baseTTL             time.Duration
	similarityThreshold float64

	totalRequests  int64
	hits           int64
	similarityHits int64
	misses         int64
	evictions      int64
	expiredRemoved int64
}

// New creates a Store with the given capacity, base TTL and similarity
// threshold. Non-positive arguments fall back to defaults.
func New(maxSize int, baseTTL time.Duration, similarityThreshold float64) *Store {
	if maxSize <= 0 {
		maxSize = 500
	}
	if baseTTL <= 0 {
		baseTTL = time.Hour
	}
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.8
	}
	return &Store{
		entries:             make(map[string]*Entry, maxSize),
		maxSize:             maxSize,
		baseTTL:             baseTTL,
		similarityThreshold: similarityThreshold,
	}
}

// Key computes the deterministic cache key for a query plus context
// snapshot: sha1 over the normalized query and a sorted context signature.
func Key(query string, context map[string]any) string {
	base := normalize.Normalize(query) + "|" + contextSignature(context)
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

func contextSignature(context map[string]any) string {
	if len(context) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", context[k])
		b.WriteByte(';')
	}
	return b.String()
}

// Get looks a query up. It returns the cached payload, whether the hit was
// by similarity rather than exact key, and whether anything was found.
// Expired entries encountered along the way are removed and treated as
// misses. A hit updates AccessCount and LastAccessedAt.
func (s *Store) Get(query string, context map[string]any, strategy Strategy) (any, bool, bool) {
	key := Key(query, context)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++

	if ent, ok := s.entries[key]; ok {
		if !ent.expired(now) {
			s.touch(ent, now)
			s.hits++
			// Synonym folding can land a rephrased query on the same
			// key; report that as a similarity hit so callers can tell
			// verbatim repeats from rephrasings.
			similar := ent.OriginalQuery != query
			if similar {
				s.similarityHits++
				metrics.IncCacheEvent("similarity_hit")
			} else {
				metrics.IncCacheEvent("hit")
			}
			return ent.Response, similar, true
		}
		s.removeLocked(ent.Key)
		s.expiredRemoved++
		metrics.IncCacheEvent("expired")
	}

	if strategy == NormalizedMatch {
		if ent, score := s.bestMatchLocked(query, now); ent != nil {
			s.touch(ent, now)
			s.hits++
			s.similarityHits++
			metrics.IncCacheEvent("similarity_hit")
			logger.Debugf("cache: similarity hit %.2f for %q via %q", score, query, ent.OriginalQuery)
			return ent.Response, true, true
		}
	}

	s.misses++
	metrics.IncCacheEvent("miss")
	return nil, false, false
}

// bestMatchLocked scans live entries for the highest-similarity match at or
// above the threshold. Ties break toward the most recently created entry.
// Expired entries found during the scan are removed inline.
func (s *Store) bestMatchLocked(query string, now time.Time) (*Entry, float64) {
	normalized := normalize.Normalize(query)
	if normalized == "" {
		return nil, 0
	}
	var expired []string
	var best *Entry
	bestScore := 0.0
	for _, ent := range s.entries {
		if ent.expired(now) {
			expired = append(expired, ent.Key)
			continue
		}
		score := normalize.Similarity(normalized, ent.NormalizedQuery)
		if score < s.similarityThreshold {
			continue
		}
		if score > bestScore || (score == bestScore && best != nil && ent.CreatedAt.After(best.CreatedAt)) {
			best = ent
			bestScore = score
		}
	}
	for _, key := range expired {
		s.removeLocked(key)
		s.expiredRemoved++
		metrics.IncCacheEvent("expired")
	}
	return best, bestScore
}

func (s *Store) touch(ent *Entry, now time.Time) {
	ent.AccessCount++
	ent.LastAccessedAt = now
}

// Set stores a response. A non-positive ttl means "derive it": the TTL
// formula scales the base TTL by confidence and supporting-record volume.
// The least-recently-accessed entry is evicted first when at capacity.
// Returns the computed cache key.
func (s *Store) Set(query string, response any, context map[string]any, ttl time.Duration, confidence float64, recordCount int, tags []string) string {
	key := Key(query, context)
	now := time.Now()
	if ttl <= 0 {
		ttl = s.computeTTL(confidence, recordCount)
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t != "" {
			tagSet[t] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.OriginalQuery = query
		ent.NormalizedQuery = normalize.Normalize(query)
		ent.Response = response
		ent.CreatedAt = now
		ent.LastAccessedAt = now
		ent.TTL = ttl
		ent.Tags = tagSet
		ent.Confidence = confidence
		return key
	}

	if len(s.entries) >= s.maxSize {
		s.evictLocked()
	}
	s.entries[key] = &Entry{
		Key:             key,
		OriginalQuery:   query,
		NormalizedQuery: normalize.Normalize(query),
		Response:        response,
		CreatedAt:       now,
		LastAccessedAt:  now,
		TTL:             ttl,
		Tags:            tagSet,
		Confidence:      confidence,
	}
	return key
}

// computeTTL derives a per-entry TTL: higher-confidence, richer-context
// answers keep longer; thin or uncertain answers get revalidated sooner.
func (s *Store) computeTTL(confidence float64, recordCount int) time.Duration {
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	if recordCount < 0 {
		recordCount = 0
	}
	confMult := 0.5 + 1.5*confidence
	volumeMult := 1.0 + math.Min(0.5, float64(recordCount)/20.0)
	ttl := time.Duration(float64(s.baseTTL) * confMult * volumeMult)
	if ttl < minTTL {
		ttl = minTTL
	}
	if ttl > maxTTL {
		ttl = maxTTL
	}
	return ttl
}

// evictLocked removes the least-recently-accessed entry; ties break toward
// the oldest CreatedAt.
func (s *Store) evictLocked() {
	var victim *Entry
	for _, ent := range s.entries {
		if victim == nil {
			victim = ent
			continue
		}
		if ent.LastAccessedAt.Before(victim.LastAccessedAt) ||
			(ent.LastAccessedAt.Equal(victim.LastAccessedAt) && ent.CreatedAt.Before(victim.CreatedAt)) {
			victim = ent
		}
	}
	if victim != nil {
		s.removeLocked(victim.Key)
		s.evictions++
		metrics.IncCacheEvent("eviction")
	}
}

func (s *Store) removeLocked(key string) {
	delete(s.entries, key)
}

// Invalidate removes every entry matching any of the given criteria:
// pattern is a case-insensitive substring of the original query text, tags
// match entries sharing any tag, olderThan matches entries created before
// it. Criteria are OR-combined; all-empty criteria remove nothing.
func (s *Store) Invalidate(pattern string, tags []string, olderThan time.Time) int {
	if pattern == "" && len(tags) == 0 && olderThan.IsZero() {
		return 0
	}
	lowered := strings.ToLower(pattern)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ent := range s.entries {
		match := false
		if pattern != "" && strings.Contains(strings.ToLower(ent.OriginalQuery), lowered) {
			match = true
		}
		if !match && len(tags) > 0 && ent.hasAnyTag(tags) {
			match = true
		}
		if !match && !olderThan.IsZero() && ent.CreatedAt.Before(olderThan) {
			match = true
		}
		if match {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry, s.maxSize)
}

// RemoveExpired drops every expired entry and returns how many were
// removed. Called by the background sweeper.
func (s *Store) RemoveExpired() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ent := range s.entries {
		if ent.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.expiredRemoved += int64(removed)
	return removed
}

// StartSweeper runs a periodic expiry sweep until ctx is cancelled. The
// sweep is housekeeping only; lazy eviction on read keeps the cache
// correct even when no sweeper runs.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.RemoveExpired(); n > 0 {
					logger.Debugf("cache: sweep removed %d expired entries", n)
				}
			}
		}
	}()
}

// Configure adjusts the store limits at runtime. Non-positive arguments
// leave the current value untouched. Shrinking maxSize evicts
// least-recently-accessed entries until the capacity invariant holds.
func (s *Store) Configure(maxSize int, baseTTL time.Duration, similarityThreshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxSize > 0 {
		s.maxSize = maxSize
		for len(s.entries) > s.maxSize {
			s.evictLocked()
		}
	}
	if baseTTL > 0 {
		s.baseTTL = baseTTL
	}
	if similarityThreshold > 0 && similarityThreshold <= 1 {
		s.similarityThreshold = similarityThreshold
	}
}

// SimilarityThreshold returns the current similarity threshold.
func (s *Store) SimilarityThreshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.similarityThreshold
}

// Snapshot aggregates the store counters at one point in time.
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	Hits           int64   `json:"hits"`
	SimilarityHits int64   `json:"similarity_hits"`
	Misses         int64   `json:"misses"`
	HitRate        float64 `json:"hit_rate"`
	MissRate       float64 `json:"miss_rate"`
	Size           int     `json:"size"`
	MaxSize        int     `json:"max_size"`
	Evictions      int64   `json:"evictions"`
	ExpiredCount   int     `json:"expired_count"`
	StaleCount     int     `json:"stale_count"`
	MemoryEstimate int64   `json:"memory_estimate_bytes"`
}

// Metrics computes the current counter snapshot.
func (s *Store) Metrics() Snapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TotalRequests:  s.totalRequests,
		Hits:           s.hits,
		SimilarityHits: s.similarityHits,
		Misses:         s.misses,
		Size:           len(s.entries),
		MaxSize:        s.maxSize,
		Evictions:      s.evictions,
	}
	if s.totalRequests > 0 {
		snap.HitRate = float64(s.hits) / float64(s.totalRequests)
		snap.MissRate = float64(s.misses) / float64(s.totalRequests)
	}
	for _, ent := range s.entries {
		switch ent.status(now) {
		case StatusExpired:
			snap.ExpiredCount++
		case StatusStale:
			snap.StaleCount++
		}
		snap.MemoryEstimate += estimateSize(ent)
	}
	return snap
}

// Info returns the admin view of the entry stored under the exact key for
// query+context, without touching access bookkeeping.
func (s *Store) Info(query string, context map[string]any) (EntryInfo, bool) {
	key := Key(query, context)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return EntryInfo{}, false
	}
	tags := make([]string, 0, len(ent.Tags))
	for t := range ent.Tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return EntryInfo{
		Key:             ent.Key,
		OriginalQuery:   ent.OriginalQuery,
		NormalizedQuery: ent.NormalizedQuery,
		CreatedAt:       ent.CreatedAt,
		LastAccessedAt:  ent.LastAccessedAt,
		AccessCount:     ent.AccessCount,
		TTLSeconds:      int(ent.TTL / time.Second),
		Status:          ent.status(now).String(),
		Tags:            tags,
		Confidence:      ent.Confidence,
	}, true
}

// Len returns the current number of entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// estimateSize approximates an entry's memory footprint. Payloads are
// opaque, so JSON length is used as a proxy with a flat fallback.
func estimateSize(ent *Entry) int64 {
	size := int64(len(ent.Key) + len(ent.OriginalQuery) + len(ent.NormalizedQuery))
	if b, err := json.Marshal(ent.Response); err == nil {
		size += int64(len(b))
	} else {
		size += 256
	}
	for t := range ent.Tags {
		size += int64(len(t))
	}
	return size
}
