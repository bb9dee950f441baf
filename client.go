// Package proativo implements the answer core of a maintenance-data chat
// assistant: an intelligent response cache with similarity matching, LLM
// answer generation, response validation and a layered fallback engine
// that guarantees every query receives a structured reply.
package proativo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gtaquino-automatelabs/proativo-sub001/cache"
	"github.com/gtaquino-automatelabs/proativo-sub001/common/logger"
	"github.com/gtaquino-automatelabs/proativo-sub001/config"
	"github.com/gtaquino-automatelabs/proativo-sub001/fallback"
	"github.com/gtaquino-automatelabs/proativo-sub001/llm"
	"github.com/gtaquino-automatelabs/proativo-sub001/metrics"
	"github.com/gtaquino-automatelabs/proativo-sub001/normalize"
	"github.com/gtaquino-automatelabs/proativo-sub001/retriever"
	"github.com/gtaquino-automatelabs/proativo-sub001/schema"
	"github.com/gtaquino-automatelabs/proativo-sub001/vocab"
)

// Version is the answer-core release version.
const Version = "1.0.0"

// ErrEmptyQuery is returned when a request carries no query text. It is
// the only error Answer surfaces to the caller; every other failure mode
// degrades into a fallback or emergency result.
var ErrEmptyQuery = errors.New("query must not be empty")

// AnswerRequest is one question plus optional host-supplied context.
type AnswerRequest struct {
	Query string `json:"query"`

	// Context distinguishes otherwise identical queries in the cache
	// (user role, tenant, filters).
	Context map[string]any `json:"context,omitempty"`

	// Records are supporting maintenance records already fetched by the
	// host. When empty, the configured retriever is consulted.
	Records []schema.Record `json:"records,omitempty"`

	// Confidence is the host's own score for the eventual answer.
	// Negative means unset; the core then estimates one.
	Confidence float64 `json:"confidence,omitempty"`

	// SessionID attaches the exchange to a chat session when non-empty.
	SessionID string `json:"session_id,omitempty"`
}

// NewAnswerRequest creates a request for query with no host confidence.
func NewAnswerRequest(query string) AnswerRequest {
	return AnswerRequest{Query: query, Confidence: -1}
}

// AnswerResult is the structured reply for one request. Exactly one of
// the three origins applies: cache hit, fresh generation, or fallback.
type AnswerResult struct {
	Text            string   `json:"text"`
	Confidence      float64  `json:"confidence_score"`
	Sources         []string `json:"sources,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
	CacheUsed       bool     `json:"cache_used"`
	CacheSimilarity bool     `json:"cache_similarity"`
	FallbackUsed    bool     `json:"fallback_used"`
	FallbackReason  string   `json:"fallback_reason,omitempty"`
	Actionable      bool     `json:"actionable"`
	ProcessingMS    int64    `json:"processing_time_ms"`
}

// cachedAnswer is the payload stored in the cache. Fallback and emergency
// answers are never stored.
type cachedAnswer struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
}

// FallbackMetrics aggregates fallback activity since client creation.
type FallbackMetrics struct {
	Total      int64            `json:"total"`
	Emergency  int64            `json:"emergency"`
	ByTrigger  map[string]int64 `json:"by_trigger"`
	ByStrategy map[string]int64 `json:"by_strategy"`
}

// MetricsReport is the combined admin metrics view.
type MetricsReport struct {
	Cache    cache.Snapshot  `json:"cache"`
	Fallback FallbackMetrics `json:"fallback"`
}

// Client is the answer-core entry point. It is safe for concurrent use.
type Client struct {
	cfg       *config.Config
	store     *cache.Store
	responder *fallback.Responder
	provider  llm.Provider
	retriever retriever.Retriever
	sessions  SessionStore
	tokens    *llm.TokenCounter

	fbMu       sync.Mutex
	fbTotal    int64
	fbEmerg    int64
	fbTrigger  map[string]int64
	fbStrategy map[string]int64
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithProvider overrides the generation backend. Used by hosts with their
// own client and by tests.
func WithProvider(p llm.Provider) Option {
	return func(c *Client) { c.provider = p }
}

// WithRetriever overrides the supporting-records backend.
func WithRetriever(r retriever.Retriever) Option {
	return func(c *Client) { c.retriever = r }
}

// WithSessionStore overrides the chat session store.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.sessions = s }
}

// NewClient validates cfg and assembles the answer core. A nil cfg uses
// defaults. The LLM provider is built from cfg unless one is injected.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config, err: %w", err)
	}

	c := &Client{
		cfg:        cfg,
		store:      cache.New(cfg.Cache.MaxSize, cfg.Cache.BaseTTL(), cfg.Cache.SimilarityThreshold),
		responder:  fallback.NewResponder(),
		tokens:     llm.NewTokenCounter(),
		fbTrigger:  make(map[string]int64),
		fbStrategy: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		p, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider failed, err: %w", err)
		}
		c.provider = p
	}
	if c.retriever == nil {
		switch strings.ToLower(cfg.Retriever.Provider) {
		case "milvus":
			r, err := retriever.NewMilvusRetriever(context.Background(), cfg.Retriever.Milvus)
			if err != nil {
				return nil, fmt.Errorf("create milvus retriever failed, err: %w", err)
			}
			c.retriever = r
		case "static":
			c.retriever = &retriever.StaticRetriever{}
		}
	}
	if c.sessions == nil {
		c.sessions = NewMemSessionStore()
	}
	return c, nil
}

// Answer processes one request end to end: cache lookup, retrieval,
// generation, validation, caching. Any failure past the empty-query check
// degrades into a fallback result; an unexpected panic degrades into the
// emergency result. The error return is non-nil only for an empty query.
func (c *Client) Answer(ctx context.Context, req AnswerRequest) (result AnswerResult, err error) {
	start := time.Now()
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return AnswerResult{}, ErrEmptyQuery
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("answer: recovered from panic: %v", rec)
			result = c.emergencyResult(fallback.TriggerLLMError, req.SessionID, query, start)
			err = nil
		}
	}()

	if payload, similar, ok := c.store.Get(query, req.Context, cache.NormalizedMatch); ok {
		if cached, ok := payload.(*cachedAnswer); ok {
			result = AnswerResult{
				Text:            cached.Text,
				Confidence:      cached.Confidence,
				Sources:         cached.Sources,
				CacheUsed:       true,
				CacheSimilarity: similar,
				Actionable:      true,
			}
			c.finish(&result, "cache", req.SessionID, query, start)
			return result, nil
		}
		logger.Warnf("answer: cache payload has unexpected type %T, regenerating", payload)
	}

	records := req.Records
	if len(records) == 0 && c.retriever != nil {
		fetched, ferr := c.retriever.Fetch(ctx, query, c.cfg.Retriever.Limit)
		if ferr != nil {
			logger.Warnf("answer: record retrieval failed, generating without context: %v", ferr)
		} else {
			records = fetched
		}
	}

	prompt := llm.BuildPrompt(query, records)
	metrics.ObserveTokens("prompt", c.tokens.Count(prompt))

	genCtx, cancel := context.WithTimeout(ctx, c.cfg.LLM.Timeout())
	text, genErr := c.provider.GenerateCompletion(genCtx, prompt)
	cancel()
	if genErr != nil {
		trigger := fallback.ClassifyError(genErr)
		logger.Warnf("answer: generation failed (%s): %v", trigger, genErr)
		result = c.fallbackResult(trigger, req.SessionID, query, start)
		return result, nil
	}
	metrics.ObserveTokens("response", c.tokens.Count(text))

	confidence := req.Confidence
	if confidence < 0 {
		confidence = estimateConfidence(c.tokens.Count(text), len(records))
	}
	if confidence < c.cfg.Fallback.LowConfidenceThreshold {
		logger.Infof("answer: confidence %.2f below threshold %.2f", confidence, c.cfg.Fallback.LowConfidenceThreshold)
		result = c.fallbackResult(fallback.TriggerLowConfidence, req.SessionID, query, start)
		return result, nil
	}

	if verdict := fallback.Validate(text, query); !verdict.Valid {
		logger.Infof("answer: response rejected (%s)", verdict.Trigger)
		result = c.fallbackResult(verdict.Trigger, req.SessionID, query, start)
		return result, nil
	}

	sources := recordSources(records)
	c.store.Set(query, &cachedAnswer{Text: text, Confidence: confidence, Sources: sources},
		req.Context, 0, confidence, len(records), deriveTags(query, records))

	result = AnswerResult{
		Text:       text,
		Confidence: confidence,
		Sources:    sources,
		Actionable: true,
	}
	c.finish(&result, "generated", req.SessionID, query, start)
	return result, nil
}

// fallbackResult builds a fallback answer and records its bookkeeping.
func (c *Client) fallbackResult(trigger fallback.Trigger, sessionID, query string, start time.Time) AnswerResult {
	resp := c.responder.Generate(trigger, query)
	c.countFallback(resp)
	metrics.IncFallbackTrigger(trigger.String())

	result := AnswerResult{
		Text:           resp.Message,
		Confidence:     resp.Confidence,
		Suggestions:    resp.Suggestions,
		FallbackUsed:   true,
		FallbackReason: trigger.String(),
		Actionable:     resp.Actionable,
	}
	c.finish(&result, "fallback", sessionID, query, start)
	return result
}

// emergencyResult is the last line of defense; it consults no tables that
// could themselves fail.
func (c *Client) emergencyResult(trigger fallback.Trigger, sessionID, query string, start time.Time) AnswerResult {
	resp := fallback.Emergency(trigger)
	c.countFallback(resp)
	c.fbMu.Lock()
	c.fbEmerg++
	c.fbMu.Unlock()
	metrics.IncFallbackTrigger(trigger.String())

	result := AnswerResult{
		Text:           resp.Message,
		Confidence:     resp.Confidence,
		FallbackUsed:   true,
		FallbackReason: trigger.String(),
		Actionable:     resp.Actionable,
	}
	c.finish(&result, "emergency", sessionID, query, start)
	return result
}

// finish stamps the processing time, records latency and appends the
// exchange to the session, if any.
func (c *Client) finish(result *AnswerResult, kind, sessionID, query string, start time.Time) {
	result.ProcessingMS = time.Since(start).Milliseconds()
	metrics.ObserveAnswer(kind, start)
	if sessionID != "" && c.sessions != nil {
		now := time.Now()
		c.sessions.AddMessage(sessionID, ChatMessage{Role: "user", Content: query, Timestamp: now})
		c.sessions.AddMessage(sessionID, ChatMessage{Role: "assistant", Content: result.Text, Timestamp: now})
		if err := c.sessions.Clean(c.cfg.Session.MaxSessions); err != nil {
			logger.Warnf("answer: session cleanup failed: %v", err)
		}
	}
}

func (c *Client) countFallback(resp fallback.Response) {
	c.fbMu.Lock()
	c.fbTotal++
	c.fbTrigger[resp.Trigger.String()]++
	c.fbStrategy[resp.Strategy.String()]++
	c.fbMu.Unlock()
}

// recordSources collects the distinct record IDs backing an answer.
func recordSources(records []schema.Record) []string {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec.ID)
	}
	return out
}

// deriveTags labels a cache entry for targeted invalidation: the domain
// keywords of the query plus a record-volume bucket.
func deriveTags(query string, records []schema.Record) []string {
	var tags []string
	for _, tok := range normalize.Tokens(query) {
		if _, ok := vocab.DomainKeywords[tok]; ok {
			tags = append(tags, tok)
		}
	}
	switch {
	case len(records) == 0:
		tags = append(tags, "records:none")
	case len(records) < 5:
		tags = append(tags, "records:few")
	default:
		tags = append(tags, "records:many")
	}
	return tags
}

// Metrics returns the combined cache and fallback metrics snapshot.
func (c *Client) Metrics() MetricsReport {
	c.fbMu.Lock()
	fb := FallbackMetrics{
		Total:      c.fbTotal,
		Emergency:  c.fbEmerg,
		ByTrigger:  make(map[string]int64, len(c.fbTrigger)),
		ByStrategy: make(map[string]int64, len(c.fbStrategy)),
	}
	for k, v := range c.fbTrigger {
		fb.ByTrigger[k] = v
	}
	for k, v := range c.fbStrategy {
		fb.ByStrategy[k] = v
	}
	c.fbMu.Unlock()
	return MetricsReport{Cache: c.store.Metrics(), Fallback: fb}
}

// CacheInfo returns the admin view of a cached entry without touching
// access bookkeeping.
func (c *Client) CacheInfo(query string, queryContext map[string]any) (cache.EntryInfo, bool) {
	return c.store.Info(query, queryContext)
}

// Invalidate removes cache entries matching any of the criteria: query
// substring, tags, or age in hours. Returns how many were removed.
func (c *Client) Invalidate(pattern string, tags []string, olderThanHours float64) int {
	var cutoff time.Time
	if olderThanHours > 0 {
		cutoff = time.Now().Add(-time.Duration(olderThanHours * float64(time.Hour)))
	}
	removed := c.store.Invalidate(pattern, tags, cutoff)
	if removed > 0 {
		logger.Infof("cache: invalidated %d entries", removed)
	}
	return removed
}

// ClearCache removes every cached entry.
func (c *Client) ClearCache() {
	c.store.Clear()
	logger.Infof("cache: cleared")
}

// Configure adjusts cache limits at runtime. Non-positive arguments keep
// the current value.
func (c *Client) Configure(maxSize, baseTTLSeconds int, similarityThreshold float64) {
	c.store.Configure(maxSize, time.Duration(baseTTLSeconds)*time.Second, similarityThreshold)
	if maxSize > 0 {
		c.cfg.Cache.MaxSize = maxSize
	}
	if baseTTLSeconds > 0 {
		c.cfg.Cache.BaseTTLSeconds = baseTTLSeconds
	}
	if similarityThreshold > 0 && similarityThreshold <= 1 {
		c.cfg.Cache.SimilarityThreshold = similarityThreshold
	}
}

// StartSweeper launches the periodic cache expiry sweep. It stops when
// ctx is cancelled.
func (c *Client) StartSweeper(ctx context.Context) {
	c.store.StartSweeper(ctx, c.cfg.Cache.SweepInterval())
}

// Sessions exposes the chat session store.
func (c *Client) Sessions() SessionStore { return c.sessions }
