package proativo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gtaquino-automatelabs/proativo-sub001/config"
	"github.com/gtaquino-automatelabs/proativo-sub001/retriever"
	"github.com/gtaquino-automatelabs/proativo-sub001/schema"
)

type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubProvider) GetProviderType() string { return "stub" }

type panicProvider struct{}

func (panicProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	panic("generation blew up")
}

func (panicProvider) GetProviderType() string { return "panic" }

const validReply = "Transformer TR-01 is operational with no pending maintenance scheduled."

func newTestClient(t *testing.T, p *stubProvider) *Client {
	t.Helper()
	client, err := NewClient(config.Default(), WithProvider(p))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestAnswerEmptyQuery(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})
	if _, err := client.Answer(context.Background(), NewAnswerRequest("   ")); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestAnswerGeneratesAndCaches(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.9
	result, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Text != validReply {
		t.Errorf("text = %q", result.Text)
	}
	if result.CacheUsed || result.FallbackUsed {
		t.Errorf("fresh generation flagged wrong: cache=%v fallback=%v", result.CacheUsed, result.FallbackUsed)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
	if !result.Actionable {
		t.Error("generated answers must be actionable")
	}

	// Second identical request must come from the cache.
	again, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}
	if !again.CacheUsed {
		t.Error("expected a cache hit on repeat")
	}
	if again.CacheSimilarity {
		t.Error("identical query must hit by exact key")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestAnswerRephrasedQueryHitsCache(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	first := NewAnswerRequest("Status of the main transformers")
	first.Confidence = 0.9
	if _, err := client.Answer(context.Background(), first); err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}

	second := NewAnswerRequest("Situation of the main transformers")
	second.Confidence = 0.9
	result, err := client.Answer(context.Background(), second)
	if err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}
	if !result.CacheUsed {
		t.Error("rephrased query must hit the cache")
	}
	if !result.CacheSimilarity {
		t.Error("rephrased query hit must be flagged as similarity-based")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestAnswerLowConfidenceFallsBack(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.2
	result, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected a fallback result")
	}
	if result.FallbackReason != "LOW_CONFIDENCE" {
		t.Errorf("fallback reason = %q, want LOW_CONFIDENCE", result.FallbackReason)
	}

	// Fallback answers are never cached: a retry reaches the provider again.
	retry := NewAnswerRequest("What is the status of TR-01?")
	retry.Confidence = 0.9
	again, err := client.Answer(context.Background(), retry)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if again.CacheUsed {
		t.Error("fallback result must not have been cached")
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestAnswerQuotaError(t *testing.T) {
	provider := &stubProvider{err: errors.New("request failed with status 429: quota exceeded")}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	result, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected a fallback result")
	}
	if result.FallbackReason != "API_QUOTA_EXCEEDED" {
		t.Errorf("fallback reason = %q, want API_QUOTA_EXCEEDED", result.FallbackReason)
	}
	if _, ok := client.CacheInfo("What is the status of TR-01?", nil); ok {
		t.Error("failed generations must not be cached")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestAnswerInvalidResponseFallsBack(t *testing.T) {
	provider := &stubProvider{reply: "I don't know anything about that equipment, unfortunately."}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.9
	result, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected a fallback result")
	}
	if result.FallbackReason != "INVALID_RESPONSE" {
		t.Errorf("fallback reason = %q, want INVALID_RESPONSE", result.FallbackReason)
	}
}

func TestAnswerPanicDegradesToEmergency(t *testing.T) {
	client, err := NewClient(config.Default(), WithProvider(panicProvider{}))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result, err := client.Answer(context.Background(), NewAnswerRequest("What is the status of TR-01?"))
	if err != nil {
		t.Fatalf("Answer must swallow panics, got error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected an emergency fallback")
	}
	if result.Actionable {
		t.Error("emergency results must not be actionable")
	}
	if result.Text == "" {
		t.Error("emergency result must carry a message")
	}
	if result.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", result.Confidence)
	}
}

func TestAnswerUsesAttachedRecords(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.9
	req.Records = []schema.Record{
		{ID: "rec-1", Content: "TR-01 operational since 2024"},
		{ID: "rec-2", Content: "TR-01 inspection passed"},
		{ID: "rec-1", Content: "duplicate"},
	}
	result, err := client.Answer(context.Background(), req)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(result.Sources) != 2 {
		t.Errorf("sources = %v, want the 2 distinct record ids", result.Sources)
	}
}

func TestAnswerRecordsSession(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	session := client.Sessions().Create()
	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.9
	req.SessionID = session.ID
	if _, err := client.Answer(context.Background(), req); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	stored, ok := client.Sessions().Get(session.ID)
	if !ok {
		t.Fatal("session disappeared")
	}
	if len(stored.Messages) != 2 {
		t.Fatalf("messages = %d, want user+assistant pair", len(stored.Messages))
	}
	if stored.Messages[0].Role != "user" || stored.Messages[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", stored.Messages[0].Role, stored.Messages[1].Role)
	}
}

func TestAnswerConcurrentRequests(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)
	subjects := []string{"transformer", "generator", "pump", "turbine"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				req := NewAnswerRequest(fmt.Sprintf("%s maintenance summary", subjects[(g+i)%len(subjects)]))
				req.Confidence = 0.9
				result, err := client.Answer(context.Background(), req)
				if err != nil {
					t.Errorf("Answer failed: %v", err)
					return
				}
				if result.Text == "" {
					t.Error("empty answer text")
					return
				}
			}
		}(g)
	}
	wg.Wait()

	snap := client.Metrics().Cache
	if snap.TotalRequests != 80 {
		t.Errorf("cache requests = %d, want 80", snap.TotalRequests)
	}
	if snap.Size > 4 {
		t.Errorf("expected at most one entry per distinct query, size = %d", snap.Size)
	}
}

func TestMetricsReport(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	client := newTestClient(t, provider)

	if _, err := client.Answer(context.Background(), NewAnswerRequest("xyzzy plugh")); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	report := client.Metrics()
	if report.Fallback.Total != 1 {
		t.Errorf("fallback total = %d, want 1", report.Fallback.Total)
	}
	if report.Fallback.ByTrigger["LLM_ERROR"] != 1 {
		t.Errorf("by trigger = %v", report.Fallback.ByTrigger)
	}
	if report.Cache.TotalRequests != 1 {
		t.Errorf("cache requests = %d, want 1", report.Cache.TotalRequests)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	provider := &stubProvider{reply: validReply}
	client := newTestClient(t, provider)

	req := NewAnswerRequest("What is the status of TR-01?")
	req.Confidence = 0.9
	if _, err := client.Answer(context.Background(), req); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if removed := client.Invalidate("tr-01", nil, 0); removed != 1 {
		t.Errorf("invalidated = %d, want 1", removed)
	}

	if _, err := client.Answer(context.Background(), req); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	client.ClearCache()
	if client.store.Len() != 0 {
		t.Errorf("cache len after clear = %d", client.store.Len())
	}
}

func TestConfigureTightensCache(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})
	client.Configure(50, 600, 0.95)
	if client.cfg.Cache.MaxSize != 50 || client.cfg.Cache.BaseTTLSeconds != 600 {
		t.Errorf("config not updated: %+v", client.cfg.Cache)
	}
	if client.store.SimilarityThreshold() != 0.95 {
		t.Errorf("threshold = %v, want 0.95", client.store.SimilarityThreshold())
	}
}

func TestNewClientBuildsStaticRetriever(t *testing.T) {
	cfg := config.Default()
	cfg.Retriever.Provider = "static"
	client, err := NewClient(cfg, WithProvider(&stubProvider{reply: validReply}))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, ok := client.retriever.(*retriever.StaticRetriever); !ok {
		t.Fatalf("retriever = %T, want *retriever.StaticRetriever", client.retriever)
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.SimilarityThreshold = 2.0
	if _, err := NewClient(cfg, WithProvider(&stubProvider{})); err == nil {
		t.Fatal("expected a validation error")
	}
}
