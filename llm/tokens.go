package llm

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/gtaquino-automatelabs/proativo-sub001/common/logger"
)

// TokenCounter counts tokens with the cl100k_base encoding. When the
// encoding cannot be loaded (offline hosts), it degrades to a word count.
type TokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter creates a lazy TokenCounter; the encoding is loaded on
// first use.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count returns the token count of text.
func (t *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("llm: token encoding unavailable, falling back to word count: %v", err)
			return
		}
		t.enc = enc
	})
	if t.enc == nil {
		return len(strings.Fields(text))
	}
	return len(t.enc.Encode(text, nil, nil))
}
