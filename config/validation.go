package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration, collecting every error
// rather than stopping at the first.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateFallback()...)
	errs = append(errs, c.validateRetriever()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateCache() ValidationErrors {
	var errs ValidationErrors

	if c.Cache.MaxSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.max_size",
			Message: fmt.Sprintf("cache.max_size must be non-negative, got %d", c.Cache.MaxSize),
		})
	}
	if c.Cache.BaseTTLSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.base_ttl_seconds",
			Message: fmt.Sprintf("cache.base_ttl_seconds must be non-negative, got %d", c.Cache.BaseTTLSeconds),
		})
	}
	if c.Cache.SimilarityThreshold < 0 || c.Cache.SimilarityThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "cache.similarity_threshold",
			Message: fmt.Sprintf("cache.similarity_threshold must be in [0, 1], got %.2f", c.Cache.SimilarityThreshold),
		})
	}
	return errs
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider != "" {
		if c.LLM.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "llm.model",
				Message: "llm.model is required when a provider is configured",
			})
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			errs = append(errs, ValidationError{
				Field:   "llm.temperature",
				Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
			})
		}
		if c.LLM.MaxTokens < 0 {
			errs = append(errs, ValidationError{
				Field:   "llm.max_tokens",
				Message: fmt.Sprintf("llm.max_tokens must be non-negative, got %d", c.LLM.MaxTokens),
			})
		}
	}
	return errs
}

func (c *Config) validateFallback() ValidationErrors {
	var errs ValidationErrors

	if c.Fallback.LowConfidenceThreshold < 0 || c.Fallback.LowConfidenceThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "fallback.low_confidence_threshold",
			Message: fmt.Sprintf("fallback.low_confidence_threshold must be in [0, 1], got %.2f", c.Fallback.LowConfidenceThreshold),
		})
	}
	return errs
}

func (c *Config) validateRetriever() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.Retriever.Provider) {
	case "", "static":
	case "milvus":
		if c.Retriever.Milvus.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "retriever.milvus.address",
				Message: "milvus address is required for the milvus retriever",
			})
		}
		if c.Retriever.Milvus.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "retriever.milvus.collection",
				Message: "collection name is required for the milvus retriever",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "retriever.provider",
			Message: fmt.Sprintf("unknown retriever provider %q", c.Retriever.Provider),
		})
	}
	if c.Retriever.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "retriever.limit",
			Message: fmt.Sprintf("retriever.limit must be non-negative, got %d", c.Retriever.Limit),
		})
	}
	return errs
}
