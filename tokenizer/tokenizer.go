package tokenizer

import (
	"go.uber.org/zap"
)

// Tokenizer is the unified token counting interface.
type Tokenizer interface {
	// CountTokens returns the token count of the given text.
	CountTokens(text string) (int, error)

	// Name returns the tokenizer's name.
	Name() string
}

// SafeCounter wraps a Tokenizer and never fails: when the underlying
// tokenizer returns an error it falls back to a len/4 estimate and logs a
// warning.
type SafeCounter struct {
	inner  Tokenizer
	logger *zap.Logger
}

// NewSafeCounter creates a SafeCounter. A nil inner tokenizer falls back to
// the generic estimator; a nil logger is replaced with a no-op.
func NewSafeCounter(inner Tokenizer, logger *zap.Logger) *SafeCounter {
	if inner == nil {
		inner = NewEstimator("generic")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeCounter{inner: inner, logger: logger}
}

// Count returns the token count of text, falling back to len(text)/4 when
// the underlying tokenizer fails. The result is always >= 1 for non-empty
// text.
func (c *SafeCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	count, err := c.inner.CountTokens(text)
	if err != nil {
		c.logger.Warn("tokenizer CountTokens failed, falling back to estimate",
			zap.String("tokenizer", c.inner.Name()),
			zap.Error(err))
		count = len(text) / 4
	}
	if count < 1 {
		count = 1
	}
	return count
}

// Name returns the underlying tokenizer's name.
func (c *SafeCounter) Name() string {
	return c.inner.Name()
}
