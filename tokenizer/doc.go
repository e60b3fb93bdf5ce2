// Package tokenizer provides token counting for context-budget enforcement.
//
// Two implementations are available: a tiktoken-backed counter for models
// with a known encoding, and a character-ratio estimator that needs no
// encoding data. SafeCounter wraps either one and never fails, falling back
// to a length-based estimate so that ranking can always proceed.
package tokenizer
