// Package cache provides the content-addressed result cache: full
// RAGResponse values keyed by a stable hash of the query and the relevant
// config fields, stored with a TTL.
//
// The cache is an optimization, never a correctness dependency: every
// backend failure degrades to a miss and is logged, not surfaced.
package cache
