// Package types defines the shared data model of the RAG query engine:
// retrieval configurations, requests, raw candidate hits, ranked results,
// responses, metrics snapshots, and the structured error taxonomy.
//
// The package has no dependencies on other ragflow packages so that every
// component (strategies, ranker, cache, stores) can share these shapes
// without import cycles.
package types
