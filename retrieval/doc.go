// Package retrieval implements the RAG query engine core: query analysis,
// the five retrieval strategies, multi-criteria result ranking under a
// token budget, and the orchestrating Engine.
//
// The engine owns no transport and no storage. Vector search, the result
// cache, and config persistence are collaborators passed in at
// construction.
package retrieval
