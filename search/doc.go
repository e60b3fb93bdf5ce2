// Package search defines the vector-search collaborator interface and the
// source adapters that normalize its heterogeneous raw hits (knowledge-base
// documents, conversation messages) into the engine's internal RawHit shape.
//
// Embedding generation and document ingestion are out of scope: the backend
// is assumed to hold pre-computed vectors for both collections.
package search
