package store

import (
	"context"

	"github.com/BaSui01/ragflow/types"
)

// Store is the ConfigStore contract. Implementations must serialize writes
// while permitting concurrent reads; no two configs ever share an id.
type Store interface {
	// Create validates and persists a new config, returning its assigned id.
	Create(ctx context.Context, cfg types.RAGConfig) (string, error)

	// Get returns the config for id, or (nil, false) when unknown.
	Get(ctx context.Context, id string) (*types.RAGConfig, bool)

	// Update replaces the config stored under id. Returns false for unknown
	// ids or invalid configs.
	Update(ctx context.Context, id string, cfg types.RAGConfig) bool

	// Delete removes the config under id. Returns false when id is unknown,
	// including on repeated deletes.
	Delete(ctx context.Context, id string) bool

	// List returns all stored configs, ordered by id for reproducibility.
	List(ctx context.Context) []types.RAGConfig
}
