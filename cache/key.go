package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/BaSui01/ragflow/types"
)

// keyPrefix namespaces result entries in a shared store.
const keyPrefix = "rag:result:"

// Key returns the content-addressed cache key for a query under the
// resolved retrieval parameters. maxResults and threshold are the effective
// values after request-level overrides, so the same query with different
// overrides never collides.
func Key(query string, cfg *types.RAGConfig, maxResults int, threshold float64) string {
	payload := fmt.Sprintf("%s|%s|%d|%.6f|%s",
		query, cfg.Strategy, maxResults, threshold, cfg.EmbeddingModel)
	sum := sha256.Sum256([]byte(payload))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
