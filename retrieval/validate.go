package retrieval

import (
	"strings"
	"unicode/utf8"

	"github.com/BaSui01/ragflow/types"
)

// minQueryLength is the minimum query length in runes, after trimming.
const minQueryLength = 3

// ValidateRequest checks the request against the resolved config. It runs
// before any I/O and names the violated constraint in the error.
func ValidateRequest(req *types.RAGRequest, cfg *types.RAGConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return types.NewError(types.ErrValidation, "query must not be empty")
	}
	if utf8.RuneCountInString(query) < minQueryLength {
		return types.NewError(types.ErrValidation, "query must be at least 3 characters after trimming")
	}

	if req.MaxResults < 0 {
		return types.NewError(types.ErrValidation, "max_results override must be >= 1")
	}
	if req.SimilarityThreshold != nil {
		if t := *req.SimilarityThreshold; t < 0 || t > 1 {
			return types.NewError(types.ErrValidation, "similarity_threshold override must be in [0, 1]")
		}
	}
	return nil
}
