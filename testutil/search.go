package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/BaSui01/ragflow/types"
)

// FakeVectorSearch is a scriptable search.VectorSearch implementation.
// Configure the hits and errors each collection should return, then assert
// on the call counters. Safe for concurrent use.
type FakeVectorSearch struct {
	KnowledgeHits []types.RawHit
	MessageHits   []types.RawHit

	KnowledgeErr error
	MessageErr   error

	// Delay is applied before every call, to exercise timeouts.
	Delay time.Duration

	knowledgeCalls atomic.Int64
	messageCalls   atomic.Int64
}

func (f *FakeVectorSearch) SearchKnowledge(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error) {
	f.knowledgeCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.KnowledgeErr != nil {
		return nil, f.KnowledgeErr
	}
	return clip(f.KnowledgeHits, limit), nil
}

func (f *FakeVectorSearch) SearchMessages(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error) {
	f.messageCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.MessageErr != nil {
		return nil, f.MessageErr
	}
	return clip(f.MessageHits, limit), nil
}

// KnowledgeCalls returns how many times SearchKnowledge was invoked.
func (f *FakeVectorSearch) KnowledgeCalls() int {
	return int(f.knowledgeCalls.Load())
}

// MessageCalls returns how many times SearchMessages was invoked.
func (f *FakeVectorSearch) MessageCalls() int {
	return int(f.messageCalls.Load())
}

func (f *FakeVectorSearch) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func clip(hits []types.RawHit, limit int) []types.RawHit {
	out := make([]types.RawHit, len(hits))
	copy(out, hits)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Hit builds a RawHit with the given content and similarity score. Optional
// ids keep tests terse; the first one becomes the SourceID.
func Hit(content string, score float64, ids ...string) types.RawHit {
	id := "hit-1"
	if len(ids) > 0 {
		id = ids[0]
	}
	return types.RawHit{
		Content:         content,
		SourceID:        id,
		SimilarityScore: score,
		CreatedAt:       time.Now(),
	}
}
