package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// GenerationRepository tracks which conversations have a response being
// generated right now. Entries expire on their own so a crashed worker
// cannot wedge a conversation forever.
type GenerationRepository struct {
	cache *cache.Cache
}

func NewGenerationRepository() *GenerationRepository {
	// Generations are bounded by the request timeout, so a 10 minute
	// expiry only matters when Finish was never called.
	c := cache.New(10*time.Minute, 5*time.Minute)
	return &GenerationRepository{
		cache: c,
	}
}

// TryStart marks the conversation as generating. Returns false if a
// generation is already in flight for it.
func (r *GenerationRepository) TryStart(conversationId uuid.UUID) bool {
	err := r.cache.Add(conversationId.String(), struct{}{}, cache.DefaultExpiration)
	return err == nil
}

// StoreCancel attaches the generation's cancel function so it can be
// stopped from another request.
func (r *GenerationRepository) StoreCancel(conversationId uuid.UUID, cancel context.CancelFunc) {
	r.cache.Set(conversationId.String(), cancel, cache.DefaultExpiration)
}

// Cancel stops the in-flight generation if one exists. Returns true if
// a cancel function was found and invoked.
func (r *GenerationRepository) Cancel(conversationId uuid.UUID) bool {
	x, found := r.cache.Get(conversationId.String())
	if !found {
		return false
	}
	cancel, ok := x.(context.CancelFunc)
	if !ok {
		return false
	}
	cancel()
	return true
}

// IsGenerating reports whether the conversation has a generation in flight.
func (r *GenerationRepository) IsGenerating(conversationId uuid.UUID) bool {
	_, found := r.cache.Get(conversationId.String())
	return found
}

// Finish clears the in-flight marker. Safe to call even if TryStart
// never ran.
func (r *GenerationRepository) Finish(conversationId uuid.UUID) {
	r.cache.Delete(conversationId.String())
}
