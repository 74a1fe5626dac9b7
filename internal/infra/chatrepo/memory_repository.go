package chatrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/coach"
)

// MemoryRepository keeps chat history in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[uuid.UUID][]coach.Message
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{messages: make(map[uuid.UUID][]coach.Message)}
}

// Append adds msg to the end of the user's history.
func (r *MemoryRepository) Append(_ context.Context, msg coach.Message) error {
	msg = stamp(msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.UserID] = append(r.messages[msg.UserID], msg)
	return nil
}

// Recent returns the newest limit messages, oldest first.
func (r *MemoryRepository) Recent(_ context.Context, userID uuid.UUID, limit int) ([]coach.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.messages[userID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]coach.Message, len(all))
	copy(out, all)
	return out, nil
}

func stamp(msg coach.Message) coach.Message {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return msg
}

var _ coach.Repository = (*MemoryRepository)(nil)
