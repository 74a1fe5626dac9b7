package assessmentrepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/domain/onboarding"
)

// MemoryRepository keeps one assessment per user in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]lifestyle.Assessment
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]lifestyle.Assessment)}
}

// Get returns the assessment of userID.
func (r *MemoryRepository) Get(_ context.Context, userID uuid.UUID) (lifestyle.Assessment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[userID]
	if !ok {
		return lifestyle.Assessment{}, false, nil
	}
	return clone(a), true, nil
}

// Create stores the assessment unless the user already has one.
func (r *MemoryRepository) Create(_ context.Context, a lifestyle.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[a.UserID]; exists {
		return onboarding.ErrAssessmentExists
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.items[a.UserID] = clone(a)
	return nil
}

func clone(a lifestyle.Assessment) lifestyle.Assessment {
	a.Answers.CommonIssues = slices.Clone(a.Answers.CommonIssues)
	a.Classification.RiskIndicators = slices.Clone(a.Classification.RiskIndicators)
	return a
}

var _ onboarding.Repository = (*MemoryRepository)(nil)
