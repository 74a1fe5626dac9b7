package chatrepo

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/coach"
)

// historyCache holds the newest messages per user. Entries may be evicted,
// so it never stands in for the durable store.
type historyCache interface {
	Append(ctx context.Context, msg coach.Message) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]coach.Message, error)
	Replace(ctx context.Context, userID uuid.UUID, msgs []coach.Message) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Capacity() int
}

// CachedRepository writes every message to a durable store and serves recent
// history from a capped cache when the cache holds enough of it.
type CachedRepository struct {
	store  coach.Repository
	cache  historyCache
	logger *slog.Logger
}

// NewCachedRepository puts cache in front of store.
func NewCachedRepository(store coach.Repository, cache historyCache, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		store:  store,
		cache:  cache,
		logger: logger.With("component", "chatrepo.cached"),
	}
}

// Append stores msg durably first. A cache write failure drops the user's
// cached list so it cannot serve a history with a gap.
func (r *CachedRepository) Append(ctx context.Context, msg coach.Message) error {
	msg = stamp(msg)
	if err := r.store.Append(ctx, msg); err != nil {
		return err
	}
	if err := r.cache.Append(ctx, msg); err != nil {
		r.logger.Warn("chat cache append failed", "user_id", msg.UserID, "error", err)
		if err := r.cache.Invalidate(ctx, msg.UserID); err != nil {
			r.logger.Warn("chat cache invalidate failed", "user_id", msg.UserID, "error", err)
		}
	}
	return nil
}

// Recent answers from the cache when it holds at least limit messages,
// otherwise from the store, refilling the cache on the way out.
func (r *CachedRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]coach.Message, error) {
	capacity := r.cache.Capacity()
	if limit <= 0 || (capacity > 0 && limit > capacity) {
		return r.store.Recent(ctx, userID, limit)
	}
	cached, err := r.cache.Recent(ctx, userID, limit)
	if err != nil {
		r.logger.Warn("chat cache read failed", "user_id", userID, "error", err)
	} else if len(cached) >= limit {
		return cached, nil
	}

	fill := limit
	if capacity > 0 {
		fill = capacity
	}
	msgs, err := r.store.Recent(ctx, userID, fill)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Replace(ctx, userID, msgs); err != nil {
		r.logger.Warn("chat cache refill failed", "user_id", userID, "error", err)
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

var _ coach.Repository = (*CachedRepository)(nil)
var _ historyCache = (*ValkeyRepository)(nil)
