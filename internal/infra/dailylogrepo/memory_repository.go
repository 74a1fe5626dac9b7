package dailylogrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/dailylog"
)

type key struct {
	userID uuid.UUID
	date   string
}

// MemoryRepository stores daily logs keyed by user and date.
type MemoryRepository struct {
	mu   sync.Mutex
	logs map[key]dailylog.Log
	now  func() time.Time
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		logs: make(map[key]dailylog.Log),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the log of userID on date.
func (r *MemoryRepository) Get(_ context.Context, userID uuid.UUID, date string) (dailylog.Log, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[key{userID, date}]
	return copyLog(log), ok, nil
}

// UpsertMetrics overwrites the metrics of the day. Last write wins.
func (r *MemoryRepository) UpsertMetrics(_ context.Context, userID uuid.UUID, date string, m dailylog.Metrics) (dailylog.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.loadOrInit(userID, date)
	log.Metrics = &m
	log.UpdatedAt = r.now()
	r.logs[key{userID, date}] = log
	return copyLog(log), nil
}

// AssignContent sets the task and suggestion once per day.
func (r *MemoryRepository) AssignContent(_ context.Context, userID uuid.UUID, date, task, suggestion string) (dailylog.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.loadOrInit(userID, date)
	if log.DailyTask == "" {
		log.DailyTask = task
	}
	if log.AISuggestion == "" {
		log.AISuggestion = suggestion
	}
	log.UpdatedAt = r.now()
	r.logs[key{userID, date}] = log
	return copyLog(log), nil
}

// CompleteTask flags the task done.
func (r *MemoryRepository) CompleteTask(_ context.Context, userID uuid.UUID, date string) (dailylog.Log, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[key{userID, date}]
	if !ok {
		return dailylog.Log{}, false, nil
	}
	log.DailyTaskCompleted = true
	log.UpdatedAt = r.now()
	r.logs[key{userID, date}] = log
	return copyLog(log), true, nil
}

func (r *MemoryRepository) loadOrInit(userID uuid.UUID, date string) dailylog.Log {
	if log, ok := r.logs[key{userID, date}]; ok {
		return log
	}
	now := r.now()
	return dailylog.Log{UserID: userID, Date: date, CreatedAt: now, UpdatedAt: now}
}

func copyLog(log dailylog.Log) dailylog.Log {
	if log.Metrics != nil {
		m := *log.Metrics
		log.Metrics = &m
	}
	return log
}

var _ dailylog.Repository = (*MemoryRepository)(nil)
