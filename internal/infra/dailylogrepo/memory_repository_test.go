package dailylogrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/dailylog"
)

func TestMemoryRepository_MetricsLastWriteWins(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AssignContent(ctx, userID, "2026-10-14", "Drink 8 glasses of water", "Stay hydrated")
	require.NoError(t, err)

	_, err = repo.UpsertMetrics(ctx, userID, "2026-10-14", dailylog.Metrics{EnergyLevel: 3, SleepQuality: 4})
	require.NoError(t, err)
	log, err := repo.UpsertMetrics(ctx, userID, "2026-10-14", dailylog.Metrics{EnergyLevel: 8, SleepQuality: 7, Mood: dailylog.MoodGood})
	require.NoError(t, err)

	require.Equal(t, 8, log.Metrics.EnergyLevel)
	require.Equal(t, dailylog.MoodGood, log.Metrics.Mood)
	require.Equal(t, "Drink 8 glasses of water", log.DailyTask)
}

func TestMemoryRepository_AssignContentOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.AssignContent(ctx, userID, "2026-10-14", "task a", "tip a")
	require.NoError(t, err)
	second, err := repo.AssignContent(ctx, userID, "2026-10-14", "task b", "tip b")
	require.NoError(t, err)
	require.Equal(t, first.DailyTask, second.DailyTask)
	require.Equal(t, "tip a", second.AISuggestion)

	other, err := repo.AssignContent(ctx, userID, "2026-10-15", "task b", "tip b")
	require.NoError(t, err)
	require.Equal(t, "task b", other.DailyTask)
}

func TestMemoryRepository_CompleteTask(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	_, found, err := repo.CompleteTask(ctx, userID, "2026-10-14")
	require.NoError(t, err)
	require.False(t, found)

	_, err = repo.AssignContent(ctx, userID, "2026-10-14", "task", "tip")
	require.NoError(t, err)
	log, found, err := repo.CompleteTask(ctx, userID, "2026-10-14")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, log.DailyTaskCompleted)

	log, err = repo.UpsertMetrics(ctx, userID, "2026-10-14", dailylog.Metrics{EnergyLevel: 5})
	require.NoError(t, err)
	require.True(t, log.DailyTaskCompleted)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	log, err := repo.UpsertMetrics(ctx, userID, "2026-10-14", dailylog.Metrics{EnergyLevel: 5})
	require.NoError(t, err)
	log.Metrics.EnergyLevel = 1

	stored, ok, err := repo.Get(ctx, userID, "2026-10-14")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, stored.Metrics.EnergyLevel)
}
