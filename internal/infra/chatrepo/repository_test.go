package chatrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/coach"
)

func TestMemoryRepository_RecentKeepsOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Append(ctx, coach.Message{UserID: userID, Role: coach.RoleUser, Content: content}))
	}
	require.NoError(t, repo.Append(ctx, coach.Message{UserID: other, Role: coach.RoleUser, Content: "elsewhere"}))

	got, err := repo.Recent(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "two", got[0].Content)
	require.Equal(t, "three", got[1].Content)
	require.NotEqual(t, uuid.Nil, got[0].ID)

	all, err := repo.Recent(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	none, err := repo.Recent(ctx, uuid.New(), 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMessageCodec(t *testing.T) {
	msg := coach.Message{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      coach.RoleAssistant,
		Content:   "Try a short walk after lunch.",
		CreatedAt: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	raw, err := encodeMessage(msg)
	require.NoError(t, err)

	decoded, err := decodeMessage(raw)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)

	_, err = decodeMessage("{not json")
	require.Error(t, err)
}

func TestValkeyRepository_KeyLayout(t *testing.T) {
	repo := NewValkeyRepository(nil, ValkeyOptions{})
	userID := uuid.MustParse("7f3c2a9e-1d4b-4c8a-9e2f-0a1b2c3d4e5f")
	require.Equal(t, "vita:chat:history:7f3c2a9e-1d4b-4c8a-9e2f-0a1b2c3d4e5f", repo.historyKey(userID))
	require.False(t, repo.capped())
	require.Equal(t, 0, repo.Capacity())
}

func TestValkeyRepository_RetentionOnlyWhenCapped(t *testing.T) {
	require.False(t, NewValkeyRepository(nil, ValkeyOptions{MaxMessages: -1}).capped())
	require.True(t, NewValkeyRepository(nil, ValkeyOptions{MaxMessages: 500}).capped())
	require.True(t, NewValkeyRepository(nil, ValkeyOptions{TTL: time.Hour}).capped())
}
