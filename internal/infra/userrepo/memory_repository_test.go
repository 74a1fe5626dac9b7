package userrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/auth"
)

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, "a@b.co", "Ana", "hash")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	_, err = repo.Create(ctx, "a@b.co", "Other", "hash")
	require.ErrorIs(t, err, auth.ErrEmailExists)

	byEmail, ok, err := repo.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, user, byEmail)

	updated, ok, err := repo.UpdateDisplayName(ctx, user.ID, "Ana B")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ana B", updated.DisplayName)

	_, ok, err = repo.UpdateDisplayName(ctx, uuid.New(), "Nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryRepository_UpsertIdentityKeepsToken(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.UpsertIdentity(ctx, auth.Identity{UserID: uuid.Nil, Provider: "google", ProviderSubject: "s"})
	require.Error(t, err)

	first, err := repo.UpsertIdentity(ctx, auth.Identity{
		UserID: userID, Provider: "google", ProviderSubject: "sub-1", RefreshToken: "sealed",
	})
	require.NoError(t, err)

	second, err := repo.UpsertIdentity(ctx, auth.Identity{
		UserID: userID, Provider: "google", ProviderSubject: "sub-1", ProviderEmail: "a@b.co",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "sealed", second.RefreshToken)
	require.Equal(t, "a@b.co", second.ProviderEmail)

	byUser, ok, err := repo.GetIdentityByUser(ctx, userID, "google")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second, byUser)
}
