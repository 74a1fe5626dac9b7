package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/vita/pkg/errors"
)

func newTestService(repo Repository) *service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, newTestLogger()).(*service)
}

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "User@Example.com",
		Password:    "pass1234",
		DisplayName: "  Mia Chen ",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "Mia Chen", view.DisplayName)
	require.NotEqual(t, uuid.Nil, view.ID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "Mia Chen", refreshed.User.DisplayName)

	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "user@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "USER@example.com",
		Password: "pass12345",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "email_exists"))
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	cases := []struct {
		name string
		req  RegisterRequest
		msg  string
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "pass1234"}, "invalid email"},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "short"}, "at least 8"},
		{"long name", RegisterRequest{Email: "a@b.co", Password: "pass1234", DisplayName: strings.Repeat("é", 51)}, "exceed 50"},
		{"control chars", RegisterRequest{Email: "a@b.co", Password: "pass1234", DisplayName: "Mia\x07"}, "control"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pass12345"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "x@b.co", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	view, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "pass1234"})
	require.NoError(t, err)

	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	resp, err := svc.Login(context.Background(), LoginRequest{Email: view.Email, Password: "pass1234"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
	require.Contains(t, err.Error(), "expired")
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	view, err := svc.Register(context.Background(), RegisterRequest{Email: "sam@example.com", Password: "pass1234"})
	require.NoError(t, err)
	require.Equal(t, "sam", view.GreetingName())

	updated, err := svc.UpdateProfile(context.Background(), view.ID, UpdateProfileRequest{DisplayName: "Samira"})
	require.NoError(t, err)
	require.Equal(t, "Samira", updated.DisplayName)
	require.Equal(t, "Samira", updated.GreetingName())

	profile, err := svc.Profile(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, "Samira", profile.DisplayName)

	_, err = svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileRequest{DisplayName: "Ghost"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestProviderTokenSealing(t *testing.T) {
	owner := uuid.New()
	sealed, err := sealProviderToken("key-material", owner, "refresh-123")
	require.NoError(t, err)
	require.NotContains(t, sealed, "refresh-123")

	plain, err := openProviderToken("key-material", owner, sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-123", plain)

	_, err = openProviderToken("key-material", uuid.New(), sealed)
	require.Error(t, err)
	_, err = openProviderToken("other-key", owner, sealed)
	require.Error(t, err)
}

func TestGoogleDisplayName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", googleDisplayName(googleClaims{Name: " Ada Lovelace ", GivenName: "Ada"}))
	require.Equal(t, "Ada", googleDisplayName(googleClaims{GivenName: "Ada"}))
	require.Len(t, []rune(googleDisplayName(googleClaims{Name: strings.Repeat("x", 80)})), 50)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	mu         sync.Mutex
	users      map[uuid.UUID]User
	identities map[string]Identity
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:      make(map[uuid.UUID]User),
		identities: make(map[string]Identity),
	}
}

func (m *memoryRepo) Create(_ context.Context, email, displayName, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == email {
			return User{}, ErrEmailExists
		}
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memoryRepo) UpdateDisplayName(_ context.Context, id uuid.UUID, displayName string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return User{}, false, nil
	}
	user.DisplayName = displayName
	m.users[id] = user
	return user, true, nil
}

func (m *memoryRepo) GetIdentity(_ context.Context, provider, subject string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[provider+":"+subject]
	return identity, ok, nil
}

func (m *memoryRepo) GetIdentityByUser(_ context.Context, userID uuid.UUID, provider string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.UserID == userID && identity.Provider == provider {
			return identity, true, nil
		}
	}
	return Identity{}, false, nil
}

func (m *memoryRepo) UpsertIdentity(_ context.Context, identity Identity) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[identity.Provider+":"+identity.ProviderSubject] = identity
	return identity, nil
}
