package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/vita/internal/domain/auth"
)

const uniqueViolation = "23505"

// PostgresRepository persists users and provider identities in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, display_name, password_hash, created_at, updated_at`

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, email, displayName, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, uuid.New(), email, displayName, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return found(scanUser(row))
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return found(scanUser(row))
}

// UpdateDisplayName replaces the profile name.
func (r *PostgresRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET display_name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, displayName)
	return found(scanUser(row))
}

const identityColumns = `id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at`

// GetIdentity returns an identity by provider and subject.
func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM user_identities
		WHERE provider = $1 AND provider_subject = $2`, provider, providerSubject)
	return found(scanIdentity(row))
}

// GetIdentityByUser returns an identity by user and provider.
func (r *PostgresRepository) GetIdentityByUser(ctx context.Context, userID uuid.UUID, provider string) (auth.Identity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM user_identities
		WHERE user_id = $1 AND provider = $2
		ORDER BY updated_at DESC
		LIMIT 1`, userID, provider)
	return found(scanIdentity(row))
}

// UpsertIdentity stores or updates the identity mapping. Empty refresh
// tokens and emails keep the stored values.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity auth.Identity) (auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_identities (id, user_id, provider, provider_subject, provider_email, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, provider_subject) DO UPDATE SET
			provider_email = COALESCE(NULLIF(EXCLUDED.provider_email, ''), user_identities.provider_email),
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), user_identities.refresh_token),
			updated_at = now()
		RETURNING `+identityColumns,
		uuid.New(), identity.UserID, identity.Provider, identity.ProviderSubject, identity.ProviderEmail, identity.RefreshToken)
	return scanIdentity(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.User, error) {
	var user auth.User
	var created, updated time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &created, &updated); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	return user, nil
}

func scanIdentity(row rowScanner) (auth.Identity, error) {
	var identity auth.Identity
	var created, updated time.Time
	if err := row.Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderSubject,
		&identity.ProviderEmail, &identity.RefreshToken, &created, &updated); err != nil {
		return auth.Identity{}, err
	}
	identity.CreatedAt = created.UTC()
	identity.UpdatedAt = updated.UTC()
	return identity, nil
}

// found turns pgx.ErrNoRows into a not-found result.
func found[T any](v T, err error) (T, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
