package chatrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/vita/internal/domain/coach"
)

// PostgresRepository stores chat history in the chat_messages table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append inserts msg. Rows are ordered by their sequence number.
func (r *PostgresRepository) Append(ctx context.Context, msg coach.Message) error {
	msg = stamp(msg)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.UserID, string(msg.Role), msg.Content, msg.CreatedAt)
	return err
}

// Recent returns the newest limit messages, oldest first.
func (r *PostgresRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]coach.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, role, content, created_at FROM (
			SELECT seq, id, user_id, role, content, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (coach.Message, error) {
		var (
			msg  coach.Message
			role string
		)
		if err := row.Scan(&msg.ID, &msg.UserID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return coach.Message{}, err
		}
		msg.Role = coach.Role(role)
		return msg, nil
	})
}

var _ coach.Repository = (*PostgresRepository)(nil)
