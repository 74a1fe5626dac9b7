package dailylogrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/vita/internal/domain/dailylog"
)

// PostgresRepository persists daily logs with one row per user and date.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const logColumns = `user_id, to_char(log_date, 'YYYY-MM-DD'), energy_level, water_glasses, sleep_quality,
	mood, exercise_done, notes, daily_task, daily_task_completed, ai_suggestion, created_at, updated_at`

// Get loads the log of userID on date.
func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID, date string) (dailylog.Log, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM daily_logs WHERE user_id = $1 AND log_date = $2::date`, userID, date)
	log, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return dailylog.Log{}, false, nil
	}
	if err != nil {
		return dailylog.Log{}, false, err
	}
	return log, true, nil
}

// UpsertMetrics writes the metric columns and leaves the assigned content alone.
func (r *PostgresRepository) UpsertMetrics(ctx context.Context, userID uuid.UUID, date string, m dailylog.Metrics) (dailylog.Log, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_logs (user_id, log_date, energy_level, water_glasses, sleep_quality, mood, exercise_done, notes)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			energy_level = EXCLUDED.energy_level,
			water_glasses = EXCLUDED.water_glasses,
			sleep_quality = EXCLUDED.sleep_quality,
			mood = EXCLUDED.mood,
			exercise_done = EXCLUDED.exercise_done,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING `+logColumns,
		userID, date, m.EnergyLevel, m.WaterGlasses, m.SleepQuality, string(m.Mood), m.ExerciseDone, m.Notes)
	return scanLog(row)
}

// AssignContent fills the task and suggestion only where they are still empty.
func (r *PostgresRepository) AssignContent(ctx context.Context, userID uuid.UUID, date, task, suggestion string) (dailylog.Log, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_logs (user_id, log_date, daily_task, ai_suggestion)
		VALUES ($1, $2::date, $3, $4)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			daily_task = COALESCE(NULLIF(daily_logs.daily_task, ''), EXCLUDED.daily_task),
			ai_suggestion = COALESCE(NULLIF(daily_logs.ai_suggestion, ''), EXCLUDED.ai_suggestion),
			updated_at = now()
		RETURNING `+logColumns,
		userID, date, task, suggestion)
	return scanLog(row)
}

// CompleteTask sets the completion flag. It never clears it.
func (r *PostgresRepository) CompleteTask(ctx context.Context, userID uuid.UUID, date string) (dailylog.Log, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE daily_logs SET daily_task_completed = true, updated_at = now()
		WHERE user_id = $1 AND log_date = $2::date
		RETURNING `+logColumns, userID, date)
	log, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return dailylog.Log{}, false, nil
	}
	if err != nil {
		return dailylog.Log{}, false, err
	}
	return log, true, nil
}

func scanLog(row pgx.Row) (dailylog.Log, error) {
	var (
		log                  dailylog.Log
		energy, water, sleep *int
		mood, notes          string
		exercise             bool
	)
	err := row.Scan(&log.UserID, &log.Date, &energy, &water, &sleep, &mood, &exercise, &notes,
		&log.DailyTask, &log.DailyTaskCompleted, &log.AISuggestion, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return dailylog.Log{}, err
	}
	// Metrics are written as a group, so energy_level marks whether they exist.
	if energy != nil {
		m := dailylog.Metrics{
			EnergyLevel:  *energy,
			Mood:         dailylog.Mood(mood),
			ExerciseDone: exercise,
			Notes:        notes,
		}
		if water != nil {
			m.WaterGlasses = *water
		}
		if sleep != nil {
			m.SleepQuality = *sleep
		}
		log.Metrics = &m
	}
	return log, nil
}

var _ dailylog.Repository = (*PostgresRepository)(nil)
