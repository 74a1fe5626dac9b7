package dailylog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	apperrors "github.com/yanqian/vita/pkg/errors"
	"github.com/yanqian/vita/pkg/metrics"
	"github.com/yanqian/vita/pkg/util"
)

const maxNotesRunes = 2000

// Repository stores daily logs keyed by (user, date).
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID, date string) (Log, bool, error)
	// UpsertMetrics creates or overwrites the metric fields; the task and
	// suggestion of an existing row are kept.
	UpsertMetrics(ctx context.Context, userID uuid.UUID, date string, m Metrics) (Log, error)
	// AssignContent sets the task and suggestion only if the row has none
	// and returns the stored row either way.
	AssignContent(ctx context.Context, userID uuid.UUID, date, task, suggestion string) (Log, error)
	// CompleteTask marks the task done. found is false when no row exists.
	CompleteTask(ctx context.Context, userID uuid.UUID, date string) (Log, bool, error)
}

// Service exposes today's log.
type Service interface {
	Today(ctx context.Context, userID uuid.UUID, c lifestyle.Classification) (Log, error)
	SaveMetrics(ctx context.Context, userID uuid.UUID, c lifestyle.Classification, in MetricsInput) (Log, error)
	CompleteTask(ctx context.Context, userID uuid.UUID, c lifestyle.Classification) (Log, error)
}

// Config controls how calendar dates are derived.
type Config struct {
	Location *time.Location
}

type service struct {
	repo   Repository
	gen    *lifestyle.Generator
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the daily log service.
func NewService(cfg Config, repo Repository, gen *lifestyle.Generator, logger *slog.Logger) Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:   repo,
		gen:    gen,
		loc:    loc,
		logger: logger.With("component", "dailylog.service"),
		now:    util.NowUTC,
	}
}

func (s *service) today() string {
	return util.CalendarDate(s.now(), s.loc)
}

// Today returns the log of the current date. The first view of a date
// generates and stores the task and suggestion; later views reuse them.
func (s *service) Today(ctx context.Context, userID uuid.UUID, c lifestyle.Classification) (Log, error) {
	return s.logFor(ctx, userID, s.today(), c)
}

func (s *service) logFor(ctx context.Context, userID uuid.UUID, date string, c lifestyle.Classification) (Log, error) {
	log, found, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		return Log{}, apperrors.Wrap(apperrors.CodePersistence, "failed to load daily log", err)
	}
	if found && log.HasContent() {
		return log, nil
	}
	return s.assign(ctx, userID, date, c)
}

func (s *service) assign(ctx context.Context, userID uuid.UUID, date string, c lifestyle.Classification) (Log, error) {
	task := s.gen.DailyTask(c.RiskIndicators)
	suggestion := lifestyle.Suggestion(c)
	log, err := s.repo.AssignContent(ctx, userID, date, task, suggestion)
	if err != nil {
		metrics.RecordPersistenceFailure("dailylog.assign")
		s.logger.Error("daily content save failed", "user_id", userID, "date", date, "error", err)
		return Log{}, apperrors.Wrap(apperrors.CodePersistence, "failed to save today's task", err)
	}
	return log, nil
}

func (s *service) SaveMetrics(ctx context.Context, userID uuid.UUID, c lifestyle.Classification, in MetricsInput) (Log, error) {
	m, err := validateMetrics(in)
	if err != nil {
		return Log{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	date := s.today()
	log, err := s.repo.UpsertMetrics(ctx, userID, date, m)
	if err != nil {
		metrics.RecordPersistenceFailure("dailylog.upsert")
		s.logger.Error("daily log save failed", "user_id", userID, "date", date, "error", err)
		return Log{}, apperrors.Wrap(apperrors.CodePersistence, "failed to save daily log", err)
	}
	if log.HasContent() {
		return log, nil
	}
	return s.assign(ctx, userID, date, c)
}

// CompleteTask marks today's task done. Completion never reverts. The date is
// read once so a request crossing midnight stays on one log.
func (s *service) CompleteTask(ctx context.Context, userID uuid.UUID, c lifestyle.Classification) (Log, error) {
	date := s.today()
	if _, err := s.logFor(ctx, userID, date, c); err != nil {
		return Log{}, err
	}
	log, found, err := s.repo.CompleteTask(ctx, userID, date)
	if err != nil {
		metrics.RecordPersistenceFailure("dailylog.complete")
		s.logger.Error("task completion save failed", "user_id", userID, "date", date, "error", err)
		return Log{}, apperrors.Wrap(apperrors.CodePersistence, "failed to complete task", err)
	}
	if !found {
		return Log{}, apperrors.Wrap(apperrors.CodeNotFound, "no daily log for today", nil)
	}
	return log, nil
}

func validateMetrics(in MetricsInput) (Metrics, error) {
	var problems []string
	checkRange := func(name string, v *int, lo, hi int) int {
		if v == nil {
			problems = append(problems, name+" is required")
			return 0
		}
		if *v < lo || *v > hi {
			problems = append(problems, fmt.Sprintf("%s must be between %d and %d", name, lo, hi))
		}
		return *v
	}
	m := Metrics{
		EnergyLevel:  checkRange("energyLevel", in.EnergyLevel, 1, 10),
		WaterGlasses: checkRange("waterGlasses", in.WaterGlasses, 0, 10),
		SleepQuality: checkRange("sleepQuality", in.SleepQuality, 1, 10),
		Mood:         in.Mood,
		ExerciseDone: in.ExerciseDone,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if !in.Mood.Valid() {
		problems = append(problems, "mood must be great, good, okay or low")
	}
	if utf8.RuneCountInString(m.Notes) > maxNotesRunes {
		problems = append(problems, fmt.Sprintf("notes cannot exceed %d characters", maxNotesRunes))
	}
	if len(problems) > 0 {
		return Metrics{}, errors.New(strings.Join(problems, "; "))
	}
	return m, nil
}
