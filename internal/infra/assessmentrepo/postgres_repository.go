package assessmentrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/domain/onboarding"
)

const uniqueViolation = "23505"

// PostgresRepository persists assessments, one row per user.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const assessmentColumns = `id, user_id, age, gender, sleep_hours, activity_level, stress_level,
	eating_habits, screen_time, water_intake, common_issues, activity_type, lifestyle_balance,
	balance_score, stress_category, risk_indicators, summary, created_at`

// Get loads the assessment of userID.
func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (lifestyle.Assessment, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE user_id = $1`, userID)
	a, err := scanAssessment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return lifestyle.Assessment{}, false, nil
	}
	if err != nil {
		return lifestyle.Assessment{}, false, err
	}
	return a, true, nil
}

// Create inserts the assessment. The unique user_id constraint turns a second
// submission into onboarding.ErrAssessmentExists.
func (r *PostgresRepository) Create(ctx context.Context, a lifestyle.Assessment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := a.Answers.Validate(); err != nil {
		return fmt.Errorf("assessment for %s: %w", a.UserID, err)
	}
	risks := make([]string, 0, len(a.Classification.RiskIndicators))
	for _, ri := range a.Classification.RiskIndicators {
		risks = append(risks, ri.String())
	}
	issues := make([]string, 0, len(a.Answers.CommonIssues))
	for _, issue := range a.Answers.CommonIssues {
		issues = append(issues, string(issue))
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assessments (id, user_id, age, gender, sleep_hours, activity_level, stress_level,
			eating_habits, screen_time, water_intake, common_issues, activity_type, lifestyle_balance,
			balance_score, stress_category, risk_indicators, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID, a.UserID, *a.Answers.Age, string(a.Answers.Gender), *a.Answers.SleepHours,
		string(a.Answers.ActivityLevel), string(a.Answers.StressLevel), string(a.Answers.EatingHabits),
		*a.Answers.ScreenTime, *a.Answers.WaterIntake, issues,
		string(a.Classification.ActivityType), string(a.Classification.LifestyleBalance),
		a.Classification.BalanceScore, string(a.Classification.StressCategory), risks,
		a.Classification.Summary,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return onboarding.ErrAssessmentExists
		}
		return err
	}
	return nil
}

func scanAssessment(row pgx.Row) (lifestyle.Assessment, error) {
	var (
		a                                     lifestyle.Assessment
		age                                   int
		sleep, screen, water                  float64
		gender, activity, stress, eating      string
		activityType, balance, stressCategory string
		issues, risks                         []string
	)
	err := row.Scan(&a.ID, &a.UserID, &age, &gender, &sleep, &activity, &stress,
		&eating, &screen, &water, &issues, &activityType, &balance,
		&a.Classification.BalanceScore, &stressCategory, &risks, &a.Classification.Summary, &a.CreatedAt)
	if err != nil {
		return lifestyle.Assessment{}, err
	}
	a.Answers = lifestyle.Answers{
		Age:           &age,
		Gender:        lifestyle.Gender(gender),
		SleepHours:    &sleep,
		ActivityLevel: lifestyle.ActivityLevel(activity),
		StressLevel:   lifestyle.StressLevel(stress),
		EatingHabits:  lifestyle.EatingHabits(eating),
		ScreenTime:    &screen,
		WaterIntake:   &water,
		CommonIssues:  make([]lifestyle.Issue, 0, len(issues)),
	}
	for _, issue := range issues {
		a.Answers.CommonIssues = append(a.Answers.CommonIssues, lifestyle.Issue(issue))
	}
	a.Classification.ActivityType = lifestyle.ActivityLevel(activityType)
	a.Classification.LifestyleBalance = lifestyle.Balance(balance)
	a.Classification.StressCategory = lifestyle.StressLevel(stressCategory)
	a.Classification.RiskIndicators = make([]lifestyle.RiskIndicator, 0, len(risks))
	for _, raw := range risks {
		ri, err := lifestyle.ParseRiskIndicator(raw)
		if err != nil {
			return lifestyle.Assessment{}, fmt.Errorf("stored assessment %s: %w", a.ID, err)
		}
		a.Classification.RiskIndicators = append(a.Classification.RiskIndicators, ri)
	}
	return a, nil
}

var _ onboarding.Repository = (*PostgresRepository)(nil)
