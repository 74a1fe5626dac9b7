package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	apperrors "github.com/yanqian/vita/pkg/errors"
	"github.com/yanqian/vita/pkg/metrics"
)

// ErrAssessmentExists is returned by repositories when the user already has one.
var ErrAssessmentExists = errors.New("assessment already exists")

// Repository persists the single assessment of each user.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (lifestyle.Assessment, bool, error)
	Create(ctx context.Context, assessment lifestyle.Assessment) error
}

// Direction moves a flow forward or backward.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionBack Direction = "back"
)

// StepRequest asks whether the draft may leave Step in Direction.
type StepRequest struct {
	Step      Step              `json:"step" binding:"required"`
	Direction Direction         `json:"direction"`
	Answers   lifestyle.Answers `json:"answers"`
}

// StepResponse reports where the flow landed.
type StepResponse struct {
	Step     Step `json:"step"`
	Progress int  `json:"progress"`
	// Submit is set when the draft is complete and should be submitted.
	Submit bool `json:"submit"`
}

// Status reports whether the user has completed onboarding.
type Status struct {
	Completed  bool                  `json:"completed"`
	Assessment *lifestyle.Assessment `json:"assessment,omitempty"`
}

// Service drives onboarding.
type Service interface {
	ValidateStep(ctx context.Context, req StepRequest) (StepResponse, error)
	Submit(ctx context.Context, userID uuid.UUID, answers lifestyle.Answers) (lifestyle.Assessment, error)
	Get(ctx context.Context, userID uuid.UUID) (Status, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the onboarding service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "onboarding.service"),
		now:    time.Now,
	}
}

func (s *service) ValidateStep(_ context.Context, req StepRequest) (StepResponse, error) {
	flow, err := Resume(req.Step, req.Answers)
	if err != nil {
		return StepResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	switch req.Direction {
	case DirectionBack:
		if err := flow.Back(); err != nil {
			return StepResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
		}
	case DirectionNext, "":
		if err := flow.Next(); err != nil {
			if errors.Is(err, lifestyle.ErrIncompleteInput) {
				return StepResponse{}, apperrors.Wrap(apperrors.CodeIncompleteInput, err.Error(), err)
			}
			return StepResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
		}
	default:
		return StepResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "direction must be next or back", nil)
	}
	return StepResponse{
		Step:     flow.Step(),
		Progress: flow.Progress(),
		Submit:   flow.Step() == StepResults,
	}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, answers lifestyle.Answers) (lifestyle.Assessment, error) {
	logger := s.logger.With("user_id", userID)
	answers.CommonIssues = lifestyle.NormalizeIssues(answers.CommonIssues)
	classification, err := lifestyle.Classify(answers)
	if err != nil {
		return lifestyle.Assessment{}, apperrors.Wrap(apperrors.CodeIncompleteInput, err.Error(), err)
	}

	if _, exists, err := s.repo.Get(ctx, userID); err != nil {
		logger.Error("assessment lookup failed", "error", err)
		return lifestyle.Assessment{}, apperrors.Wrap(apperrors.CodePersistence, "failed to check existing assessment", err)
	} else if exists {
		return lifestyle.Assessment{}, apperrors.Wrap(apperrors.CodeAssessmentExists, "onboarding already completed", nil)
	}

	assessment := lifestyle.Assessment{
		ID:             uuid.New(),
		UserID:         userID,
		Answers:        answers,
		Classification: classification,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, assessment); err != nil {
		if errors.Is(err, ErrAssessmentExists) {
			return lifestyle.Assessment{}, apperrors.Wrap(apperrors.CodeAssessmentExists, "onboarding already completed", err)
		}
		metrics.RecordPersistenceFailure("assessment.create")
		logger.Error("assessment save failed", "error", err)
		return lifestyle.Assessment{}, apperrors.Wrap(apperrors.CodePersistence, "failed to save assessment", err)
	}

	metrics.RecordClassification(string(classification.LifestyleBalance))
	logger.Info("assessment stored",
		"balance", classification.LifestyleBalance,
		"balance_score", classification.BalanceScore,
		"risk_count", len(classification.RiskIndicators),
	)
	return assessment, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (Status, error) {
	assessment, ok, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Status{}, apperrors.Wrap(apperrors.CodePersistence, "failed to load assessment", err)
	}
	if !ok {
		return Status{}, nil
	}
	return Status{Completed: true, Assessment: &assessment}, nil
}
