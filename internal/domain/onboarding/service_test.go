package onboarding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	apperrors "github.com/yanqian/vita/pkg/errors"
)

type stubRepo struct {
	stored    map[uuid.UUID]lifestyle.Assessment
	createErr error
	getErr    error
}

func newStubRepo() *stubRepo {
	return &stubRepo{stored: make(map[uuid.UUID]lifestyle.Assessment)}
}

func (r *stubRepo) Get(_ context.Context, userID uuid.UUID) (lifestyle.Assessment, bool, error) {
	if r.getErr != nil {
		return lifestyle.Assessment{}, false, r.getErr
	}
	a, ok := r.stored[userID]
	return a, ok, nil
}

func (r *stubRepo) Create(_ context.Context, a lifestyle.Assessment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.stored[a.UserID]; ok {
		return ErrAssessmentExists
	}
	r.stored[a.UserID] = a
	return nil
}

func newTestService(repo Repository) *service {
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_SubmitStoresClassification(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	assessment, err := svc.Submit(context.Background(), userID, completeAnswers())
	require.NoError(t, err)
	require.Equal(t, userID, assessment.UserID)
	require.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), assessment.CreatedAt)
	require.Equal(t, []lifestyle.Issue{lifestyle.IssueFatigue, lifestyle.IssueStress}, assessment.Answers.CommonIssues)
	require.Equal(t, []lifestyle.RiskIndicator{lifestyle.RiskHydration, lifestyle.RiskScreenTime}, assessment.Classification.RiskIndicators)
	require.Equal(t, lifestyle.BalanceNeedsImprovement, assessment.Classification.LifestyleBalance)

	status, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, status.Completed)
	require.Equal(t, assessment, *status.Assessment)
}

func TestService_SubmitTwiceIsRejected(t *testing.T) {
	svc := newTestService(newStubRepo())
	userID := uuid.New()

	_, err := svc.Submit(context.Background(), userID, completeAnswers())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), userID, completeAnswers())
	require.True(t, apperrors.IsCode(err, apperrors.CodeAssessmentExists))
}

func TestService_SubmitIncomplete(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	answers := completeAnswers()
	answers.StressLevel = ""

	_, err := svc.Submit(context.Background(), uuid.New(), answers)
	require.True(t, apperrors.IsCode(err, apperrors.CodeIncompleteInput))
	require.True(t, errors.Is(err, lifestyle.ErrIncompleteInput))
	require.Empty(t, repo.stored)
}

func TestService_SubmitSurfacesPersistenceFailure(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("connection reset")
	svc := newTestService(repo)

	_, err := svc.Submit(context.Background(), uuid.New(), completeAnswers())
	require.True(t, apperrors.IsCode(err, apperrors.CodePersistence))
}

func TestService_GetWithoutAssessment(t *testing.T) {
	svc := newTestService(newStubRepo())
	status, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, status.Completed)
	require.Nil(t, status.Assessment)
}

func TestService_ValidateStep(t *testing.T) {
	svc := newTestService(newStubRepo())

	resp, err := svc.ValidateStep(context.Background(), StepRequest{Step: StepWelcome})
	require.NoError(t, err)
	require.Equal(t, StepResponse{Step: StepBasics, Progress: 20}, resp)

	_, err = svc.ValidateStep(context.Background(), StepRequest{Step: StepBasics, Direction: DirectionNext})
	require.True(t, apperrors.IsCode(err, apperrors.CodeIncompleteInput))

	resp, err = svc.ValidateStep(context.Background(), StepRequest{Step: StepHealth, Answers: completeAnswers()})
	require.NoError(t, err)
	require.True(t, resp.Submit)
	require.Equal(t, StepResults, resp.Step)

	resp, err = svc.ValidateStep(context.Background(), StepRequest{Step: StepHealth, Direction: DirectionBack})
	require.NoError(t, err)
	require.Equal(t, StepHabits, resp.Step)

	_, err = svc.ValidateStep(context.Background(), StepRequest{Step: StepWelcome, Direction: "sideways"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.ValidateStep(context.Background(), StepRequest{Step: "bonus"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
