package onboarding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/lifestyle"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func completeAnswers() lifestyle.Answers {
	return lifestyle.Answers{
		Age:           intPtr(35),
		Gender:        lifestyle.GenderMale,
		SleepHours:    floatPtr(6),
		ActivityLevel: lifestyle.ActivityModerate,
		StressLevel:   lifestyle.StressHigh,
		EatingHabits:  lifestyle.EatingAverage,
		ScreenTime:    floatPtr(7),
		WaterIntake:   floatPtr(4),
		CommonIssues:  []lifestyle.Issue{lifestyle.IssueStress, lifestyle.IssueFatigue},
	}
}

func TestFlow_WalksAllSteps(t *testing.T) {
	flow := NewFlow()
	require.Equal(t, StepWelcome, flow.Step())
	require.Equal(t, 0, flow.Progress())

	require.NoError(t, flow.Next())
	require.Equal(t, StepBasics, flow.Step())

	err := flow.Next()
	require.True(t, errors.Is(err, lifestyle.ErrIncompleteInput))
	require.Equal(t, StepBasics, flow.Step())

	flow.Update(completeAnswers())
	for _, want := range []Step{StepLifestyle, StepHabits, StepHealth, StepResults} {
		require.NoError(t, flow.Next())
		require.Equal(t, want, flow.Step())
	}
	require.Equal(t, 100, flow.Progress())
	require.ErrorIs(t, flow.Next(), ErrFinished)
	require.ErrorIs(t, flow.Back(), ErrCannotGoBack)
}

func TestFlow_StepGating(t *testing.T) {
	cases := []struct {
		step    Step
		answers lifestyle.Answers
		missing []lifestyle.Field
	}{
		{StepBasics, lifestyle.Answers{Gender: lifestyle.GenderFemale}, []lifestyle.Field{lifestyle.FieldAge}},
		{StepLifestyle, lifestyle.Answers{}, []lifestyle.Field{lifestyle.FieldSleepHours, lifestyle.FieldActivityLevel}},
		{StepHabits, lifestyle.Answers{StressLevel: lifestyle.StressLow}, []lifestyle.Field{lifestyle.FieldEatingHabits}},
	}
	for _, tc := range cases {
		t.Run(string(tc.step), func(t *testing.T) {
			flow, err := Resume(tc.step, tc.answers)
			require.NoError(t, err)
			err = flow.Next()

			var verr *lifestyle.ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]lifestyle.Field, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			require.Equal(t, tc.missing, got)
			require.Equal(t, tc.step, flow.Step())
		})
	}
}

func TestFlow_HealthAcceptsZero(t *testing.T) {
	answers := completeAnswers()
	answers.ScreenTime = floatPtr(0)
	answers.WaterIntake = floatPtr(0)
	answers.CommonIssues = nil

	flow, err := Resume(StepHealth, answers)
	require.NoError(t, err)
	require.NoError(t, flow.Next())
	require.Equal(t, StepResults, flow.Step())
}

func TestFlow_Back(t *testing.T) {
	flow, err := Resume(StepHabits, lifestyle.Answers{})
	require.NoError(t, err)
	require.NoError(t, flow.Back())
	require.Equal(t, StepLifestyle, flow.Step())

	flow, err = Resume(StepWelcome, lifestyle.Answers{})
	require.NoError(t, err)
	require.ErrorIs(t, flow.Back(), ErrCannotGoBack)

	_, err = Resume("bonus", lifestyle.Answers{})
	require.ErrorIs(t, err, ErrUnknownStep)
}
