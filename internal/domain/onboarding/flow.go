package onboarding

import (
	"errors"
	"fmt"

	"github.com/yanqian/vita/internal/domain/lifestyle"
)

// Step is one screen of the onboarding questionnaire.
type Step string

const (
	StepWelcome   Step = "welcome"
	StepBasics    Step = "basics"
	StepLifestyle Step = "lifestyle"
	StepHabits    Step = "habits"
	StepHealth    Step = "health"
	StepResults   Step = "results"
)

var steps = []Step{StepWelcome, StepBasics, StepLifestyle, StepHabits, StepHealth, StepResults}

// stepFields lists the answers each step must collect before advancing.
var stepFields = map[Step][]lifestyle.Field{
	StepWelcome:   nil,
	StepBasics:    {lifestyle.FieldAge, lifestyle.FieldGender},
	StepLifestyle: {lifestyle.FieldSleepHours, lifestyle.FieldActivityLevel},
	StepHabits:    {lifestyle.FieldStressLevel, lifestyle.FieldEatingHabits},
	StepHealth:    {lifestyle.FieldScreenTime, lifestyle.FieldWaterIntake, lifestyle.FieldCommonIssues},
}

var (
	ErrUnknownStep  = errors.New("unknown onboarding step")
	ErrCannotGoBack = errors.New("cannot go back from this step")
	ErrFinished     = errors.New("onboarding already finished")
)

func (s Step) index() int {
	for i, candidate := range steps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool { return s.index() >= 0 }

// Flow is the questionnaire state for one user. It holds answers in memory
// only; nothing is stored until the assessment is submitted.
type Flow struct {
	step    Step
	answers lifestyle.Answers
}

// NewFlow starts at the welcome step.
func NewFlow() *Flow {
	return &Flow{step: StepWelcome}
}

// Resume rebuilds a flow positioned at step with a draft of answers.
func Resume(step Step, draft lifestyle.Answers) (*Flow, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return &Flow{step: step, answers: draft}, nil
}

func (f *Flow) Step() Step                 { return f.step }
func (f *Flow) Answers() lifestyle.Answers { return f.answers }

// Update replaces the draft answers.
func (f *Flow) Update(answers lifestyle.Answers) {
	f.answers = answers
}

// Progress is the completion percentage shown above the questionnaire.
func (f *Flow) Progress() int {
	return f.step.index() * 100 / (len(steps) - 1)
}

// CanProceed validates the fields owned by the current step. Leaving the
// health step requires the whole questionnaire to be valid.
func (f *Flow) CanProceed() error {
	switch f.step {
	case StepResults:
		return ErrFinished
	case StepHealth:
		return f.answers.Validate()
	default:
		return f.answers.Check(stepFields[f.step]...)
	}
}

// Next advances one step once the current one validates.
func (f *Flow) Next() error {
	if err := f.CanProceed(); err != nil {
		return err
	}
	f.step = steps[f.step.index()+1]
	return nil
}

// Back returns to the previous step. Only the question steps allow it.
func (f *Flow) Back() error {
	switch f.step {
	case StepBasics, StepLifestyle, StepHabits, StepHealth:
		f.step = steps[f.step.index()-1]
		return nil
	default:
		return ErrCannotGoBack
	}
}
