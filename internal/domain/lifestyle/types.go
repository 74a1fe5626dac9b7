package lifestyle

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the self-reported gender from the basics step.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the known values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ActivityLevel describes weekly exercise.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// Valid reports whether a is one of the known values.
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityModerate, ActivityActive:
		return true
	}
	return false
}

// StressLevel is the self-reported stress.
type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressModerate StressLevel = "moderate"
	StressHigh     StressLevel = "high"
)

// Valid reports whether s is one of the known values.
func (s StressLevel) Valid() bool {
	switch s {
	case StressLow, StressModerate, StressHigh:
		return true
	}
	return false
}

// EatingHabits is the self-reported diet quality.
type EatingHabits string

const (
	EatingPoor    EatingHabits = "poor"
	EatingAverage EatingHabits = "average"
	EatingGood    EatingHabits = "good"
)

// Valid reports whether e is one of the known values.
func (e EatingHabits) Valid() bool {
	switch e {
	case EatingPoor, EatingAverage, EatingGood:
		return true
	}
	return false
}

// Issue is a common complaint ticked during onboarding.
type Issue string

const (
	IssueHeadache   Issue = "headache"
	IssueFatigue    Issue = "fatigue"
	IssueWeightGain Issue = "weight_gain"
	IssueLowEnergy  Issue = "low_energy"
	IssuePoorSleep  Issue = "poor_sleep"
	IssueStress     Issue = "stress"
)

// Valid reports whether i is one of the known tags.
func (i Issue) Valid() bool {
	switch i {
	case IssueHeadache, IssueFatigue, IssueWeightGain, IssueLowEnergy, IssuePoorSleep, IssueStress:
		return true
	}
	return false
}

// Balance is the coarse lifestyle rating derived from the balance score.
type Balance string

const (
	BalanceNeedsImprovement Balance = "needs improvement"
	BalanceModerate         Balance = "moderately balanced"
	BalanceWell             Balance = "well balanced"
)

// Answers are the onboarding questionnaire responses. Pointer fields are
// unset until the user answers them; zero is a legitimate answer for
// screen time and water intake.
type Answers struct {
	Age           *int          `json:"age" yaml:"age"`
	Gender        Gender        `json:"gender" yaml:"gender"`
	SleepHours    *float64      `json:"sleepHours" yaml:"sleepHours"`
	ActivityLevel ActivityLevel `json:"activityLevel" yaml:"activityLevel"`
	StressLevel   StressLevel   `json:"stressLevel" yaml:"stressLevel"`
	EatingHabits  EatingHabits  `json:"eatingHabits" yaml:"eatingHabits"`
	ScreenTime    *float64      `json:"screenTime" yaml:"screenTime"`
	WaterIntake   *float64      `json:"waterIntake" yaml:"waterIntake"`
	CommonIssues  []Issue       `json:"commonIssues" yaml:"commonIssues"`
}

// Classification is derived once from Answers and stored with the assessment.
type Classification struct {
	ActivityType     ActivityLevel   `json:"activityType"`
	LifestyleBalance Balance         `json:"lifestyleBalance"`
	BalanceScore     int             `json:"balanceScore"`
	StressCategory   StressLevel     `json:"stressCategory"`
	RiskIndicators   []RiskIndicator `json:"riskIndicators"`
	Summary          string          `json:"summary"`
}

// HasRisk reports whether the classification flags r.
func (c Classification) HasRisk(r RiskIndicator) bool {
	for _, candidate := range c.RiskIndicators {
		if candidate == r {
			return true
		}
	}
	return false
}

// Assessment is the immutable onboarding result of one user.
type Assessment struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"userId"`
	Answers        Answers        `json:"answers"`
	Classification Classification `json:"classification"`
	CreatedAt      time.Time      `json:"createdAt"`
}
