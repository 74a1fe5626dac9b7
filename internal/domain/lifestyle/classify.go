package lifestyle

import "strings"

// Classify derives the lifestyle classification from complete answers.
// Incomplete answers are rejected with a *ValidationError; no field is defaulted.
func Classify(a Answers) (Classification, error) {
	if err := a.Validate(); err != nil {
		return Classification{}, err
	}
	score := balanceScore(a)
	risks := riskIndicators(a)
	return Classification{
		ActivityType:     a.ActivityLevel,
		LifestyleBalance: BalanceFor(score),
		BalanceScore:     score,
		StressCategory:   a.StressLevel,
		RiskIndicators:   risks,
		Summary:          Summarize(risks),
	}, nil
}

// BalanceFor maps a 0-5 balance score to its rating.
func BalanceFor(score int) Balance {
	switch {
	case score <= 1:
		return BalanceNeedsImprovement
	case score <= 3:
		return BalanceModerate
	default:
		return BalanceWell
	}
}

func balanceScore(a Answers) int {
	score := 0
	if *a.SleepHours >= 7 {
		score++
	}
	if a.ActivityLevel == ActivityActive || a.ActivityLevel == ActivityModerate {
		score++
	}
	if a.EatingHabits == EatingGood {
		score++
	}
	if *a.WaterIntake >= 6 {
		score++
	}
	if a.StressLevel == StressLow {
		score++
	}
	return score
}

// riskIndicators runs the threshold checks in RiskIndicator declaration order.
func riskIndicators(a Answers) []RiskIndicator {
	risks := make([]RiskIndicator, 0, riskIndicatorCount)
	if *a.SleepHours < 6 {
		risks = append(risks, RiskSleep)
	}
	if *a.WaterIntake < 5 {
		risks = append(risks, RiskHydration)
	}
	if *a.ScreenTime > 6 {
		risks = append(risks, RiskScreenTime)
	}
	if a.ActivityLevel == ActivitySedentary {
		risks = append(risks, RiskMovement)
	}
	if a.EatingHabits == EatingPoor {
		risks = append(risks, RiskNutrition)
	}
	return risks
}

const summaryPrefix = "Your AI coach is ready to help you "

// Summarize builds the onboarding summary sentence. The template is chosen by
// the number of indicators; up to two are named literally.
func Summarize(risks []RiskIndicator) string {
	switch n := len(risks); {
	case n == 0:
		return summaryPrefix + "maintain your healthy lifestyle with personalized daily tips and routines."
	case n <= 2:
		tags := make([]string, 0, n)
		for _, r := range risks {
			tags = append(tags, r.String())
		}
		return summaryPrefix + "improve your " + strings.Join(tags, " and ") + " with simple, achievable daily tasks."
	default:
		return summaryPrefix + "transform your lifestyle step by step. We'll focus on one small change at a time."
	}
}
