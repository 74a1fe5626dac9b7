package lifestyle

import "math/rand/v2"

// RandomSource picks an integer in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator selects daily tasks using an injectable random source.
type Generator struct {
	rnd RandomSource
}

// NewGenerator returns a Generator. A nil source uses the process-wide generator.
func NewGenerator(rnd RandomSource) *Generator {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &Generator{rnd: rnd}
}

// NewSeededGenerator returns a Generator whose choices are reproducible for seed.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)))
}

// DailyTask picks one flagged indicator uniformly, then one of its tasks.
// With no indicators it picks from the default tasks.
func (g *Generator) DailyTask(risks []RiskIndicator) string {
	valid := make([]RiskIndicator, 0, len(risks))
	for _, r := range risks {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return defaultTasks[g.rnd.IntN(len(defaultTasks))]
	}
	tasks := riskProfiles[valid[g.rnd.IntN(len(valid))]].tasks
	return tasks[g.rnd.IntN(len(tasks))]
}

const (
	SuggestionStress = "Your stress levels seem elevated. Try taking short breaks throughout the day and practice deep breathing. Remember, small moments of calm add up."
	SuggestionSleep  = "Good sleep is the foundation of energy and focus. Tonight, try dimming lights an hour before bed and avoiding screens to improve your sleep quality."
	SuggestionWater  = "Staying hydrated boosts your energy and focus. Keep a water bottle nearby and aim for a glass every couple of hours throughout the day."
	SuggestionKeepUp = "You're doing great! Keep up your healthy habits and focus on consistency. Today is a perfect day to maintain your positive momentum."
	SuggestionSteady = "Every day is a new opportunity to improve your lifestyle. Focus on one small healthy choice today, and those choices will compound over time."
)

// Suggestion returns the coaching suggestion for c. Rules are checked in
// priority order and the first match wins.
func Suggestion(c Classification) string {
	switch {
	case c.StressCategory == StressHigh:
		return SuggestionStress
	case c.HasRisk(RiskSleep):
		return SuggestionSleep
	case c.HasRisk(RiskHydration):
		return SuggestionWater
	case c.LifestyleBalance == BalanceWell:
		return SuggestionKeepUp
	default:
		return SuggestionSteady
	}
}
