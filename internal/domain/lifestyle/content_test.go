package lifestyle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed picks; IntN panics if a pick is out of range.
type scriptedSource struct {
	picks []int
	calls []int
}

func (s *scriptedSource) IntN(n int) int {
	s.calls = append(s.calls, n)
	v := s.picks[0]
	s.picks = s.picks[1:]
	if v >= n {
		panic("scripted pick out of range")
	}
	return v
}

func TestGenerator_DailyTaskPicksIndicatorThenTask(t *testing.T) {
	src := &scriptedSource{picks: []int{1, 0}}
	gen := NewGenerator(src)

	task := gen.DailyTask([]RiskIndicator{RiskSleep, RiskMovement, RiskNutrition})
	require.Equal(t, "Take a 15-minute walk today", task)
	require.Equal(t, []int{3, 2}, src.calls)
}

func TestGenerator_DailyTaskDefaults(t *testing.T) {
	gen := NewSeededGenerator(7)
	defaults := DefaultTasks()

	for i := 0; i < 50; i++ {
		require.Contains(t, defaults, gen.DailyTask(nil))
	}

	src := &scriptedSource{picks: []int{2}}
	require.Equal(t, "Spend 10 minutes doing something you enjoy", NewGenerator(src).DailyTask([]RiskIndicator{}))
	require.Equal(t, []int{3}, src.calls)
}

func TestGenerator_DailyTaskMembership(t *testing.T) {
	gen := NewSeededGenerator(42)
	risks := []RiskIndicator{RiskHydration, RiskScreenTime}
	allowed := append(RiskHydration.Tasks(), RiskScreenTime.Tasks()...)

	for i := 0; i < 50; i++ {
		require.Contains(t, allowed, gen.DailyTask(risks))
	}
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	risks := AllRiskIndicators()
	a := NewSeededGenerator(99)
	b := NewSeededGenerator(99)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.DailyTask(risks), b.DailyTask(risks))
	}
}

func TestSuggestion_PriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		c    Classification
		want string
	}{
		{
			name: "stress beats sleep",
			c: Classification{
				StressCategory:   StressHigh,
				RiskIndicators:   []RiskIndicator{RiskSleep, RiskHydration},
				LifestyleBalance: BalanceNeedsImprovement,
			},
			want: SuggestionStress,
		},
		{
			name: "stress beats well balanced",
			c:    Classification{StressCategory: StressHigh, LifestyleBalance: BalanceWell},
			want: SuggestionStress,
		},
		{
			name: "sleep beats hydration",
			c: Classification{
				StressCategory: StressModerate,
				RiskIndicators: []RiskIndicator{RiskSleep, RiskHydration},
			},
			want: SuggestionSleep,
		},
		{
			name: "hydration",
			c: Classification{
				StressCategory:   StressLow,
				RiskIndicators:   []RiskIndicator{RiskHydration, RiskMovement},
				LifestyleBalance: BalanceWell,
			},
			want: SuggestionWater,
		},
		{
			name: "well balanced",
			c: Classification{
				StressCategory:   StressLow,
				RiskIndicators:   []RiskIndicator{RiskScreenTime},
				LifestyleBalance: BalanceWell,
			},
			want: SuggestionKeepUp,
		},
		{
			name: "fallback",
			c: Classification{
				StressCategory:   StressModerate,
				RiskIndicators:   []RiskIndicator{RiskNutrition},
				LifestyleBalance: BalanceModerate,
			},
			want: SuggestionSteady,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Suggestion(tc.c))
		})
	}
}

func TestCatalog_CoversEveryIndicator(t *testing.T) {
	for _, r := range AllRiskIndicators() {
		require.Len(t, r.Tasks(), 2, r.String())
		require.NotEmpty(t, r.FocusTip(), r.String())

		parsed, err := ParseRiskIndicator(r.String())
		require.NoError(t, err)
		require.Equal(t, r, parsed)
	}
	require.False(t, riskIndicatorCount.Valid())
	require.Empty(t, riskIndicatorCount.Tasks())
}

func TestFocusAreas(t *testing.T) {
	areas := FocusAreas([]RiskIndicator{RiskMovement, RiskSleep})
	require.Equal(t, []FocusArea{
		{Indicator: RiskMovement, Tip: "Start with a 10-minute walk after lunch"},
		{Indicator: RiskSleep, Tip: "Try going to bed 30 minutes earlier tonight"},
	}, areas)
}
