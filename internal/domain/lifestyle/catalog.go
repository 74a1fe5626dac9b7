package lifestyle

import "fmt"

// RiskIndicator is one of the fixed lifestyle weak points flagged by Classify.
// The declaration order is the evaluation order of the threshold checks.
type RiskIndicator uint8

const (
	RiskSleep RiskIndicator = iota
	RiskHydration
	RiskScreenTime
	RiskMovement
	RiskNutrition

	riskIndicatorCount
)

type riskProfile struct {
	tag      string
	tasks    [2]string
	focusTip string
}

var riskProfiles = [...]riskProfile{
	RiskSleep: {
		tag: "sleep",
		tasks: [2]string{
			"Go to bed 15 minutes earlier than usual tonight",
			"Avoid screens 30 minutes before bed",
		},
		focusTip: "Try going to bed 30 minutes earlier tonight",
	},
	RiskHydration: {
		tag: "hydration",
		tasks: [2]string{
			"Drink 8 glasses of water today",
			"Start your morning with a glass of water",
		},
		focusTip: "Set reminders to drink water every 2 hours",
	},
	RiskScreenTime: {
		tag: "screen time",
		tasks: [2]string{
			"Take a 5-minute screen break every hour",
			"Spend 30 minutes without your phone today",
		},
		focusTip: "Take a 5-minute break from screens every hour",
	},
	RiskMovement: {
		tag: "movement",
		tasks: [2]string{
			"Take a 15-minute walk today",
			"Do 10 stretches during your breaks",
		},
		focusTip: "Start with a 10-minute walk after lunch",
	},
	RiskNutrition: {
		tag: "nutrition",
		tasks: [2]string{
			"Eat a healthy breakfast with protein",
			"Include vegetables in your lunch",
		},
		focusTip: "Add one serving of vegetables to your next meal",
	},
}

// Every indicator needs a profile: a missing or extra entry fails to compile.
var _ = [1]struct{}{}[len(riskProfiles)-int(riskIndicatorCount)]

var defaultTasks = [...]string{
	"Take 3 deep breaths before each meal",
	"Write down 3 things you're grateful for",
	"Spend 10 minutes doing something you enjoy",
}

// AllRiskIndicators returns every indicator in evaluation order.
func AllRiskIndicators() []RiskIndicator {
	out := make([]RiskIndicator, 0, riskIndicatorCount)
	for r := RiskIndicator(0); r < riskIndicatorCount; r++ {
		out = append(out, r)
	}
	return out
}

// DefaultTasks returns the tasks offered when no indicator is flagged.
func DefaultTasks() []string {
	return append([]string(nil), defaultTasks[:]...)
}

// Valid reports whether r is a declared indicator.
func (r RiskIndicator) Valid() bool {
	return r < riskIndicatorCount
}

func (r RiskIndicator) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RiskIndicator(%d)", uint8(r))
	}
	return riskProfiles[r].tag
}

// Tasks returns the two candidate daily tasks for r.
func (r RiskIndicator) Tasks() []string {
	if !r.Valid() {
		return nil
	}
	return append([]string(nil), riskProfiles[r].tasks[:]...)
}

// FocusTip returns the dashboard tip shown for r.
func (r RiskIndicator) FocusTip() string {
	if !r.Valid() {
		return ""
	}
	return riskProfiles[r].focusTip
}

// ParseRiskIndicator maps a tag such as "screen time" to its indicator.
func ParseRiskIndicator(tag string) (RiskIndicator, error) {
	for r := RiskIndicator(0); r < riskIndicatorCount; r++ {
		if riskProfiles[r].tag == tag {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown risk indicator %q", tag)
}

func (r RiskIndicator) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk indicator %d", uint8(r))
	}
	return []byte(riskProfiles[r].tag), nil
}

func (r *RiskIndicator) UnmarshalText(text []byte) error {
	parsed, err := ParseRiskIndicator(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// FocusArea pairs a flagged indicator with its tip.
type FocusArea struct {
	Indicator RiskIndicator `json:"indicator"`
	Tip       string        `json:"tip"`
}

// FocusAreas returns one tip per indicator, preserving order.
func FocusAreas(risks []RiskIndicator) []FocusArea {
	out := make([]FocusArea, 0, len(risks))
	for _, r := range risks {
		if !r.Valid() {
			continue
		}
		out = append(out, FocusArea{Indicator: r, Tip: r.FocusTip()})
	}
	return out
}
