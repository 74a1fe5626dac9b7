package coach

import (
	"encoding/json"
	"strings"

	"github.com/yanqian/vita/internal/domain/lifestyle"
)

// DefaultSystemPrompt is the coaching preamble used when none is configured.
const DefaultSystemPrompt = `You are VITA, a friendly and supportive AI lifestyle coach. You help people build healthier daily habits through small, sustainable changes.

GUIDELINES:
- Be warm, encouraging and non-judgmental.
- Keep responses concise: 2-4 sentences unless the user asks for more detail.
- Suggest ONE small, actionable task per response.
- Personalize advice using the user context below.
- You are not a doctor. Never diagnose conditions or prescribe treatment; suggest consulting a healthcare professional for medical concerns.
- Focus on sleep, hydration, movement, nutrition, stress and screen habits.`

type userContext struct {
	Age            *int                     `json:"age,omitempty"`
	Gender         lifestyle.Gender         `json:"gender,omitempty"`
	ActivityLevel  lifestyle.ActivityLevel  `json:"activityLevel"`
	StressLevel    lifestyle.StressLevel    `json:"stressLevel"`
	EatingHabits   lifestyle.EatingHabits   `json:"eatingHabits"`
	SleepHours     *float64                 `json:"sleepHours"`
	ScreenTime     *float64                 `json:"screenTime"`
	WaterIntake    *float64                 `json:"waterIntake"`
	CommonIssues   []lifestyle.Issue        `json:"commonIssues"`
	Classification lifestyle.Classification `json:"classification"`
}

// systemMessage renders the preamble followed by the serialized user context.
func systemMessage(preamble string, a lifestyle.Assessment) (string, error) {
	if strings.TrimSpace(preamble) == "" {
		preamble = DefaultSystemPrompt
	}
	issues := a.Answers.CommonIssues
	if issues == nil {
		issues = []lifestyle.Issue{}
	}
	payload, err := json.MarshalIndent(userContext{
		Age:            a.Answers.Age,
		Gender:         a.Answers.Gender,
		ActivityLevel:  a.Answers.ActivityLevel,
		StressLevel:    a.Answers.StressLevel,
		EatingHabits:   a.Answers.EatingHabits,
		SleepHours:     a.Answers.SleepHours,
		ScreenTime:     a.Answers.ScreenTime,
		WaterIntake:    a.Answers.WaterIntake,
		CommonIssues:   issues,
		Classification: a.Classification,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return preamble + "\n\nUSER CONTEXT:\n" + string(payload), nil
}
