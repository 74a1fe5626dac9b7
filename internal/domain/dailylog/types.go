package dailylog

import (
	"time"

	"github.com/google/uuid"
)

// Mood is the optional self-reported mood of the day.
type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodLow   Mood = "low"
)

// Valid reports whether m is a known mood or unset.
func (m Mood) Valid() bool {
	switch m {
	case "", MoodGreat, MoodGood, MoodOkay, MoodLow:
		return true
	}
	return false
}

// Metrics are the user-entered wellness values of one day.
type Metrics struct {
	EnergyLevel  int    `json:"energyLevel"`
	WaterGlasses int    `json:"waterGlasses"`
	SleepQuality int    `json:"sleepQuality"`
	Mood         Mood   `json:"mood"`
	ExerciseDone bool   `json:"exerciseDone"`
	Notes        string `json:"notes"`
}

// Log is the entry of one user on one calendar date. Metrics stays nil until
// the user saves them; the task and suggestion are assigned on first view.
type Log struct {
	UserID             uuid.UUID `json:"userId"`
	Date               string    `json:"date"`
	Metrics            *Metrics  `json:"metrics"`
	DailyTask          string    `json:"dailyTask"`
	DailyTaskCompleted bool      `json:"dailyTaskCompleted"`
	AISuggestion       string    `json:"aiSuggestion"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// HasContent reports whether the day already has its task and suggestion.
func (l Log) HasContent() bool {
	return l.DailyTask != "" && l.AISuggestion != ""
}

// MetricsInput is the request body for saving today's metrics.
type MetricsInput struct {
	EnergyLevel  *int   `json:"energyLevel"`
	WaterGlasses *int   `json:"waterGlasses"`
	SleepQuality *int   `json:"sleepQuality"`
	Mood         Mood   `json:"mood"`
	ExerciseDone bool   `json:"exerciseDone"`
	Notes        string `json:"notes"`
}
