package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/dailylog"
	"github.com/yanqian/vita/internal/domain/lifestyle"
)

// View is everything the home screen renders.
type View struct {
	DisplayName    string                   `json:"displayName"`
	Greeting       string                   `json:"greeting"`
	Classification lifestyle.Classification `json:"classification"`
	Today          dailylog.Log             `json:"today"`
	FocusAreas     []lifestyle.FocusArea    `json:"focusAreas"`
}

// ProfileSource resolves the user's profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID uuid.UUID) (auth.UserView, error)
}

// Service assembles the dashboard.
type Service interface {
	Build(ctx context.Context, userID uuid.UUID, assessment lifestyle.Assessment) (View, error)
}

type service struct {
	profiles ProfileSource
	logs     dailylog.Service
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds the dashboard service. loc decides the greeting hour.
func NewService(profiles ProfileSource, logs dailylog.Service, loc *time.Location, logger *slog.Logger) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		profiles: profiles,
		logs:     logs,
		loc:      loc,
		logger:   logger.With("component", "dashboard.service"),
		now:      time.Now,
	}
}

func (s *service) Build(ctx context.Context, userID uuid.UUID, assessment lifestyle.Assessment) (View, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return View{}, err
	}
	today, err := s.logs.Today(ctx, userID, assessment.Classification)
	if err != nil {
		return View{}, err
	}
	return View{
		DisplayName:    profile.GreetingName(),
		Greeting:       Greeting(s.now().In(s.loc)),
		Classification: assessment.Classification,
		Today:          today,
		FocusAreas:     lifestyle.FocusAreas(assessment.Classification.RiskIndicators),
	}, nil
}

// Greeting picks the salutation for the local clock time of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
