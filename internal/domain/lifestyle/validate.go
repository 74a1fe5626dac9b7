package lifestyle

import (
	"errors"
	"sort"
	"strings"
)

// ErrIncompleteInput is matched by every ValidationError.
var ErrIncompleteInput = errors.New("incomplete input")

// Field names an Answers field in validation errors.
type Field string

const (
	FieldAge           Field = "age"
	FieldGender        Field = "gender"
	FieldSleepHours    Field = "sleepHours"
	FieldActivityLevel Field = "activityLevel"
	FieldStressLevel   Field = "stressLevel"
	FieldEatingHabits  Field = "eatingHabits"
	FieldScreenTime    Field = "screenTime"
	FieldWaterIntake   Field = "waterIntake"
	FieldCommonIssues  Field = "commonIssues"
)

// RequiredFields lists every field that must be answered before classification.
var RequiredFields = []Field{
	FieldAge,
	FieldGender,
	FieldSleepHours,
	FieldActivityLevel,
	FieldStressLevel,
	FieldEatingHabits,
	FieldScreenTime,
	FieldWaterIntake,
}

// FieldError describes one rejected field.
type FieldError struct {
	Field  Field  `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects the rejected fields of an Answers value.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, string(f.Field)+" "+f.Reason)
	}
	return ErrIncompleteInput.Error() + ": " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrIncompleteInput) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrIncompleteInput
}

// Validate checks every required field plus the issue tags.
func (a Answers) Validate() error {
	return a.Check(append(RequiredFields, FieldCommonIssues)...)
}

// Check validates only the given fields, in the given order.
func (a Answers) Check(fields ...Field) error {
	var errs []FieldError
	add := func(f Field, reason string) {
		errs = append(errs, FieldError{Field: f, Reason: reason})
	}
	for _, f := range fields {
		switch f {
		case FieldAge:
			switch {
			case a.Age == nil:
				add(f, "is required")
			case *a.Age <= 0:
				add(f, "must be positive")
			}
		case FieldGender:
			checkEnum(add, f, string(a.Gender), a.Gender.Valid())
		case FieldSleepHours:
			checkHours(add, f, a.SleepHours)
		case FieldActivityLevel:
			checkEnum(add, f, string(a.ActivityLevel), a.ActivityLevel.Valid())
		case FieldStressLevel:
			checkEnum(add, f, string(a.StressLevel), a.StressLevel.Valid())
		case FieldEatingHabits:
			checkEnum(add, f, string(a.EatingHabits), a.EatingHabits.Valid())
		case FieldScreenTime:
			checkHours(add, f, a.ScreenTime)
		case FieldWaterIntake:
			switch {
			case a.WaterIntake == nil:
				add(f, "is required")
			case *a.WaterIntake < 0:
				add(f, "cannot be negative")
			}
		case FieldCommonIssues:
			for _, issue := range a.CommonIssues {
				if !issue.Valid() {
					add(f, "contains unknown tag "+string(issue))
					break
				}
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

func checkEnum(add func(Field, string), f Field, raw string, valid bool) {
	switch {
	case raw == "":
		add(f, "is required")
	case !valid:
		add(f, "has unknown value "+raw)
	}
}

func checkHours(add func(Field, string), f Field, v *float64) {
	switch {
	case v == nil:
		add(f, "is required")
	case *v < 0 || *v > 24:
		add(f, "must be between 0 and 24")
	}
}

// NormalizeIssues returns the issue tags deduplicated and sorted.
func NormalizeIssues(issues []Issue) []Issue {
	seen := make(map[Issue]struct{}, len(issues))
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
