package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxMealNameLength        = 120
	MaxMealDescriptionLength = 1000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateMealName checks if a meal name is valid
func ValidateMealName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > MaxMealNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxMealNameLength)}
	}
	return nil
}

// ValidateMealDescription checks if a meal description is valid
func ValidateMealDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxMealDescriptionLength {
		return ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxMealDescriptionLength)}
	}
	return nil
}

// Layouts accepted for meal dates. Layouts without an offset are read in the
// caller's location.
var mealDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseMealDate parses a client supplied meal date. An empty value means now.
func ParseMealDate(value string, loc *time.Location, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now, nil
	}

	for _, layout := range mealDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ValidationError{Field: "date", Message: "invalid date, expected RFC3339 or YYYY-MM-DD"}
}
