package service

import (
	"fmt"
	"sort"
	"time"

	"dailydiet/internal/models"
)

// InvalidDateError is returned when a diet meal carries a date that cannot be
// placed on a calendar day.
type InvalidDateError struct {
	MealID string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("meal %s has no usable date", e.MealID)
}

// streakState is the accumulator carried across the sorted days
type streakState struct {
	current  int
	best     int
	previous time.Time
	started  bool
}

func (s streakState) step(day time.Time) streakState {
	switch {
	case !s.started:
		s.current = 1
		s.started = true
	case day.Equal(s.previous):
		// same day again
	case s.previous.AddDate(0, 0, 1).Equal(day):
		s.current++
	default:
		s.current = 1
	}

	if s.current > s.best {
		s.best = s.current
	}
	s.previous = day
	return s
}

// LongestDietStreak returns the longest run of consecutive calendar days that
// each hold at least one diet meal. Days are taken in loc; a nil loc means UTC.
// Non-diet meals are ignored entirely and never bridge a gap.
func LongestDietStreak(meals []models.Meal, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}

	days := make([]time.Time, 0, len(meals))
	for _, meal := range meals {
		if !meal.IsDietMeal {
			continue
		}
		day, err := calendarDay(meal, loc)
		if err != nil {
			return 0, err
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return 0, nil
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var state streakState
	for _, day := range days {
		state = state.step(day)
	}
	return state.best, nil
}

// calendarDay truncates the meal date to midnight of its day in loc.
// The result is expressed as a UTC date so day arithmetic ignores DST shifts.
func calendarDay(meal models.Meal, loc *time.Location) (time.Time, error) {
	if meal.Date.IsZero() {
		return time.Time{}, &InvalidDateError{MealID: meal.ID}
	}
	y, m, d := meal.Date.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
