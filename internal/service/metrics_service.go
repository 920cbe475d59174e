package service

import (
	"context"
	"fmt"
	"time"

	"dailydiet/internal/models"
	"dailydiet/internal/repository"
)

// MetricsService aggregates a user's meals into the metrics payload
type MetricsService struct {
	mealRepo *repository.MealRepository
	loc      *time.Location
}

// NewMetricsService creates a new metrics service. Streak days are counted in loc.
func NewMetricsService(mealRepo *repository.MealRepository, loc *time.Location) *MetricsService {
	return &MetricsService{mealRepo: mealRepo, loc: loc}
}

// GetMetrics loads every meal of userID and summarizes them
func (s *MetricsService) GetMetrics(ctx context.Context, userID string) (*models.Metrics, error) {
	meals, err := s.mealRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}
	return Summarize(meals, s.loc)
}

// Summarize computes the meal counts and the best diet streak
func Summarize(meals []models.Meal, loc *time.Location) (*models.Metrics, error) {
	best, err := LongestDietStreak(meals, loc)
	if err != nil {
		return nil, err
	}

	metrics := &models.Metrics{
		MealsAmount:            len(meals),
		BestSequenceWithinDiet: best,
	}
	for _, meal := range meals {
		if meal.IsDietMeal {
			metrics.DietMealsAmount++
		}
	}
	metrics.NonDietMealsAmount = metrics.MealsAmount - metrics.DietMealsAmount

	return metrics, nil
}
