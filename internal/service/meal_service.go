package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailydiet/internal/models"
	"dailydiet/internal/repository"
	"dailydiet/internal/utils"

	"github.com/google/uuid"
)

// ErrMealNotFound is returned when a meal does not exist or is owned by another user
var ErrMealNotFound = errors.New("meal not found")

// MealService handles meal business logic
type MealService struct {
	mealRepo *repository.MealRepository
	loc      *time.Location
	now      func() time.Time
}

// NewMealService creates a new meal service. Dates sent without an offset are
// read in loc.
func NewMealService(mealRepo *repository.MealRepository, loc *time.Location) *MealService {
	if loc == nil {
		loc = time.UTC
	}
	return &MealService{
		mealRepo: mealRepo,
		loc:      loc,
		now:      time.Now,
	}
}

// CreateMeal validates and stores a new meal for userID
func (s *MealService) CreateMeal(ctx context.Context, userID string, req models.CreateMealRequest) (*models.Meal, error) {
	if err := utils.ValidateMealName(req.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateMealDescription(req.Description); err != nil {
		return nil, err
	}

	now := s.now()
	date, err := utils.ParseMealDate(req.Date, s.loc, now)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Date:        date,
		IsDietMeal:  bool(req.IsDietMeal),
		CreatedAt:   now,
	}

	if err := s.mealRepo.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	return meal, nil
}

// ListMeals returns every meal of userID ordered by date
func (s *MealService) ListMeals(ctx context.Context, userID string) ([]models.Meal, error) {
	meals, err := s.mealRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// GetMeal returns a single meal owned by userID
func (s *MealService) GetMeal(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	if err := validateMealID(mealID); err != nil {
		return nil, err
	}

	meal, err := s.mealRepo.GetByID(ctx, mealID, userID)
	if repository.IsNotFound(err) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return meal, nil
}

// UpdateMeal applies a partial update to a meal owned by userID
func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID string, req models.UpdateMealRequest) (*models.Meal, error) {
	if err := validateMealID(mealID); err != nil {
		return nil, err
	}

	update, err := s.buildUpdate(req)
	if err != nil {
		return nil, err
	}

	meal, err := s.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	update.Apply(meal)

	ok, err := s.mealRepo.Update(ctx, meal)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}
	if !ok {
		// deleted between read and write
		return nil, ErrMealNotFound
	}
	return meal, nil
}

// DeleteMeal removes a meal owned by userID
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if err := validateMealID(mealID); err != nil {
		return err
	}

	ok, err := s.mealRepo.Delete(ctx, mealID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if !ok {
		return ErrMealNotFound
	}
	return nil
}

func (s *MealService) buildUpdate(req models.UpdateMealRequest) (models.MealUpdate, error) {
	var update models.MealUpdate

	if req.Name != nil {
		if err := utils.ValidateMealName(*req.Name); err != nil {
			return update, err
		}
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	if req.Description != nil {
		if err := utils.ValidateMealDescription(*req.Description); err != nil {
			return update, err
		}
		update.Description = req.Description
	}
	if req.Date != nil {
		date, err := utils.ParseMealDate(*req.Date, s.loc, s.now())
		if err != nil {
			return update, err
		}
		update.Date = &date
	}
	if req.IsDietMeal != nil {
		diet := bool(*req.IsDietMeal)
		update.IsDietMeal = &diet
	}

	if update.Empty() {
		return update, utils.ValidationError{Field: "body", Message: "at least one field must be provided"}
	}
	return update, nil
}

func validateMealID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return utils.ValidationError{Field: "id", Message: "must be a valid UUID"}
	}
	return nil
}
