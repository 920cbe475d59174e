package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Meal represents a meal logged by an anonymous user
type Meal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	IsDietMeal  bool      `json:"is_diet_meal"`
	CreatedAt   time.Time `json:"created_at"`
}

// Metrics summarizes a user's meals
type Metrics struct {
	MealsAmount            int `json:"mealsAmount"`
	DietMealsAmount        int `json:"dietMealsAmount"`
	NonDietMealsAmount     int `json:"nonDietMealsAmount"`
	BestSequenceWithinDiet int `json:"bestSequenceWithinDiet"`
}

// CreateMealRequest is the body of POST /meals
type CreateMealRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	IsDietMeal  FlexBool `json:"is_diet_meal"`
}

// UpdateMealRequest is the body of PUT /meals/{id}. Nil fields are left unchanged.
type UpdateMealRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	IsDietMeal  *FlexBool `json:"is_diet_meal"`
}

// MealUpdate holds validated changes to apply to a stored meal
type MealUpdate struct {
	Name        *string
	Description *string
	Date        *time.Time
	IsDietMeal  *bool
}

// Empty reports whether the update changes nothing
func (u MealUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Date == nil && u.IsDietMeal == nil
}

// Apply copies the set fields of the update onto meal
func (u MealUpdate) Apply(meal *Meal) {
	if u.Name != nil {
		meal.Name = *u.Name
	}
	if u.Description != nil {
		meal.Description = *u.Description
	}
	if u.Date != nil {
		meal.Date = *u.Date
	}
	if u.IsDietMeal != nil {
		meal.IsDietMeal = *u.IsDietMeal
	}
}

// FlexBool accepts JSON booleans, numbers and the strings "true"/"false"/"1"/"0"/"yes"/"no"
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*b = false
	case bool:
		*b = FlexBool(v)
	case float64:
		*b = v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "on":
			*b = true
			return nil
		case "no", "n", "off", "":
			*b = false
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("cannot interpret %q as a boolean", v)
		}
		*b = FlexBool(parsed)
	default:
		return fmt.Errorf("cannot interpret %s as a boolean", string(data))
	}
	return nil
}
