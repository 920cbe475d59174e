package repository

import (
	"context"
	"database/sql"
	"errors"

	"dailydiet/internal/database"
	"dailydiet/internal/models"
)

const mealColumns = `id, user_id, name, description, date, is_diet_meal, created_at`

// MealRepository handles meal database operations
type MealRepository struct {
	db database.DBTX
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db database.DBTX) *MealRepository {
	return &MealRepository{db: db}
}

// WithTx returns a repository that runs its queries inside tx
func (r *MealRepository) WithTx(tx *database.Tx) *MealRepository {
	return &MealRepository{db: tx}
}

// Create inserts a new meal. Dates are stored in UTC.
func (r *MealRepository) Create(ctx context.Context, meal *models.Meal) error {
	query := `
		INSERT INTO meals (` + mealColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Description,
		meal.Date.UTC(),
		meal.IsDietMeal,
		meal.CreatedAt.UTC(),
	)
	return err
}

// GetByID retrieves a meal owned by userID. Returns sql.ErrNoRows when the
// meal does not exist or belongs to someone else.
func (r *MealRepository) GetByID(ctx context.Context, id, userID string) (*models.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE id = ? AND user_id = ?
	`

	meal, err := scanMeal(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	return meal, nil
}

// ListByUser retrieves every meal of a user ordered by date
func (r *MealRepository) ListByUser(ctx context.Context, userID string) ([]models.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE user_id = ?
		ORDER BY date ASC, created_at ASC
	`
	return r.list(ctx, query, userID)
}

// ListAll retrieves every meal of every user
func (r *MealRepository) ListAll(ctx context.Context) ([]models.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		ORDER BY user_id ASC, date ASC
	`
	return r.list(ctx, query)
}

// Update overwrites the mutable fields of a meal owned by meal.UserID.
// Returns false when no such meal exists.
func (r *MealRepository) Update(ctx context.Context, meal *models.Meal) (bool, error) {
	query := `
		UPDATE meals
		SET name = ?, description = ?, date = ?, is_diet_meal = ?
		WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		meal.Name,
		meal.Description,
		meal.Date.UTC(),
		meal.IsDietMeal,
		meal.ID,
		meal.UserID,
	)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Delete removes a meal owned by userID. Returns false when no such meal exists.
func (r *MealRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM meals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Exists reports whether a meal with the given id is stored, regardless of owner
func (r *MealRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meals WHERE id = ?", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAll removes every meal
func (r *MealRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM meals")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MealRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Meal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, *meal)
	}

	return meals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMeal(row rowScanner) (*models.Meal, error) {
	meal := &models.Meal{}
	var createdAt sql.NullTime

	err := row.Scan(
		&meal.ID,
		&meal.UserID,
		&meal.Name,
		&meal.Description,
		&meal.Date,
		&meal.IsDietMeal,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if createdAt.Valid {
		meal.CreatedAt = createdAt.Time
	}

	return meal, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsNotFound reports whether err means the requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
