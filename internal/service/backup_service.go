package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"dailydiet/internal/database"
	"dailydiet/internal/models"
	"dailydiet/internal/repository"
	"dailydiet/internal/utils"

	"github.com/google/uuid"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exported_at"`
	DatabaseType string        `json:"database_type"`
	Meals        []models.Meal `json:"meals"`
}

// ImportResult reports what an import did
type ImportResult struct {
	Cleared  int64
	Imported int
	Skipped  int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db       *database.DB
	mealRepo *repository.MealRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:       db,
		mealRepo: repository.NewMealRepository(db),
	}
}

// Export writes every stored meal as JSON to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	meals, err := s.mealRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export meals: %w", err)
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
		Meals:        meals,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	return backup, nil
}

// ExportToFile creates a complete backup of the database in outputPath
func (s *BackupService) ExportToFile(ctx context.Context, outputPath string) (*BackupData, error) {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.Export(ctx, file)
	if err != nil {
		return nil, err
	}

	log.Printf("Exported %d meals to %s", len(backup.Meals), outputPath)
	return backup, nil
}

// ImportOptions controls how a backup is restored
type ImportOptions struct {
	// Clear deletes every stored meal before the backup is inserted
	Clear bool
}

// Import restores meals from a backup stream inside a single transaction.
// Meals whose id already exists are skipped. An invalid meal aborts the
// whole import, including any clear.
func (s *BackupService) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repo := s.mealRepo.WithTx(tx)
	result := &ImportResult{}

	if opts.Clear {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clear meals: %w", err)
		}
		result.Cleared = n
	}

	for i := range backup.Meals {
		meal := &backup.Meals[i]

		if err := validateBackupMeal(meal); err != nil {
			return nil, fmt.Errorf("invalid meal at index %d: %w", i, err)
		}

		exists, err := repo.Exists(ctx, meal.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check meal %s: %w", meal.ID, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		if meal.CreatedAt.IsZero() {
			meal.CreatedAt = time.Now().UTC()
		}
		if err := repo.Create(ctx, meal); err != nil {
			return nil, fmt.Errorf("failed to import meal %s: %w", meal.ID, err)
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	if opts.Clear {
		log.Printf("Cleared %d meals", result.Cleared)
	}
	log.Printf("Imported %d meals, skipped %d existing", result.Imported, result.Skipped)
	return result, nil
}

// ImportFromFile restores meals from a backup file
func (s *BackupService) ImportFromFile(ctx context.Context, inputPath string, opts ImportOptions) (*ImportResult, error) {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, file, opts)
}

// validateBackupMeal applies the API write rules to a restored meal
func validateBackupMeal(meal *models.Meal) error {
	if _, err := uuid.Parse(meal.ID); err != nil {
		return utils.ValidationError{Field: "id", Message: "must be a valid UUID"}
	}
	if _, err := uuid.Parse(meal.UserID); err != nil {
		return utils.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}
	if err := utils.ValidateMealName(meal.Name); err != nil {
		return err
	}
	if err := utils.ValidateMealDescription(meal.Description); err != nil {
		return err
	}
	if meal.Date.IsZero() {
		return utils.ValidationError{Field: "date", Message: "date is required"}
	}
	return nil
}
