package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dailydiet/internal/config"
	"dailydiet/internal/database"
	"dailydiet/internal/service"
	"dailydiet/internal/storage"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "backup",
		Short:         "Export and import dailydiet meals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	return rootCmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every meal to a JSON backup file",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	cmd.Flags().String("s3-bucket", "", "Upload the backup to this S3 bucket (default: $BACKUP_S3_BUCKET)")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore meals from a JSON backup file",
		Args:  cobra.NoArgs,
		RunE:  runImport,
	}

	cmd.Flags().String("input", "", "Input file path")
	cmd.Flags().Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt for --clear")
	cmd.MarkFlagRequired("input")
	return cmd
}

// openBackupService loads configuration and prepares a migrated database
func openBackupService() (*config.Config, *database.DB, *service.BackupService, error) {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cfg, db, service.NewBackupService(db), nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	bucket, _ := cmd.Flags().GetString("s3-bucket")

	cfg, db, backupService, err := openBackupService()
	if err != nil {
		return err
	}
	defer db.Close()

	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backup, err := backupService.ExportToFile(ctx, outputPath)
	if err != nil {
		return err
	}

	fileInfo, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("failed to stat backup: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d meals to %s (%.2f MB)\n", len(backup.Meals), outputPath, float64(fileInfo.Size())/1024/1024)

	if bucket == "" {
		bucket = cfg.BackupS3Bucket
	}
	if bucket == "" {
		return nil
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, bucket)
	if err != nil {
		return err
	}
	location, err := uploader.UploadBackup(ctx, outputPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded backup to %s\n", location)
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	clearData, _ := cmd.Flags().GetBool("clear")
	skipConfirm, _ := cmd.Flags().GetBool("yes")

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file %s: %w", inputPath, err)
	}

	_, db, backupService, err := openBackupService()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if clearData && !skipConfirm && !confirm(cmd, "WARNING: This will delete all existing meals. Type 'yes' to confirm: ") {
		fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
		return nil
	}

	// Clearing happens in the import transaction and rolls back with it
	result, err := backupService.ImportFromFile(ctx, inputPath, service.ImportOptions{Clear: clearData})
	if err != nil {
		return err
	}

	if clearData {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d meals\n", result.Cleared)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Import complete: %d imported, %d skipped\n", result.Imported, result.Skipped)
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.TrimSpace(answer) == "yes"
}
