package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"emotionquest/internal/config"
	"emotionquest/internal/logger"
	"emotionquest/internal/repository"
	"emotionquest/internal/service"
	"emotionquest/internal/utils"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importYes := importCmd.Bool("yes", false, "Overwrite existing records without asking")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, "backup")
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("Failed to resolve time zone")
	}

	ctx := context.Background()
	store, closer, err := repository.OpenRecordStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record store")
	}
	defer closer.Close()

	clock := utils.SystemClock{Location: loc}
	backupService := service.NewBackupService(store, cfg.StoreBackend, clock, log)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, log, backupService, clock, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, log, backupService, *importInput, *importYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

// defaultBackupName names an export after the clock's local time
func defaultBackupName(clock utils.Clock) string {
	return fmt.Sprintf("backup_%s.json", clock.Now().Format("20060102_150405"))
}

func handleExport(ctx context.Context, log *logrus.Entry, backupService *service.BackupService, clock utils.Clock, outputPath string) {
	if outputPath == "" {
		outputPath = defaultBackupName(clock)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithError(err).Fatal("Failed to create output directory")
		}
	}

	log.WithField("path", outputPath).Info("Exporting records")
	if err := backupService.Export(ctx, outputPath); err != nil {
		log.WithError(err).Fatal("Export failed")
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		log.WithField("bytes", fileInfo.Size()).Info("Export complete")
	}
}

func handleImport(ctx context.Context, log *logrus.Entry, backupService *service.BackupService, inputPath string, skipConfirm bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.WithField("path", inputPath).Fatal("Input file does not exist")
	}

	if !skipConfirm {
		fmt.Print("WARNING: records in the backup replace the stored ones. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Info("Import cancelled")
			return
		}
	}

	log.WithField("path", inputPath).Info("Importing records")
	if err := backupService.Import(ctx, inputPath); err != nil {
		log.WithError(err).Fatal("Import failed")
	}

	log.Info("Import complete")
}

func printUsage() {
	fmt.Println("EmotionQuest Record Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export stored records to a JSON file")
	fmt.Println("  backup import [options]    Restore records from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -yes              Skip the overwrite confirmation")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export")
	fmt.Println("  backup export -output backups/today.json")
	fmt.Println("  backup import -input backup.json")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORE_BACKEND    Record store: sql, redis, or memory (default: sql)")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./emotionquest.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  REDIS_ADDR       Redis address when STORE_BACKEND=redis")
}
