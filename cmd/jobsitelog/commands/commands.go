package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jobsitelog/core/internal/adapters/repository"
	"github.com/jobsitelog/core/internal/adapters/storage"
	"github.com/jobsitelog/core/internal/application/services"
	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/config"
	"github.com/jobsitelog/core/internal/infrastructure/database"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
	"github.com/jobsitelog/core/internal/infrastructure/server"
	"github.com/jobsitelog/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the JobSite Log server",
		Long:  "Start the JobSite Log server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewExportCommand creates the export command: render a job's estimate
// document straight from the store, without the server.
func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a job's estimate as plain text",
		Run: func(cmd *cobra.Command, args []string) {
			job, _ := cmd.Flags().GetString("job")
			out, _ := cmd.Flags().GetString("out")

			if job == "" {
				log.Fatal("A job id or address is required (--job)")
			}

			runExport(job, out)
		},
	}

	exportCmd.Flags().String("job", "", "Job id or address (required)")
	exportCmd.Flags().String("out", "", "Output file (defaults to the suggested filename; \"-\" for stdout)")

	return exportCmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands (postgres backend)",
		Long:  "Manage database migrations (up, down, version) for the postgres storage backend",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print JobSite Log version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("JobSite Log v1.0.0")
		},
	}
}

// newKVStore builds the configured storage backend.
func newKVStore(cfg *config.Config) (ports.KVStore, error) {
	switch cfg.Storage.Backend {
	case "file":
		return storage.NewFileStore(cfg.Storage.Path, cfg.Storage.QuotaBytes)
	case "memory":
		return storage.NewMemoryStore(cfg.Storage.QuotaBytes), nil
	case "postgres":
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStore(db.DB, cfg.Storage.QuotaBytes), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	kv, err := newKVStore(cfg)
	if err != nil {
		appLogger.Fatalw("Failed to open storage", "error", err, "backend", cfg.Storage.Backend)
	}
	defer kv.Close()

	srv, err := server.New(cfg, kv, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting JobSite Log server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Backend,
	)

	if err := srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil {
		appLogger.Fatalw("Server failed to start", "error", err)
	}
}

func runExport(jobRef, out string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	kv, err := newKVStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()

	stateRepo := repository.NewStateRepository(kv, cfg.Storage.Key, appLogger)
	if err := stateRepo.Load(ctx); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}

	job := findJob(ctx, stateRepo, jobRef)
	if job == nil {
		log.Fatalf("No job matches %q", jobRef)
	}

	summaryService := services.NewSummaryService(stateRepo)
	doc, err := summaryService.Estimate(ctx, job.ID)
	if err != nil {
		log.Fatalf("Failed to generate estimate: %v", err)
	}

	if out == "-" {
		fmt.Print(doc.Content)
		return
	}
	if out == "" {
		out = doc.Filename
	}
	if err := os.WriteFile(out, []byte(doc.Content), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}
	fmt.Printf("Wrote %s\n", out)
}

// findJob resolves a job by id first, then by exact address.
func findJob(ctx context.Context, stateRepo ports.StateRepository, ref string) *entities.Job {
	if id, err := uuid.Parse(ref); err == nil {
		if job, err := stateRepo.GetJob(ctx, id); err == nil {
			return job
		}
	}
	for _, job := range stateRepo.Jobs(ctx) {
		if strings.EqualFold(job.Address, ref) {
			return job
		}
	}
	return nil
}

func runMigration(direction string) {
	m := newMigrator()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	m := newMigrator()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("Failed to read migration version: %v", err)
	}

	if err == migrate.ErrNilVersion {
		fmt.Println("No migrations applied")
		return
	}
	fmt.Printf("Version: %d (dirty: %v)\n", version, dirty)
}

func newMigrator() *migrate.Migrate {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m
}
