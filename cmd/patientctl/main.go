package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"patient-manager/internal/config"
	"patient-manager/internal/logger"
	"patient-manager/internal/patient"
	"patient-manager/internal/platform/database"
)

// env holds what every subcommand needs. It is built lazily so --help works
// without a database.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *sql.DB
	repo patient.Repository
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.UseDatabase() {
		return nil, errors.New("DATABASE_URL is not set")
	}

	log, err := logger.New(cfg.LogLevel, "console", "patientctl")
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db, repo: patient.NewRepository(db)}, nil
}

func (e *env) close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "patientctl",
		Short:         "Manage the patient database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		statsCmd(),
		resetCmd(),
		addSampleCmd(),
		patientCmd(),
		exportCmd(),
		sendReportCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
