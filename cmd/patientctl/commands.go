package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/config"
	"patient-manager/internal/logger"
	"patient-manager/internal/patient"
	"patient-manager/internal/platform/database"
	"patient-manager/internal/platform/telegram"
	"patient-manager/internal/report"
)

// withEnv runs fn against a connected database and closes it afterwards.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(ctx, e)
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				svc := report.NewService(e.repo, nil, 0, e.cfg.ReportFontPath, e.log)
				st, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), report.FormatStats(st))
				return nil
			})
		},
	}
}

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every patient, vital reading and alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if err := e.repo.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database reset successfully!")
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the reset")
	return cmd
}

func addSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-sample",
		Short: "Add a sample patient for testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				p := patient.SamplePatient
				if err := e.repo.Add(ctx, &p); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Failed to add sample patient.")
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Sample patient added successfully!")
				return nil
			})
		},
	}
}

func patientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patient <id>",
		Short: "Show patient details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				id := args[0]
				p, err := e.repo.GetByID(ctx, id)
				if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "Patient %s not found.\n", id)
					return nil
				}
				if err != nil {
					return err
				}
				history, err := e.repo.GetVitalsHistory(ctx, id, 5)
				if err != nil {
					return err
				}
				printPatient(cmd.OutOrStdout(), p, history)
				return nil
			})
		},
	}
}

func printPatient(w io.Writer, p *patient.Patient, history []patient.VitalReading) {
	fmt.Fprintf(w, "\n=== Patient Details: %s ===\n", p.Name)
	fmt.Fprintf(w, "ID: %s\n", p.ID)
	fmt.Fprintf(w, "Age: %d\n", p.Age)
	fmt.Fprintf(w, "Condition: %s\n", p.Condition)
	fmt.Fprintf(w, "Floor: %d\n", p.Floor)
	fmt.Fprintf(w, "Last Visit: %s\n", p.LastVisit)
	fmt.Fprintf(w, "Respiratory Rate: %d bpm\n", p.RespiratoryRate)
	fmt.Fprintf(w, "Airflow: %d%%\n", p.Airflow)
	fmt.Fprintf(w, "Status: %s\n", p.Status().Label())

	if len(history) > 0 {
		fmt.Fprintln(w, "\nRecent Vital Signs History:")
		for _, v := range history {
			fmt.Fprintf(w, "  %s: RR=%d bpm, AF=%d%%\n", v.Timestamp.Format(patient.TimestampLayout), v.RespiratoryRate, v.Airflow)
		}
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export the ward census to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				svc := report.NewService(e.repo, nil, 0, e.cfg.ReportFontPath, e.log)
				data, err := svc.Census(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Census written to %s\n", args[0])
				return nil
			})
		},
	}
}

func sendReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-report",
		Short: "Send the PDF ward report to the nurse station Telegram chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if e.cfg.TelegramToken == "" || e.cfg.NurseChatID == 0 {
					return errors.New("TELEGRAM_BOT_TOKEN and NURSE_CHAT_ID must be set")
				}
				tg := telegram.NewClient(e.cfg.TelegramBaseURL, e.cfg.TelegramToken, e.log)
				svc := report.NewService(e.repo, tg, e.cfg.NurseChatID, e.cfg.ReportFontPath, e.log)
				if err := svc.SendWardReport(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Ward report sent.")
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UseDatabase() {
				return errors.New("DATABASE_URL is not set")
			}
			log, err := logger.New(cfg.LogLevel, "console", "patientctl")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, log)
		},
	}
}
