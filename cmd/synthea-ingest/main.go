package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinicalops/internal/config"
	"clinicalops/internal/export"
	"clinicalops/internal/logging"
	"clinicalops/internal/pipeline"
	"clinicalops/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type ingestFlags struct {
	inputDir       string
	outputDir      string
	format         string
	loadDB         bool
	complaintHours float64
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f ingestFlags

	rootCmd := &cobra.Command{
		Use:   "synthea-ingest",
		Short: "Ingest a Synthea CSV export into consultation records and synthetic feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(stderr)
			if err != nil {
				return err
			}
			hours := cfg.ComplaintHours
			if cmd.Flags().Changed("complaint-hours") {
				hours = f.complaintHours
			}
			return runIngest(cmd.Context(), stdout, cfg, logger, f, hours)
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVar(&f.inputDir, "input-dir", "", "Directory holding the Synthea CSV export")
	flags.StringVar(&f.outputDir, "output-dir", "data/processed", "Directory for processed extracts")
	flags.StringVar(&f.format, "format", string(export.FormatCSV), "Extract format: csv, parquet or both")
	flags.BoolVar(&f.loadDB, "load-db", false, "Load the processed tables into Postgres")
	flags.Float64Var(&f.complaintHours, "complaint-hours", 0, "Consultation hours above which a detractor score is a complaint (default FEEDBACK_COMPLAINT_HOURS)")
	rootCmd.MarkFlagRequired("input-dir")

	rootCmd.AddCommand(initSchemaCmd(stdout, stderr))
	return rootCmd
}

func initSchemaCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:          "init-schema",
		Short:        "Create the schema, tables and reporting views",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(stderr)
			if err != nil {
				return err
			}
			if err := cfg.ValidateDB(); err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := store.Open(ctx, cfg.ConnString(), cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.InitSchema(ctx, pool, cfg.PGSchema); err != nil {
				return err
			}
			logger.Info().Str("schema", cfg.PGSchema).Msg("schema initialised")
			fmt.Fprintf(stdout, "Schema %s ready\n", cfg.PGSchema)
			return nil
		},
	}
}

func setup(stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func runIngest(ctx context.Context, stdout io.Writer, cfg *config.Config, logger zerolog.Logger, f ingestFlags, hours float64) error {
	format, err := export.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if f.loadDB {
		if err := cfg.ValidateDB(); err != nil {
			return err
		}
	}

	sum, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:       f.inputDir,
		OutputDir:      f.outputDir,
		Format:         format,
		ComplaintHours: hours,
		LoadDB:         f.loadDB,
		ConnString:     cfg.ConnString(),
		Schema:         cfg.PGSchema,
		MaxConns:       cfg.DBMaxConns,
		Logger:         logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("ingestion failed")
		return err
	}
	sum.Print(stdout)
	return nil
}
