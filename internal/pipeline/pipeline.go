// Package pipeline runs one ingestion: read the Synthea export, normalize
// it, build consultation records, derive synthetic feedback, write the
// processed extracts and optionally load Postgres.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinicalops/internal/consult"
	"clinicalops/internal/db"
	"clinicalops/internal/export"
	"clinicalops/internal/feedback"
	"clinicalops/internal/model"
	"clinicalops/internal/normalize"
	"clinicalops/internal/store"
	"clinicalops/internal/synthea"
)

// Options configures a Run.
type Options struct {
	InputDir  string
	OutputDir string
	Format    export.Format

	// ComplaintHours overrides feedback.DefaultComplaintHours when > 0.
	ComplaintHours float64

	LoadDB     bool
	ConnString string
	Schema     string
	MaxConns   int32

	Logger zerolog.Logger
}

// Run executes the pipeline. Stages only consume the output of earlier
// stages; the database load is last and optional.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	runID := uuid.New()
	log := opts.Logger.With().Str("run_id", runID.String()).Logger()

	format := opts.Format
	if format == "" {
		format = export.FormatCSV
	}
	log.Info().Str("input_dir", opts.InputDir).Str("output_dir", opts.OutputDir).
		Str("format", string(format)).Bool("load_db", opts.LoadDB).Msg("starting ingestion")

	tables, err := synthea.LoadAll(opts.InputDir)
	if err != nil {
		return nil, err
	}

	ds := normalize.Tables(tables)
	cons, joinIssues := consult.Build(ds)

	issues := append(tables.Issues(), ds.Issues...)
	issues = append(issues, joinIssues...)
	for _, is := range issues {
		log.Warn().Str("table", is.Table).Int64("row", is.Row).Str("reason", is.Reason).Msg("skipped row")
	}

	gen := feedback.New(opts.ComplaintHours)
	fb, rejected := gen.GenerateAll(cons)
	issues = append(issues, rejectedIssues(log, cons, rejected)...)
	log.Info().Int("consultations", len(cons)).Int("feedback", len(fb)).
		Float64("complaint_hours", gen.Threshold()).Msg("built consultation records")

	written, err := export.Write(opts.OutputDir, format, export.Extracts{
		Dataset:       ds,
		Consultations: cons,
		Feedback:      fb,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range written {
		log.Debug().Str("path", w.Path).Int("rows", w.Rows).Msg("wrote extract")
	}

	sum := &Summary{
		RunID:         runID,
		InputDir:      opts.InputDir,
		OutputDir:     opts.OutputDir,
		Tables:        tableCounts(tables, ds),
		Consultations: len(cons),
		Feedback:      len(fb),
		Issues:        issues,
		Written:       written,
		Overview:      ComputeOverview(cons, fb),
	}

	if opts.LoadDB {
		pool, err := store.Open(ctx, opts.ConnString, opts.MaxConns)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		counts, err := store.Load(ctx, pool, opts.Schema, store.Payload{
			Dataset:       ds,
			Consultations: cons,
			Feedback:      fb,
		}, store.Run{
			ID:        runID,
			StartedAt: start,
			InputDir:  opts.InputDir,
			Skipped:   len(issues),
		})
		if err != nil {
			return nil, err
		}
		sum.Loaded = counts
		log.Info().Str("schema", opts.Schema).Msg("loaded database")
	}

	sum.Elapsed = time.Since(start)
	log.Info().Dur("elapsed", sum.Elapsed).Int("skipped", len(issues)).Msg("ingestion complete")
	return sum, nil
}

// rejectedIssues logs each consultation record that produced no feedback
// and reports it as a skipped row. Row is the 1-based record position.
func rejectedIssues(log zerolog.Logger, cons []model.ConsultationRecord, rejected []feedback.Rejected) []synthea.Issue {
	out := make([]synthea.Issue, 0, len(rejected))
	for _, r := range rejected {
		is := synthea.Issue{Table: db.TableConsultations, Row: int64(r.Index + 1), Reason: r.Err.Error()}
		log.Warn().Str("table", is.Table).Int64("row", is.Row).Str("consult_id", cons[r.Index].ConsultID).
			Str("reason", is.Reason).Msg("skipped feedback")
		out = append(out, is)
	}
	return out
}

func tableCounts(tables synthea.Tables, ds *normalize.Dataset) []TableCount {
	clean := map[string]int{
		synthea.Encounters:  len(ds.Encounters),
		synthea.Conditions:  len(ds.Conditions),
		synthea.Procedures:  len(ds.Procedures),
		synthea.Medications: len(ds.Medications),
		synthea.Patients:    len(ds.Patients),
		synthea.Providers:   len(ds.Providers),
	}
	out := make([]TableCount, 0, len(synthea.CoreFiles))
	for _, cf := range synthea.CoreFiles {
		tc := TableCount{Table: cf.Table, Clean: clean[cf.Table]}
		if t := tables[cf.Table]; t != nil {
			tc.Read = t.Len()
		}
		out = append(out, tc)
	}
	return out
}
