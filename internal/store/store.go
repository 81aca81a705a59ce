// Package store loads a processed run into Postgres: the cleaned source
// tables, the consultation records and the synthetic feedback, plus the
// reporting views built over them.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinicalops/internal/db"
	"clinicalops/internal/model"
	"clinicalops/internal/normalize"
)

// TableError reports which table a load failed on.
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// Open connects a pool and pings it.
func Open(ctx context.Context, connString string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// InitSchema creates the schema, tables and views if missing.
func InitSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	return db.New(pool, schema).InitSchema(ctx)
}

// Payload is one run's worth of rows.
type Payload struct {
	Dataset       *normalize.Dataset
	Consultations []model.ConsultationRecord
	Feedback      []model.FeedbackRecord
}

// Run identifies the ingest run recorded in ingest_runs.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	InputDir  string
	Skipped   int
}

// Counts maps table name to rows copied.
type Counts map[string]int64

// Load replaces the contents of every data table with p inside a single
// transaction and records the run. Any failure rolls the whole load back;
// a table-level failure is returned as *TableError.
func Load(ctx context.Context, pool *pgxpool.Pool, schema string, p Payload, run Run) (Counts, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx, schema)
	if err := q.InitSchema(ctx); err != nil {
		return nil, err
	}
	if err := q.TruncateData(ctx); err != nil {
		return nil, fmt.Errorf("truncate: %w", err)
	}

	ds := p.Dataset
	if ds == nil {
		ds = &normalize.Dataset{}
	}
	counts := Counts{}
	steps := []struct {
		table string
		copy  func() (int64, error)
	}{
		{db.TableEncounters, func() (int64, error) { return q.CopyEncounters(ctx, ds.Encounters) }},
		{db.TableConditions, func() (int64, error) { return q.CopyConditions(ctx, ds.Conditions) }},
		{db.TableProcedures, func() (int64, error) { return q.CopyProcedures(ctx, ds.Procedures) }},
		{db.TableMedications, func() (int64, error) { return q.CopyMedications(ctx, ds.Medications) }},
		{db.TablePatients, func() (int64, error) { return q.CopyPatients(ctx, ds.Patients) }},
		{db.TableProviders, func() (int64, error) { return q.CopyProviders(ctx, ds.Providers) }},
		{db.TableConsultations, func() (int64, error) { return q.CopyConsultations(ctx, p.Consultations) }},
		{db.TableFeedback, func() (int64, error) { return q.CopyFeedback(ctx, p.Feedback) }},
	}
	for _, s := range steps {
		n, err := s.copy()
		if err != nil {
			return nil, &TableError{Table: s.table, Err: err}
		}
		counts[s.table] = n
	}

	err = q.InsertIngestRun(ctx, db.InsertIngestRunParams{
		RunID:            pgtype.UUID{Bytes: run.ID, Valid: true},
		StartedAt:        pgtype.Timestamptz{Time: run.StartedAt, Valid: true},
		InputDir:         run.InputDir,
		EncounterRows:    int32(len(ds.Encounters)),
		ConsultationRows: int32(len(p.Consultations)),
		FeedbackRows:     int32(len(p.Feedback)),
		SkippedRows:      int32(run.Skipped),
	})
	if err != nil {
		return nil, &TableError{Table: db.TableIngestRuns, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}
