package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// TruncateData empties every data table. ingest_runs keeps its history.
func (q *Queries) TruncateData(ctx context.Context) error {
	names := make([]string, len(DataTables))
	for i, t := range DataTables {
		names[i] = q.table(t)
	}
	_, err := q.db.Exec(ctx, "TRUNCATE TABLE "+strings.Join(names, ", "))
	return err
}

type InsertIngestRunParams struct {
	RunID            pgtype.UUID
	StartedAt        pgtype.Timestamptz
	InputDir         string
	EncounterRows    int32
	ConsultationRows int32
	FeedbackRows     int32
	SkippedRows      int32
}

func (q *Queries) InsertIngestRun(ctx context.Context, arg InsertIngestRunParams) error {
	_, err := q.db.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
    (run_id, started_at, input_dir, encounter_rows, consultation_rows, feedback_rows, skipped_rows)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, q.table(TableIngestRuns)),
		arg.RunID,
		arg.StartedAt,
		arg.InputDir,
		arg.EncounterRows,
		arg.ConsultationRows,
		arg.FeedbackRows,
		arg.SkippedRows,
	)
	return err
}

type IngestRun struct {
	RunID            pgtype.UUID
	StartedAt        pgtype.Timestamptz
	FinishedAt       pgtype.Timestamptz
	InputDir         string
	EncounterRows    int32
	ConsultationRows int32
	FeedbackRows     int32
	SkippedRows      int32
}

func (q *Queries) GetLatestIngestRun(ctx context.Context) (IngestRun, error) {
	row := q.db.QueryRow(ctx, fmt.Sprintf(`SELECT run_id, started_at, finished_at, input_dir,
    encounter_rows, consultation_rows, feedback_rows, skipped_rows
FROM %s
ORDER BY finished_at DESC, started_at DESC
LIMIT 1`, q.table(TableIngestRuns)))
	var i IngestRun
	err := row.Scan(
		&i.RunID,
		&i.StartedAt,
		&i.FinishedAt,
		&i.InputDir,
		&i.EncounterRows,
		&i.ConsultationRows,
		&i.FeedbackRows,
		&i.SkippedRows,
	)
	return i, err
}

// CountRows returns the row count of a table or view in the schema.
func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+q.table(table)).Scan(&n)
	return n, err
}

type OperationsMonthlyRow struct {
	Month            pgtype.Timestamp
	EncounterClass   string
	Consultations    int64
	ReferralRatePct  pgtype.Numeric
	AvgClaimCost     pgtype.Numeric
	AvgDurationHours pgtype.Numeric
}

func (q *Queries) ListOperationsMonthly(ctx context.Context) ([]OperationsMonthlyRow, error) {
	rows, err := q.db.Query(ctx, fmt.Sprintf(`SELECT month, encounterclass, consultations,
    referral_rate_pct, avg_claim_cost, avg_duration_hours
FROM %s
ORDER BY month, encounterclass`, q.table("vw_operations_monthly")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OperationsMonthlyRow
	for rows.Next() {
		var i OperationsMonthlyRow
		if err := rows.Scan(
			&i.Month,
			&i.EncounterClass,
			&i.Consultations,
			&i.ReferralRatePct,
			&i.AvgClaimCost,
			&i.AvgDurationHours,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type FeedbackCommentRow struct {
	ConsultID          string
	ConsultStart       pgtype.Timestamptz
	EncounterClass     string
	ClinicianID        string
	NPSScore           int16
	NPSCategory        string
	SurveyResponse     string
	ComplaintFlag      bool
	ComplaintCategory  string
	QualitativeComment string
}

func (q *Queries) ListComplaintComments(ctx context.Context) ([]FeedbackCommentRow, error) {
	rows, err := q.db.Query(ctx, fmt.Sprintf(`SELECT consult_id, consult_start, encounterclass,
    clinician_id, nps_score, nps_category, survey_response, complaint_flag,
    complaint_category, qualitative_comment
FROM %s
WHERE complaint_flag
ORDER BY consult_id`, q.table("vw_feedback_comments")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FeedbackCommentRow
	for rows.Next() {
		var i FeedbackCommentRow
		if err := rows.Scan(
			&i.ConsultID,
			&i.ConsultStart,
			&i.EncounterClass,
			&i.ClinicianID,
			&i.NPSScore,
			&i.NPSCategory,
			&i.SurveyResponse,
			&i.ComplaintFlag,
			&i.ComplaintCategory,
			&i.QualitativeComment,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
