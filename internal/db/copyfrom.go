package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"clinicalops/internal/model"
)

// Table names in load order. Feedback references consultation records and
// so follows them.
const (
	TableEncounters    = "raw_encounters"
	TableConditions    = "raw_conditions"
	TableProcedures    = "raw_procedures"
	TableMedications   = "raw_medications"
	TablePatients      = "raw_patients"
	TableProviders     = "raw_providers"
	TableConsultations = "consultation_records"
	TableFeedback      = "raw_patient_feedback"
	TableIngestRuns    = "ingest_runs"
)

// DataTables lists the tables replaced on every load.
var DataTables = []string{
	TableEncounters,
	TableConditions,
	TableProcedures,
	TableMedications,
	TablePatients,
	TableProviders,
	TableConsultations,
	TableFeedback,
}

func (q *Queries) copyRows(ctx context.Context, table string, cols []string, n int, row func(i int) ([]any, error)) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{q.schema, table}, cols, pgx.CopyFromSlice(n, row))
}

func (q *Queries) CopyEncounters(ctx context.Context, rows []model.Encounter) (int64, error) {
	cols := []string{"id", "start", "stop", "patient", "organization", "provider", "payer",
		"encounterclass", "code", "description", "base_encounter_cost", "total_claim_cost",
		"payer_coverage", "reasoncode", "reasondescription"}
	return q.copyRows(ctx, TableEncounters, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.ID, r.Start, r.Stop, r.Patient, r.Organization, r.Provider, r.Payer,
			r.EncounterClass, r.Code, r.Description, r.BaseEncounterCost, r.TotalClaimCost,
			r.PayerCoverage, r.ReasonCode, r.ReasonDescription}, nil
	})
}

func (q *Queries) CopyConditions(ctx context.Context, rows []model.Condition) (int64, error) {
	cols := []string{"start", "stop", "patient", "encounter", "code", "description"}
	return q.copyRows(ctx, TableConditions, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.Start, r.Stop, r.Patient, r.Encounter, r.Code, r.Description}, nil
	})
}

func (q *Queries) CopyProcedures(ctx context.Context, rows []model.Procedure) (int64, error) {
	cols := []string{"date", "patient", "encounter", "code", "description", "base_cost",
		"reasoncode", "reasondescription"}
	return q.copyRows(ctx, TableProcedures, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.Date, r.Patient, r.Encounter, r.Code, r.Description, r.BaseCost,
			r.ReasonCode, r.ReasonDescription}, nil
	})
}

func (q *Queries) CopyMedications(ctx context.Context, rows []model.Medication) (int64, error) {
	cols := []string{"start", "stop", "patient", "payer", "encounter", "code", "description",
		"base_cost", "payer_coverage", "dispenses", "totalcost", "reasoncode", "reasondescription"}
	return q.copyRows(ctx, TableMedications, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.Start, r.Stop, r.Patient, r.Payer, r.Encounter, r.Code, r.Description,
			r.BaseCost, r.PayerCoverage, r.Dispenses, r.TotalCost, r.ReasonCode, r.ReasonDescription}, nil
	})
}

func (q *Queries) CopyPatients(ctx context.Context, rows []model.Patient) (int64, error) {
	cols := []string{"id", "birthdate", "deathdate", "first", "last", "gender", "race",
		"ethnicity", "city", "state", "county", "zip", "lat", "lon",
		"healthcare_expenses", "healthcare_coverage"}
	return q.copyRows(ctx, TablePatients, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.ID, r.BirthDate, r.DeathDate, r.First, r.Last, r.Gender, r.Race,
			r.Ethnicity, r.City, r.State, r.County, r.Zip, r.Lat, r.Lon,
			r.HealthcareExpenses, r.HealthcareCoverage}, nil
	})
}

func (q *Queries) CopyProviders(ctx context.Context, rows []model.Provider) (int64, error) {
	cols := []string{"id", "organization", "name", "gender", "speciality", "address",
		"city", "state", "zip", "lat", "lon", "utilization"}
	return q.copyRows(ctx, TableProviders, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.ID, r.Organization, r.Name, r.Gender, r.Speciality, r.Address,
			r.City, r.State, r.Zip, r.Lat, r.Lon, r.Utilization}, nil
	})
}

func (q *Queries) CopyConsultations(ctx context.Context, rows []model.ConsultationRecord) (int64, error) {
	cols := []string{"consult_id", "patient_id", "clinician_id", "organization",
		"consultation_start", "consultation_end", "duration_hours", "encounterclass",
		"encounter_description", "reason_description", "diagnosis", "treatment",
		"referral_flag", "referral_reason", "base_encounter_cost", "total_claim_cost",
		"payer_coverage", "procedure_cost", "medication_cost", "clinician_name",
		"clinician_speciality", "patient_gender", "patient_age"}
	return q.copyRows(ctx, TableConsultations, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.ConsultID, r.PatientID, r.ClinicianID, r.Organization,
			r.Start, r.End, r.DurationHours, r.EncounterClass,
			r.Description, r.ReasonDescription, r.Diagnosis, r.Treatment,
			r.ReferralFlag, r.ReferralReason, r.BaseEncounterCost, r.TotalClaimCost,
			r.PayerCoverage, r.ProcedureCost, r.MedicationCost, r.ClinicianName,
			r.ClinicianSpeciality, r.PatientGender, r.PatientAge}, nil
	})
}

func (q *Queries) CopyFeedback(ctx context.Context, rows []model.FeedbackRecord) (int64, error) {
	cols := []string{"consult_id", "patient_id", "clinician_id", "consult_start",
		"consult_stop", "encounterclass", "consult_description", "reason_description",
		"consult_duration_hours", "nps_score", "nps_category", "survey_response",
		"complaint_flag", "complaint_category", "qualitative_comment", "data_quality_flag"}
	return q.copyRows(ctx, TableFeedback, cols, len(rows), func(i int) ([]any, error) {
		r := &rows[i]
		return []any{r.ConsultID, r.PatientID, r.ClinicianID, r.ConsultStart,
			r.ConsultStop, r.EncounterClass, r.ConsultDescription, r.ReasonDescription,
			r.DurationHours, int16(r.NPSScore), r.NPSCategory, r.SurveyResponse,
			r.ComplaintFlag, r.ComplaintCategory, r.QualitativeComment, r.DataQualityFlag}, nil
	})
}
