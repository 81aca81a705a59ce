package model

import "time"

// NPS categories.
const (
	NPSPromoter  = "Promoter"
	NPSPassive   = "Passive"
	NPSDetractor = "Detractor"
)

// Data quality flags carried on a feedback record whose consultation had
// unusable timing.
const (
	QualityMissingTimestamps = "missing_timestamps"
	QualityNegativeDuration  = "negative_duration"
)

// FeedbackRecord is the synthetic patient-feedback row derived from exactly
// one ConsultationRecord. It is a pure function of that record.
type FeedbackRecord struct {
	ConsultID          string     `parquet:"consult_id"`
	PatientID          string     `parquet:"patient_id"`
	ClinicianID        string     `parquet:"clinician_id"`
	ConsultStart       *time.Time `parquet:"consult_start,optional,timestamp(millisecond)"`
	ConsultStop        *time.Time `parquet:"consult_stop,optional,timestamp(millisecond)"`
	EncounterClass     string     `parquet:"encounterclass"`
	ConsultDescription string     `parquet:"consult_description"`
	ReasonDescription  string     `parquet:"reason_description"`
	DurationHours      *float64   `parquet:"consult_duration_hours,optional"`

	NPSScore           int32  `parquet:"nps_score"`
	NPSCategory        string `parquet:"nps_category"`
	SurveyResponse     string `parquet:"survey_response"`
	ComplaintFlag      bool   `parquet:"complaint_flag"`
	ComplaintCategory  string `parquet:"complaint_category"`
	QualitativeComment string `parquet:"qualitative_comment"`
	DataQualityFlag    string `parquet:"data_quality_flag"`
}
