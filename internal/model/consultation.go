package model

import "time"

// ConsultationRecord is the consultation-level view of one encounter with
// its linked conditions, procedures and medications folded in. One record
// exists per source encounter id.
type ConsultationRecord struct {
	ConsultID         string     `parquet:"consult_id"`
	PatientID         string     `parquet:"patient_id"`
	ClinicianID       string     `parquet:"clinician_id"`
	Organization      string     `parquet:"organization"`
	Start             *time.Time `parquet:"consultation_start,optional,timestamp(millisecond)"`
	End               *time.Time `parquet:"consultation_end,optional,timestamp(millisecond)"`
	DurationHours     *float64   `parquet:"duration_hours,optional"`
	EncounterClass    string     `parquet:"encounterclass"`
	Description       string     `parquet:"encounter_description"`
	ReasonDescription string     `parquet:"reason_description"`
	Diagnosis         string     `parquet:"diagnosis"`
	Treatment         string     `parquet:"treatment"`
	ReferralFlag      bool       `parquet:"referral_flag"`
	ReferralReason    string     `parquet:"referral_reason"`

	BaseEncounterCost *float64 `parquet:"base_encounter_cost,optional"`
	TotalClaimCost    *float64 `parquet:"total_claim_cost,optional"`
	PayerCoverage     *float64 `parquet:"payer_coverage,optional"`
	ProcedureCost     float64  `parquet:"procedure_cost"`
	MedicationCost    float64  `parquet:"medication_cost"`

	ClinicianName       string `parquet:"clinician_name"`
	ClinicianSpeciality string `parquet:"clinician_speciality"`
	PatientGender       string `parquet:"patient_gender"`
	PatientAge          *int32 `parquet:"patient_age,optional"`
}
