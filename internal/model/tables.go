// Package model holds the typed rows that flow through the ingestion
// pipeline: normalized Synthea source tables, the joined consultation
// record and the synthetic feedback record derived from it.
//
// Optional columns are pointers: nil means the source cell was empty or
// could not be coerced, and maps to NULL in Postgres and Parquet.
package model

import "time"

// Encounter is one clinical visit from encounters.csv.
type Encounter struct {
	ID                string     `parquet:"id"`
	Start             *time.Time `parquet:"start,optional,timestamp(millisecond)"`
	Stop              *time.Time `parquet:"stop,optional,timestamp(millisecond)"`
	Patient           string     `parquet:"patient"`
	Organization      string     `parquet:"organization"`
	Provider          string     `parquet:"provider"`
	Payer             string     `parquet:"payer"`
	EncounterClass    string     `parquet:"encounterclass"`
	Code              string     `parquet:"code"`
	Description       string     `parquet:"description"`
	BaseEncounterCost *float64   `parquet:"base_encounter_cost,optional"`
	TotalClaimCost    *float64   `parquet:"total_claim_cost,optional"`
	PayerCoverage     *float64   `parquet:"payer_coverage,optional"`
	ReasonCode        string     `parquet:"reasoncode"`
	ReasonDescription string     `parquet:"reasondescription"`
}

// Condition is a diagnosis row from conditions.csv.
type Condition struct {
	Start       *time.Time `parquet:"start,optional,timestamp(millisecond)"`
	Stop        *time.Time `parquet:"stop,optional,timestamp(millisecond)"`
	Patient     string     `parquet:"patient"`
	Encounter   string     `parquet:"encounter"`
	Code        string     `parquet:"code"`
	Description string     `parquet:"description"`
}

// Procedure is a performed procedure from procedures.csv.
type Procedure struct {
	Date              *time.Time `parquet:"date,optional,timestamp(millisecond)"`
	Patient           string     `parquet:"patient"`
	Encounter         string     `parquet:"encounter"`
	Code              string     `parquet:"code"`
	Description       string     `parquet:"description"`
	BaseCost          *float64   `parquet:"base_cost,optional"`
	ReasonCode        string     `parquet:"reasoncode"`
	ReasonDescription string     `parquet:"reasondescription"`
}

// Medication is a prescription from medications.csv.
type Medication struct {
	Start             *time.Time `parquet:"start,optional,timestamp(millisecond)"`
	Stop              *time.Time `parquet:"stop,optional,timestamp(millisecond)"`
	Patient           string     `parquet:"patient"`
	Payer             string     `parquet:"payer"`
	Encounter         string     `parquet:"encounter"`
	Code              string     `parquet:"code"`
	Description       string     `parquet:"description"`
	BaseCost          *float64   `parquet:"base_cost,optional"`
	PayerCoverage     *float64   `parquet:"payer_coverage,optional"`
	Dispenses         *float64   `parquet:"dispenses,optional"`
	TotalCost         *float64   `parquet:"totalcost,optional"`
	ReasonCode        string     `parquet:"reasoncode"`
	ReasonDescription string     `parquet:"reasondescription"`
}

// Patient is a row from patients.csv. Direct identifiers (SSN, passport,
// driver's licence) are not carried.
type Patient struct {
	ID                 string     `parquet:"id"`
	BirthDate          *time.Time `parquet:"birthdate,optional,timestamp(millisecond)"`
	DeathDate          *time.Time `parquet:"deathdate,optional,timestamp(millisecond)"`
	First              string     `parquet:"first"`
	Last               string     `parquet:"last"`
	Gender             string     `parquet:"gender"`
	Race               string     `parquet:"race"`
	Ethnicity          string     `parquet:"ethnicity"`
	City               string     `parquet:"city"`
	State              string     `parquet:"state"`
	County             string     `parquet:"county"`
	Zip                string     `parquet:"zip"`
	Lat                *float64   `parquet:"lat,optional"`
	Lon                *float64   `parquet:"lon,optional"`
	HealthcareExpenses *float64   `parquet:"healthcare_expenses,optional"`
	HealthcareCoverage *float64   `parquet:"healthcare_coverage,optional"`
}

// Provider is a clinician row from providers.csv.
type Provider struct {
	ID           string   `parquet:"id"`
	Organization string   `parquet:"organization"`
	Name         string   `parquet:"name"`
	Gender       string   `parquet:"gender"`
	Speciality   string   `parquet:"speciality"`
	Address      string   `parquet:"address"`
	City         string   `parquet:"city"`
	State        string   `parquet:"state"`
	Zip          string   `parquet:"zip"`
	Lat          *float64 `parquet:"lat,optional"`
	Lon          *float64 `parquet:"lon,optional"`
	Utilization  *float64 `parquet:"utilization,optional"`
}
