// Package consult joins normalized encounters with their linked
// conditions, procedures and medications into one consultation record per
// encounter.
package consult

import (
	"strings"
	"time"

	"clinicalops/internal/model"
	"clinicalops/internal/normalize"
	"clinicalops/internal/synthea"
)

const summarySep = "; "

// linked groups the child rows of one encounter.
type linked struct {
	conditions  []*model.Condition
	procedures  []*model.Procedure
	medications []*model.Medication
}

// Build returns one ConsultationRecord per distinct encounter id, in
// encounter order. normalize.Tables already drops repeated ids with
// their source row; a dataset assembled elsewhere that still repeats one
// keeps the first and reports the rest, with Row holding the 1-based
// position in ds.Encounters.
func Build(ds *normalize.Dataset) ([]model.ConsultationRecord, []synthea.Issue) {
	links := make(map[string]*linked, len(ds.Encounters))
	get := func(id string) *linked {
		l, ok := links[id]
		if !ok {
			l = &linked{}
			links[id] = l
		}
		return l
	}
	for i := range ds.Conditions {
		c := &ds.Conditions[i]
		l := get(c.Encounter)
		l.conditions = append(l.conditions, c)
	}
	for i := range ds.Procedures {
		p := &ds.Procedures[i]
		l := get(p.Encounter)
		l.procedures = append(l.procedures, p)
	}
	for i := range ds.Medications {
		m := &ds.Medications[i]
		l := get(m.Encounter)
		l.medications = append(l.medications, m)
	}

	providers := make(map[string]*model.Provider, len(ds.Providers))
	for i := range ds.Providers {
		providers[ds.Providers[i].ID] = &ds.Providers[i]
	}
	patients := make(map[string]*model.Patient, len(ds.Patients))
	for i := range ds.Patients {
		patients[ds.Patients[i].ID] = &ds.Patients[i]
	}

	var issues []synthea.Issue
	seen := make(map[string]bool, len(ds.Encounters))
	out := make([]model.ConsultationRecord, 0, len(ds.Encounters))
	for i := range ds.Encounters {
		e := &ds.Encounters[i]
		if seen[e.ID] {
			issues = append(issues, synthea.Issue{
				Table:  synthea.Encounters,
				Row:    int64(i + 1),
				Reason: "duplicate id " + e.ID,
			})
			continue
		}
		seen[e.ID] = true
		out = append(out, record(e, links[e.ID], providers[e.Provider], patients[e.Patient]))
	}
	return out, issues
}

func record(e *model.Encounter, l *linked, prov *model.Provider, pat *model.Patient) model.ConsultationRecord {
	if l == nil {
		l = &linked{}
	}

	rec := model.ConsultationRecord{
		ConsultID:         e.ID,
		PatientID:         e.Patient,
		ClinicianID:       e.Provider,
		Organization:      e.Organization,
		Start:             e.Start,
		End:               e.Stop,
		DurationHours:     DurationHours(e.Start, e.Stop),
		EncounterClass:    e.EncounterClass,
		Description:       e.Description,
		ReasonDescription: e.ReasonDescription,
		BaseEncounterCost: e.BaseEncounterCost,
		TotalClaimCost:    e.TotalClaimCost,
		PayerCoverage:     e.PayerCoverage,
	}

	var diagnoses distinct
	for _, c := range l.conditions {
		diagnoses.add(c.Description)
	}
	rec.Diagnosis = diagnoses.join()
	if rec.Diagnosis == "" {
		rec.Diagnosis = e.ReasonDescription
	}

	var treatments distinct
	for _, p := range l.procedures {
		treatments.add(p.Description)
		if p.BaseCost != nil {
			rec.ProcedureCost += *p.BaseCost
		}
		if !rec.ReferralFlag && isReferral(p.Description) {
			rec.ReferralFlag = true
			rec.ReferralReason = p.Description
		}
	}
	for _, m := range l.medications {
		treatments.add(m.Description)
		if m.TotalCost != nil {
			rec.MedicationCost += *m.TotalCost
		}
	}
	rec.Treatment = treatments.join()

	if !rec.ReferralFlag && isReferral(e.Description) {
		rec.ReferralFlag = true
		rec.ReferralReason = e.Description
	}

	if prov != nil {
		rec.ClinicianName = prov.Name
		rec.ClinicianSpeciality = prov.Speciality
	}
	if pat != nil {
		rec.PatientGender = pat.Gender
		rec.PatientAge = ageAt(pat.BirthDate, e.Start)
	}
	return rec
}

// DurationHours returns stop-start in hours, or nil when either end is
// missing or stop precedes start.
func DurationHours(start, stop *time.Time) *float64 {
	if start == nil || stop == nil || stop.Before(*start) {
		return nil
	}
	h := stop.Sub(*start).Hours()
	return &h
}

func isReferral(desc string) bool {
	return strings.Contains(strings.ToLower(desc), "referral")
}

// ageAt returns completed years between birth and at.
func ageAt(birth, at *time.Time) *int32 {
	if birth == nil || at == nil || at.Before(*birth) {
		return nil
	}
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	age := int32(years)
	return &age
}

// distinct accumulates non-empty strings in first-seen order.
type distinct struct {
	seen  map[string]bool
	items []string
}

func (d *distinct) add(s string) {
	if s == "" {
		return
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[s] {
		return
	}
	d.seen[s] = true
	d.items = append(d.items, s)
}

func (d *distinct) join() string {
	return strings.Join(d.items, summarySep)
}
