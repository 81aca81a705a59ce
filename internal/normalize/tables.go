package normalize

import (
	"time"

	"clinicalops/internal/model"
	"clinicalops/internal/synthea"
)

// Dataset is the normalized form of every source table.
type Dataset struct {
	Encounters  []model.Encounter
	Conditions  []model.Condition
	Procedures  []model.Procedure
	Medications []model.Medication
	Patients    []model.Patient
	Providers   []model.Provider

	// Issues lists rows dropped during normalization (missing keys and
	// repeated ids).
	// Loader-level issues stay on the source tables.
	Issues []synthea.Issue
}

// cells wraps one source row with typed accessors.
type cells struct {
	t   *synthea.Table
	row synthea.Row
}

func (c cells) str(col string) string { return CleanString(c.t.Get(c.row, col)) }

func (c cells) ts(col string) *time.Time { return ParseTimestamp(c.t.Get(c.row, col)) }

func (c cells) num(col string) *float64 { return ParseFloat(c.t.Get(c.row, col)) }

// firstOf returns the first of cols present in the table; newer Synthea
// exports renamed a few columns.
func firstOf(t *synthea.Table, cols ...string) string {
	for _, c := range cols {
		if t.Has(c) {
			return c
		}
	}
	return cols[0]
}

// Tables normalizes every loaded source table.
func Tables(ts synthea.Tables) *Dataset {
	ds := &Dataset{}
	ds.Encounters = encounters(ts[synthea.Encounters], &ds.Issues)
	ds.Conditions = conditions(ts[synthea.Conditions], &ds.Issues)
	ds.Procedures = procedures(ts[synthea.Procedures], &ds.Issues)
	ds.Medications = medications(ts[synthea.Medications], &ds.Issues)
	ds.Patients = patients(ts[synthea.Patients], &ds.Issues)
	ds.Providers = providers(ts[synthea.Providers], &ds.Issues)
	return ds
}

func missingKey(t *synthea.Table, row synthea.Row, col string) synthea.Issue {
	return synthea.Issue{Table: t.Name, Row: row.Num, Reason: "missing " + col}
}

// idSet tracks ids already kept for a table keyed on id. The first
// occurrence wins; later ones are skipped with an issue.
type idSet map[string]struct{}

// keep reports whether id is new, recording an issue when it is not.
func (s idSet) keep(t *synthea.Table, row synthea.Row, id string, issues *[]synthea.Issue) bool {
	if _, dup := s[id]; dup {
		*issues = append(*issues, synthea.Issue{Table: t.Name, Row: row.Num, Reason: "duplicate id " + id})
		return false
	}
	s[id] = struct{}{}
	return true
}

func encounters(t *synthea.Table, issues *[]synthea.Issue) []model.Encounter {
	if t == nil {
		return nil
	}
	out := make([]model.Encounter, 0, t.Len())
	seen := make(idSet, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		e := model.Encounter{
			ID:                c.str("id"),
			Start:             c.ts("start"),
			Stop:              c.ts("stop"),
			Patient:           c.str("patient"),
			Organization:      c.str("organization"),
			Provider:          c.str("provider"),
			Payer:             c.str("payer"),
			EncounterClass:    c.str("encounterclass"),
			Code:              c.str("code"),
			Description:       c.str("description"),
			BaseEncounterCost: c.num("base_encounter_cost"),
			TotalClaimCost:    c.num("total_claim_cost"),
			PayerCoverage:     c.num("payer_coverage"),
			ReasonCode:        c.str("reasoncode"),
			ReasonDescription: c.str("reasondescription"),
		}
		if e.ID == "" {
			*issues = append(*issues, missingKey(t, row, "id"))
			continue
		}
		if !seen.keep(t, row, e.ID, issues) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func conditions(t *synthea.Table, issues *[]synthea.Issue) []model.Condition {
	if t == nil {
		return nil
	}
	out := make([]model.Condition, 0, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		cond := model.Condition{
			Start:       c.ts("start"),
			Stop:        c.ts("stop"),
			Patient:     c.str("patient"),
			Encounter:   c.str("encounter"),
			Code:        c.str("code"),
			Description: c.str("description"),
		}
		if cond.Encounter == "" {
			*issues = append(*issues, missingKey(t, row, "encounter"))
			continue
		}
		out = append(out, cond)
	}
	return out
}

func procedures(t *synthea.Table, issues *[]synthea.Issue) []model.Procedure {
	if t == nil {
		return nil
	}
	dateCol := firstOf(t, "date", "start")
	out := make([]model.Procedure, 0, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		p := model.Procedure{
			Date:              c.ts(dateCol),
			Patient:           c.str("patient"),
			Encounter:         c.str("encounter"),
			Code:              c.str("code"),
			Description:       c.str("description"),
			BaseCost:          c.num("base_cost"),
			ReasonCode:        c.str("reasoncode"),
			ReasonDescription: c.str("reasondescription"),
		}
		if p.Encounter == "" {
			*issues = append(*issues, missingKey(t, row, "encounter"))
			continue
		}
		out = append(out, p)
	}
	return out
}

func medications(t *synthea.Table, issues *[]synthea.Issue) []model.Medication {
	if t == nil {
		return nil
	}
	out := make([]model.Medication, 0, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		m := model.Medication{
			Start:             c.ts("start"),
			Stop:              c.ts("stop"),
			Patient:           c.str("patient"),
			Payer:             c.str("payer"),
			Encounter:         c.str("encounter"),
			Code:              c.str("code"),
			Description:       c.str("description"),
			BaseCost:          c.num("base_cost"),
			PayerCoverage:     c.num("payer_coverage"),
			Dispenses:         c.num("dispenses"),
			TotalCost:         c.num("totalcost"),
			ReasonCode:        c.str("reasoncode"),
			ReasonDescription: c.str("reasondescription"),
		}
		if m.Encounter == "" {
			*issues = append(*issues, missingKey(t, row, "encounter"))
			continue
		}
		out = append(out, m)
	}
	return out
}

func patients(t *synthea.Table, issues *[]synthea.Issue) []model.Patient {
	if t == nil {
		return nil
	}
	out := make([]model.Patient, 0, t.Len())
	seen := make(idSet, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		p := model.Patient{
			ID:                 c.str("id"),
			BirthDate:          c.ts("birthdate"),
			DeathDate:          c.ts("deathdate"),
			First:              c.str("first"),
			Last:               c.str("last"),
			Gender:             c.str("gender"),
			Race:               c.str("race"),
			Ethnicity:          c.str("ethnicity"),
			City:               c.str("city"),
			State:              c.str("state"),
			County:             c.str("county"),
			Zip:                c.str("zip"),
			Lat:                c.num("lat"),
			Lon:                c.num("lon"),
			HealthcareExpenses: c.num("healthcare_expenses"),
			HealthcareCoverage: c.num("healthcare_coverage"),
		}
		if p.ID == "" {
			*issues = append(*issues, missingKey(t, row, "id"))
			continue
		}
		if !seen.keep(t, row, p.ID, issues) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func providers(t *synthea.Table, issues *[]synthea.Issue) []model.Provider {
	if t == nil {
		return nil
	}
	utilCol := firstOf(t, "utilization", "encounters")
	out := make([]model.Provider, 0, t.Len())
	seen := make(idSet, t.Len())
	for _, row := range t.Rows {
		c := cells{t, row}
		p := model.Provider{
			ID:           c.str("id"),
			Organization: c.str("organization"),
			Name:         c.str("name"),
			Gender:       c.str("gender"),
			Speciality:   c.str("speciality"),
			Address:      c.str("address"),
			City:         c.str("city"),
			State:        c.str("state"),
			Zip:          c.str("zip"),
			Lat:          c.num("lat"),
			Lon:          c.num("lon"),
			Utilization:  c.num(utilCol),
		}
		if p.ID == "" {
			*issues = append(*issues, missingKey(t, row, "id"))
			continue
		}
		if !seen.keep(t, row, p.ID, issues) {
			continue
		}
		out = append(out, p)
	}
	return out
}
