// Package feedback derives a synthetic patient-feedback record from a
// consultation record. Generation is a pure function of the record: no
// random source, no clock, so reruns reproduce the same rows.
package feedback

import (
	"crypto/md5"
	"errors"
	"strings"

	"clinicalops/internal/model"
)

// DefaultComplaintHours is the consultation length above which a low score
// is treated as a complaint.
const DefaultComplaintHours = 8.0

// ErrMissingConsultID is returned for a record with an empty consult id.
var ErrMissingConsultID = errors.New("consultation record has no consult id")

const noComplaint = "No complaint"

// complaintByClass maps lower-cased encounter class to complaint category.
var complaintByClass = map[string]string{
	"wellness":   "Service quality concern",
	"ambulatory": "Wait time concern",
	"emergency":  "Emergency process concern",
	"inpatient":  "Continuity of care concern",
	"urgentcare": "Urgent care flow concern",
}

const generalComplaint = "General complaint"

var surveyResponse = map[string]string{
	model.NPSDetractor: "Dissatisfied",
	model.NPSPassive:   "Neutral",
	model.NPSPromoter:  "Satisfied",
}

var baseComment = map[string]string{
	model.NPSPromoter:  "Service was efficient and communication was clear.",
	model.NPSPassive:   "Care was acceptable but there is room for improvement.",
	model.NPSDetractor: "I experienced delays and would like better follow-up.",
}

var complaintDetail = map[string]string{
	"Service quality concern":    "The check-up felt rushed for how long I was there.",
	"Wait time concern":          "Most of the visit was spent waiting to be seen.",
	"Emergency process concern":  "Triage and handover in the emergency department were slow.",
	"Continuity of care concern": "Staff changed often during my stay and plans were not shared.",
	"Urgent care flow concern":   "The urgent care visit took far longer than expected.",
	generalComplaint:             "The visit took much longer than I was told it would.",
}

// Generator builds feedback records. The zero value uses
// DefaultComplaintHours.
type Generator struct {
	// ComplaintHours is the duration threshold in hours; a complaint needs
	// a strictly longer consultation.
	ComplaintHours float64
}

// New returns a Generator with the given complaint threshold. Non-positive
// values select DefaultComplaintHours.
func New(complaintHours float64) *Generator {
	return &Generator{ComplaintHours: complaintHours}
}

// Threshold returns the effective complaint threshold in hours.
func (g *Generator) Threshold() float64 {
	if g == nil || g.ComplaintHours <= 0 {
		return DefaultComplaintHours
	}
	return g.ComplaintHours
}

// Generate derives the feedback record for rec.
func (g *Generator) Generate(rec *model.ConsultationRecord) (model.FeedbackRecord, error) {
	if strings.TrimSpace(rec.ConsultID) == "" {
		return model.FeedbackRecord{}, ErrMissingConsultID
	}

	score := Score(rec.ConsultID)
	category := Category(score)

	fb := model.FeedbackRecord{
		ConsultID:          rec.ConsultID,
		PatientID:          rec.PatientID,
		ClinicianID:        rec.ClinicianID,
		ConsultStart:       rec.Start,
		ConsultStop:        rec.End,
		EncounterClass:     rec.EncounterClass,
		ConsultDescription: rec.Description,
		ReasonDescription:  rec.ReasonDescription,
		DurationHours:      rec.DurationHours,
		NPSScore:           score,
		NPSCategory:        category,
		SurveyResponse:     surveyResponse[category],
		DataQualityFlag:    qualityFlag(rec),
	}

	fb.ComplaintFlag = IsComplaint(score, rec.DurationHours, g.Threshold())
	fb.ComplaintCategory = noComplaint
	if fb.ComplaintFlag {
		fb.ComplaintCategory = ComplaintCategory(rec.EncounterClass)
	}
	fb.QualitativeComment = comment(category, fb.ComplaintFlag, fb.ComplaintCategory)
	return fb, nil
}

// GenerateAll derives one feedback record per consultation record. Records
// rejected by Generate are returned separately with their error.
func (g *Generator) GenerateAll(recs []model.ConsultationRecord) ([]model.FeedbackRecord, []Rejected) {
	out := make([]model.FeedbackRecord, 0, len(recs))
	var rejected []Rejected
	for i := range recs {
		fb, err := g.Generate(&recs[i])
		if err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: err})
			continue
		}
		out = append(out, fb)
	}
	return out, rejected
}

// Rejected identifies a consultation record that produced no feedback.
type Rejected struct {
	Index int
	Err   error
}

// Score maps a consult id onto 0-10: the first byte of its MD5 digest
// modulo 11. Any reimplementation hashing the UTF-8 bytes the same way
// reproduces the scores exactly.
func Score(consultID string) int32 {
	sum := md5.Sum([]byte(consultID))
	return int32(sum[0]) % 11
}

// Category buckets an NPS score: >= 9 Promoter, <= 6 Detractor, else Passive.
func Category(score int32) string {
	switch {
	case score >= 9:
		return model.NPSPromoter
	case score <= 6:
		return model.NPSDetractor
	default:
		return model.NPSPassive
	}
}

// IsComplaint reports whether a consultation counts as a complaint: the
// score is a detractor score and the visit ran longer than thresholdHours.
// An unknown duration never qualifies.
func IsComplaint(score int32, durationHours *float64, thresholdHours float64) bool {
	if Category(score) != model.NPSDetractor {
		return false
	}
	return durationHours != nil && *durationHours > thresholdHours
}

// ComplaintCategory returns the complaint category for an encounter class.
func ComplaintCategory(encounterClass string) string {
	if c, ok := complaintByClass[strings.ToLower(strings.TrimSpace(encounterClass))]; ok {
		return c
	}
	return generalComplaint
}

func comment(category string, complaint bool, complaintCategory string) string {
	c := baseComment[category]
	if complaint {
		c += " " + complaintDetail[complaintCategory]
	}
	return c
}

func qualityFlag(rec *model.ConsultationRecord) string {
	switch {
	case rec.Start == nil || rec.End == nil:
		return model.QualityMissingTimestamps
	case rec.End.Before(*rec.Start):
		return model.QualityNegativeDuration
	}
	return ""
}
