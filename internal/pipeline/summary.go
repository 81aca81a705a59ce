package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"clinicalops/internal/db"
	"clinicalops/internal/export"
	"clinicalops/internal/model"
	"clinicalops/internal/store"
	"clinicalops/internal/synthea"
)

// TableCount is rows read from a source file and rows kept after
// normalization.
type TableCount struct {
	Table string
	Read  int
	Clean int
}

// Overview holds the headline operations KPIs.
type Overview struct {
	Consultations    int
	UniquePatients   int
	UniqueClinicians int
	ReferralRatePct  float64
	AvgNPS           float64
	ComplaintRatePct float64
}

// Summary describes a completed run.
type Summary struct {
	RunID         uuid.UUID
	InputDir      string
	OutputDir     string
	Elapsed       time.Duration
	Tables        []TableCount
	Consultations int
	Feedback      int
	Issues        []synthea.Issue
	Written       []export.Written
	Overview      Overview

	// Loaded is nil unless the run loaded the database.
	Loaded store.Counts
}

// ComputeOverview derives the KPIs from the consultation and feedback rows.
// Rates are percentages; everything is zero for an empty run.
func ComputeOverview(cons []model.ConsultationRecord, fb []model.FeedbackRecord) Overview {
	ov := Overview{Consultations: len(cons)}
	if len(cons) == 0 {
		return ov
	}

	patients := make(map[string]struct{})
	clinicians := make(map[string]struct{})
	referrals := 0
	for i := range cons {
		c := &cons[i]
		if c.PatientID != "" {
			patients[c.PatientID] = struct{}{}
		}
		if c.ClinicianID != "" {
			clinicians[c.ClinicianID] = struct{}{}
		}
		if c.ReferralFlag {
			referrals++
		}
	}
	ov.UniquePatients = len(patients)
	ov.UniqueClinicians = len(clinicians)
	ov.ReferralRatePct = pct(referrals, len(cons))

	if len(fb) > 0 {
		var scoreSum, complaints int
		for i := range fb {
			scoreSum += int(fb[i].NPSScore)
			if fb[i].ComplaintFlag {
				complaints++
			}
		}
		ov.AvgNPS = float64(scoreSum) / float64(len(fb))
		ov.ComplaintRatePct = pct(complaints, len(fb))
	}
	return ov
}

func pct(n, d int) float64 {
	return float64(n) / float64(d) * 100
}

// Print writes the human-readable run report.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Synthea ingestion complete in %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Run ID:         %s\n", s.RunID)
	fmt.Fprintf(w, "  Input:          %s\n", s.InputDir)
	fmt.Fprintf(w, "  Output:         %s\n", s.OutputDir)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-14s %8s %8s\n", "Table", "Read", "Clean")
	for _, tc := range s.Tables {
		fmt.Fprintf(w, "  %-14s %8d %8d\n", tc.Table, tc.Read, tc.Clean)
	}
	fmt.Fprintf(w, "  %-14s %8s %8d\n", "consultations", "", s.Consultations)
	fmt.Fprintf(w, "  %-14s %8s %8d\n", "feedback", "", s.Feedback)
	fmt.Fprintf(w, "  Skipped rows:   %d\n", len(s.Issues))
	fmt.Fprintf(w, "  Files written:  %d\n", len(s.Written))
	if s.Loaded != nil {
		fmt.Fprintf(w, "  DB rows:        %d consultations, %d feedback\n",
			s.Loaded[db.TableConsultations], s.Loaded[db.TableFeedback])
	}
	fmt.Fprintln(w)
	ov := s.Overview
	fmt.Fprintf(w, "  Patients:       %d\n", ov.UniquePatients)
	fmt.Fprintf(w, "  Clinicians:     %d\n", ov.UniqueClinicians)
	fmt.Fprintf(w, "  Referral rate:  %.1f%%\n", ov.ReferralRatePct)
	fmt.Fprintf(w, "  Average NPS:    %.2f\n", ov.AvgNPS)
	fmt.Fprintf(w, "  Complaint rate: %.1f%%\n", ov.ComplaintRatePct)
}
