package submission

import (
	"time"

	"github.com/google/uuid"
)

// CouldNotGenerate is the message placeholder logged for rows whose HL7
// document could not be built.
const CouldNotGenerate = "COULD NOT GENERATE"

// Combo identifies a vaccination event for dedupe: one patient, one
// administration date.
type Combo struct {
	PatientID   string
	VaccineDate string
}

// MessageLogEntry is one row of the persisted submission log. Every
// processed roster row produces exactly one entry, success or failure;
// the log doubles as the dedupe source for later runs.
type MessageLogEntry struct {
	ID            uuid.UUID `json:"id"`
	RunID         uuid.UUID `json:"run_id"`
	PatientID     string    `json:"patient_id"`
	VaccineDate   string    `json:"vaccine_date"`
	Message       string    `json:"message"` // rendered HL7, or CouldNotGenerate
	FailedSegment string    `json:"failed_segment,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RowResult is the per-row outcome reported in a RunReport.
type RowResult struct {
	PatientID     string `json:"patient_id"`
	VaccineDate   string `json:"vaccine_date"`
	FileName      string `json:"file_name,omitempty"`
	FailedSegment string `json:"failed_segment,omitempty"`
	Error         string `json:"error,omitempty"`
}

// RunReport summarizes one batch run.
type RunReport struct {
	ID              uuid.UUID   `json:"id"`
	StartedAt       time.Time   `json:"started_at"`
	FinishedAt      time.Time   `json:"finished_at"`
	Total           int         `json:"total"`
	Sent            int         `json:"sent"`
	Failed          int         `json:"failed"`
	Skipped         int         `json:"skipped"`
	BudgetExhausted bool        `json:"budget_exhausted,omitempty"`
	Rows            []RowResult `json:"rows"`
}
