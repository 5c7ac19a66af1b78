package model

import "time"

// RunStatus represents the current state of a prospecting run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusSearching RunStatus = "searching"
	RunStatusContacts  RunStatus = "contacts"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Stage records the last qualification stage an organization completed
// before it was turned away.
type Stage string

const (
	StageSearching          Stage = "searching"
	StageRevenueChecked     Stage = "revenue_checked"
	StageFundraisingChecked Stage = "fundraising_checked"
	StageAgenciesParsed     Stage = "agencies_parsed"
)

// RejectReason explains why an organization left the pipeline. Rejection is
// an expected terminal outcome, not an error.
type RejectReason string

const (
	RejectDetailUnavailable      RejectReason = "detail unavailable"
	RejectRevenueOutOfRange      RejectReason = "no revenue match"
	RejectNoEFile                RejectReason = "no e-file available"
	RejectDownloadFailed         RejectReason = "download failed"
	RejectFundraisingBelowMin    RejectReason = "fundraising expense below minimum"
	RejectNoAgencyData           RejectReason = "no agency data"
	RejectNoAgencyAboveThreshold RejectReason = "no agency above threshold"
)

// Run is a single persisted prospecting run.
type Run struct {
	ID        string       `json:"id"`
	Params    SearchParams `json:"params"`
	Status    RunStatus    `json:"status"`
	Result    *RunResult   `json:"result,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RunResult holds the outcome of a run: the qualified records, the contact
// map keyed by EIN (populated by the separate contacts pass), and the run
// counters used for diagnostics.
type RunResult struct {
	Checked        int                   `json:"checked"`
	RevenueMatched int                   `json:"revenue_matched"`
	Qualified      []QualificationRecord `json:"qualified"`
	Contacts       map[string][]Contact  `json:"contacts,omitempty"`
	Degraded       bool                  `json:"degraded,omitempty"`
}
