package model

// OrganizationStub is a single search hit. It is ephemeral: once the EIN is
// recorded in the run's seen-set the stub is discarded.
type OrganizationStub struct {
	EIN   string `json:"ein"`
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// FilingSnapshot captures the financials of the most recent filing in an
// organization's detail record. "Most recent" means the first element of the
// filings list as returned upstream; the list is never re-sorted.
type FilingSnapshot struct {
	Revenue       float64 `json:"revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	TaxYear       int     `json:"tax_year"`
	FiscalYearEnd string  `json:"fiscal_year_end,omitempty"`
	FormType      string  `json:"form_type,omitempty"`
	FilingURL     string  `json:"filing_url,omitempty"`
	ObjectID      string  `json:"object_id,omitempty"`
}

// Agency is a professional fundraiser extracted from Schedule G. Name is the
// only required field; AmountPaid stays nil when the filing carried no
// parseable amount, which is distinct from an explicit zero.
type Agency struct {
	Name         string   `json:"name"`
	AmountPaid   *float64 `json:"amount_paid,omitempty"`
	AmountRaised float64  `json:"amount_raised,omitempty"`
	Activity     string   `json:"activity,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
}

// PaidAmount returns the amount paid, or 0 when absent.
func (a Agency) PaidAmount() float64 {
	if a.AmountPaid == nil {
		return 0
	}
	return *a.AmountPaid
}

// Officer is a compensated officer/director from Form 990 Part VII.
// HoursPerWeek stays a raw string; filings report it in several formats and
// the scorer parses it lazily.
type Officer struct {
	Name         string   `json:"name"`
	Title        string   `json:"title,omitempty"`
	Compensation *float64 `json:"compensation,omitempty"`
	HoursPerWeek string   `json:"hours_per_week,omitempty"`
}

// ContactSource identifies where a contact came from.
type ContactSource string

const (
	SourceFormFiling ContactSource = "form_990"
	SourceApollo     ContactSource = "apollo"
)

// Contact is an officer ranked for outreach, optionally enriched with
// email/LinkedIn/phone from Apollo.
type Contact struct {
	Name           string        `json:"name"`
	Title          string        `json:"title,omitempty"`
	Compensation   float64       `json:"compensation,omitempty"`
	HoursPerWeek   string        `json:"hours_per_week,omitempty"`
	RelevanceScore int           `json:"relevance_score"`
	Source         ContactSource `json:"source"`
	Email          string        `json:"email,omitempty"`
	LinkedInURL    string        `json:"linkedin_url,omitempty"`
	Phone          string        `json:"phone,omitempty"`
}

// QualificationRecord is the terminal artifact of the qualification stage:
// an organization that passed every financial gate, with its agencies above
// threshold. Immutable once created.
type QualificationRecord struct {
	EIN                 string         `json:"ein"`
	Name                string         `json:"name"`
	City                string         `json:"city,omitempty"`
	State               string         `json:"state,omitempty"`
	NTEECode            string         `json:"ntee_code,omitempty"`
	Subsection          string         `json:"subsection,omitempty"`
	Filing              FilingSnapshot `json:"filing"`
	FundraisingExpenses float64        `json:"fundraising_expenses"`
	Agencies            []Agency       `json:"agencies"`
}

// SearchParams holds the financial criteria and search bounds for one run.
// Read-only for the duration of the run.
type SearchParams struct {
	MinRevenue            float64 `json:"min_revenue"`
	MaxRevenue            float64 `json:"max_revenue"`
	MinFundraisingExpense float64 `json:"min_fundraising_expense"`
	MinAgencySpend        float64 `json:"min_agency_spend"`
	TargetCount           int     `json:"target_count"`
	MaxPages              int     `json:"max_pages"`
	State                 string  `json:"state,omitempty"`
	Keyword               string  `json:"keyword,omitempty"`
}
