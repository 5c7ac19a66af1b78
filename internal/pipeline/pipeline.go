package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/charity-prospector/internal/form990"
	"github.com/sells-group/charity-prospector/internal/model"
	"github.com/sells-group/charity-prospector/internal/propublica"
	"github.com/sells-group/charity-prospector/pkg/apollo"
)

// BroadSearchKeywords is the default keyword rotation used when no single
// keyword is configured. Order matters: it fixes the processing order of the
// whole run.
var BroadSearchKeywords = []string{
	"foundation", "hospital", "university", "association", "society",
	"institute", "museum", "community", "health", "education",
	"children", "medical", "research", "services", "arts",
	"wildlife", "conservation", "relief", "humanitarian", "scholarship",
	"veterans", "housing", "faith", "church", "mission",
	"development", "advocacy", "prevention", "counseling", "food bank",
}

// maxConsecutiveSearchErrors soft-aborts the run: repeated search failures
// mean the upstream API is unwell and continuing would only burn the rate
// budget.
const maxConsecutiveSearchErrors = 5

// Pipeline drives organizations through the qualification stages. Execution
// is strictly sequential: one fetch at a time, pre-call rate limiting inside
// the client, deterministic keyword → page → organization order.
type Pipeline struct {
	client propublica.Client
	apollo apollo.Client // nil disables enrichment
	obs    Observer
}

// New creates a Pipeline. apolloClient may be nil, which skips enrichment;
// obs may be nil, which discards events.
func New(client propublica.Client, apolloClient apollo.Client, obs Observer) *Pipeline {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Pipeline{client: client, apollo: apolloClient, obs: obs}
}

// runContext is the only mutable state of a run: the global EIN dedup set
// and the diagnostic counters. Created per invocation, never shared.
type runContext struct {
	seen            map[string]bool
	checked         int
	revenueMatched  int
	consecutiveErrs int
}

// rejection pairs the stage an organization reached with the reason it was
// turned away. Rejection is a normal outcome, not an error.
type rejection struct {
	Stage  model.Stage
	Reason model.RejectReason
}

// Run executes the qualification search until the target count is reached,
// the keywords are exhausted, or the search API degrades. The returned
// result always contains whatever qualified up to that point.
func (p *Pipeline) Run(ctx context.Context, params model.SearchParams) (*model.RunResult, error) {
	keywords := BroadSearchKeywords
	if params.Keyword != "" {
		keywords = []string{params.Keyword}
	}
	pagesPerKeyword := params.MaxPages / len(keywords)
	if pagesPerKeyword < 1 {
		pagesPerKeyword = 1
	}

	rc := &runContext{seen: make(map[string]bool)}
	result := &model.RunResult{}

	log := zap.L().With(zap.Int("target", params.TargetCount))
	log.Info("pipeline: starting search",
		zap.Int("keywords", len(keywords)),
		zap.Int("pages_per_keyword", pagesPerKeyword),
	)

keywords:
	for _, keyword := range keywords {
		if len(result.Qualified) >= params.TargetCount {
			break
		}

		for page := 0; page < pagesPerKeyword; page++ {
			if len(result.Qualified) >= params.TargetCount {
				break keywords
			}
			if err := ctx.Err(); err != nil {
				result.Checked = rc.checked
				result.RevenueMatched = rc.revenueMatched
				return result, err
			}

			p.obs.Progress(progressFraction(len(result.Qualified), params.TargetCount))
			p.obs.Status(fmt.Sprintf("Keyword %q p%d | Checked: %d | Qualified: %d/%d",
				keyword, page, rc.checked, len(result.Qualified), params.TargetCount))

			resp, err := p.client.Search(ctx, keyword, params.State, page)
			if err != nil || resp.Organizations == nil {
				// An error or a payload missing the organizations key is an
				// API failure — distinct from an empty page, which just ends
				// this keyword's pagination.
				rc.consecutiveErrs++
				p.obs.Log(fmt.Sprintf("Keyword %q page %d: API error or no results.", keyword, page))
				if err != nil {
					log.Warn("pipeline: search failed", zap.String("keyword", keyword), zap.Int("page", page), zap.Error(err))
				}
				if rc.consecutiveErrs >= maxConsecutiveSearchErrors {
					p.obs.Log("Too many search API errors; stopping early.")
					log.Warn("pipeline: soft abort after consecutive search errors",
						zap.Int("errors", rc.consecutiveErrs))
					result.Degraded = true
					break keywords
				}
				break
			}
			rc.consecutiveErrs = 0

			if len(resp.Organizations) == 0 {
				p.obs.Log(fmt.Sprintf("Keyword %q page %d: No more results.", keyword, page))
				break
			}

			for _, org := range resp.Organizations {
				if len(result.Qualified) >= params.TargetCount {
					break keywords
				}

				stub := model.OrganizationStub{
					EIN:   strconv.FormatInt(org.EIN, 10),
					Name:  org.Name,
					City:  org.City,
					State: org.State,
				}
				if rc.seen[stub.EIN] {
					continue
				}
				rc.seen[stub.EIN] = true
				rc.checked++

				p.obs.Status(fmt.Sprintf("[%d] Checking: %s...", rc.checked, stub.Name))

				record, rej := p.qualify(ctx, rc, stub, params)
				if rej != nil {
					p.logRejection(stub, *rej)
					continue
				}

				result.Qualified = append(result.Qualified, *record)
				p.obs.Log(fmt.Sprintf("QUALIFIED #%d: %s", len(result.Qualified), stub.Name))
				log.Info("pipeline: organization qualified",
					zap.String("ein", stub.EIN),
					zap.String("name", stub.Name),
					zap.Float64("revenue", record.Filing.Revenue),
					zap.Int("agencies", len(record.Agencies)),
				)
			}
		}
	}

	result.Checked = rc.checked
	result.RevenueMatched = rc.revenueMatched
	p.obs.Progress(1.0)
	p.obs.Status(fmt.Sprintf("Search complete. %d qualified out of %d checked (%d in revenue range).",
		len(result.Qualified), result.Checked, result.RevenueMatched))

	return result, nil
}

// qualify walks one organization through the stage machine. It returns
// either a finished record or the rejection that ended the attempt; fetch
// failures for a single organization never halt the run.
func (p *Pipeline) qualify(ctx context.Context, rc *runContext, stub model.OrganizationStub, params model.SearchParams) (*model.QualificationRecord, *rejection) {
	detail, err := p.client.Organization(ctx, stub.EIN)
	if err != nil {
		return nil, &rejection{Stage: model.StageSearching, Reason: model.RejectDetailUnavailable}
	}

	matched, revenue, totalExpenses := CheckRevenue(detail, params.MinRevenue, params.MaxRevenue)
	if !matched {
		return nil, &rejection{Stage: model.StageRevenueChecked, Reason: model.RejectRevenueOutOfRange}
	}
	rc.revenueMatched++
	p.obs.Log(fmt.Sprintf("Checking: %s (EIN: %s) — Rev: $%.0f", stub.Name, stub.EIN, revenue))

	objectID := detail.Organization.LatestObjectID
	if objectID == "" {
		return nil, &rejection{Stage: model.StageRevenueChecked, Reason: model.RejectNoEFile}
	}

	data, err := p.client.FilingDocument(ctx, objectID)
	if err != nil {
		return nil, &rejection{Stage: model.StageRevenueChecked, Reason: model.RejectDownloadFailed}
	}

	doc, err := form990.Parse(data)
	if err != nil {
		// Malformed documents are handled as missing data: the extractors
		// find nothing and the threshold gates reject below.
		zap.L().Warn("pipeline: filing document unparseable",
			zap.String("ein", stub.EIN), zap.Error(err))
	}

	fundraisingExp := form990.FundraisingExpense(doc)
	if fundraisingExp < params.MinFundraisingExpense {
		p.obs.Log(fmt.Sprintf("  Fundraising expense $%.0f < $%.0f", fundraisingExp, params.MinFundraisingExpense))
		return nil, &rejection{Stage: model.StageFundraisingChecked, Reason: model.RejectFundraisingBelowMin}
	}
	p.obs.Log(fmt.Sprintf("  Revenue: $%.0f | Fundraising: $%.0f", revenue, fundraisingExp))

	agencies := form990.Agencies(doc)
	if len(agencies) == 0 {
		return nil, &rejection{Stage: model.StageAgenciesParsed, Reason: model.RejectNoAgencyData}
	}

	var qualifying []model.Agency
	for _, a := range agencies {
		if a.PaidAmount() >= params.MinAgencySpend {
			qualifying = append(qualifying, a)
		}
	}
	if len(qualifying) == 0 {
		p.obs.Log(fmt.Sprintf("  Agencies found but none >= $%.0f", params.MinAgencySpend))
		return nil, &rejection{Stage: model.StageAgenciesParsed, Reason: model.RejectNoAgencyAboveThreshold}
	}

	for _, a := range qualifying {
		p.obs.Log(fmt.Sprintf("  Agency: %s — Paid: $%.0f", a.Name, a.PaidAmount()))
	}

	record := buildRecord(detail, revenue, totalExpenses, fundraisingExp, objectID, qualifying)
	return &record, nil
}

// Contacts runs the contacts pass over qualified records: Part VII officers
// scored and ranked, optionally merged with Apollo enrichment. Returns a map
// keyed by EIN. Enrichment failures are logged and skipped; they never block
// the filing-derived contacts.
func (p *Pipeline) Contacts(ctx context.Context, records []model.QualificationRecord) (map[string][]model.Contact, error) {
	contacts := make(map[string][]model.Contact, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return contacts, err
		}
		p.obs.Progress(progressFraction(i, len(records)))
		p.obs.Status(fmt.Sprintf("[%d/%d] Parsing Form 990 for %s...", i+1, len(records), rec.Name))

		var filingContacts []model.Contact
		if rec.Filing.ObjectID != "" {
			// The filing was downloaded during qualification; the request
			// cache serves it back without a second network call.
			if data, err := p.client.FilingDocument(ctx, rec.Filing.ObjectID); err == nil {
				if doc, err := form990.Parse(data); err == nil {
					filingContacts = ScoreOfficers(form990.Officers(doc))
				}
			}
		}

		var enriched []model.Contact
		if p.apollo != nil {
			p.obs.Status(fmt.Sprintf("[%d/%d] Apollo lookup for %s...", i+1, len(records), rec.Name))
			people, err := p.apollo.SearchPeople(ctx, rec.Name)
			if err != nil {
				zap.L().Warn("pipeline: enrichment failed, continuing without",
					zap.String("ein", rec.EIN), zap.Error(err))
			} else {
				enriched = EnrichmentContacts(people)
			}
		}

		contacts[rec.EIN] = MergeContacts(filingContacts, enriched)
	}

	p.obs.Progress(1.0)
	return contacts, nil
}

func (p *Pipeline) logRejection(stub model.OrganizationStub, rej rejection) {
	// Revenue misses are the overwhelming majority; keep them off the event
	// stream and at debug level only.
	if rej.Reason != model.RejectRevenueOutOfRange && rej.Reason != model.RejectDetailUnavailable {
		p.obs.Log(fmt.Sprintf("  Rejected %s: %s", stub.Name, rej.Reason))
	}
	zap.L().Debug("pipeline: organization rejected",
		zap.String("ein", stub.EIN),
		zap.String("name", stub.Name),
		zap.String("stage", string(rej.Stage)),
		zap.String("reason", string(rej.Reason)),
	)
}

func buildRecord(detail *propublica.OrgDetail, revenue, totalExpenses, fundraisingExp float64, objectID string, agencies []model.Agency) model.QualificationRecord {
	org := detail.Organization
	filing := detail.Filings[0]

	return model.QualificationRecord{
		EIN:        strconv.FormatInt(org.EIN, 10),
		Name:       org.Name,
		City:       org.City,
		State:      org.State,
		NTEECode:   org.NTEECode,
		Subsection: string(org.Subsection),
		Filing: model.FilingSnapshot{
			Revenue:       revenue,
			TotalExpenses: totalExpenses,
			TaxYear:       filing.TaxYear(),
			FiscalYearEnd: filing.FiscalYearEnd(),
			FormType:      string(filing.FormType),
			FilingURL:     filing.PDFURL,
			ObjectID:      objectID,
		},
		FundraisingExpenses: fundraisingExp,
		Agencies:            agencies,
	}
}

// progressFraction caps below 1.0 so the bar only completes when the run
// does.
func progressFraction(done, target int) float64 {
	if target <= 0 {
		return 0
	}
	f := float64(done) / float64(target)
	if f > 0.99 {
		f = 0.99
	}
	return f
}
