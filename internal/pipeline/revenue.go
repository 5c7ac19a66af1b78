package pipeline

import "github.com/sells-group/charity-prospector/internal/propublica"

// CheckRevenue tests the most recent filing against the configured revenue
// range. The API has used three different field names for total revenue over
// the years; they are tried in order and the first non-null wins, defaulting
// to 0. Both bounds are inclusive. An organization with no filings never
// matches.
func CheckRevenue(detail *propublica.OrgDetail, minRev, maxRev float64) (matched bool, revenue, totalExpenses float64) {
	if detail == nil || len(detail.Filings) == 0 {
		return false, 0, 0
	}

	filing := detail.Filings[0]
	revenue = firstNonNil(filing.TotRevenue, filing.TotRevnue, filing.TotRcptPerBks)
	totalExpenses = firstNonNil(filing.TotFuncExpns)

	return minRev <= revenue && revenue <= maxRev, revenue, totalExpenses
}

func firstNonNil(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
