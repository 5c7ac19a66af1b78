package form990

import (
	"strconv"
	"strings"
)

// Tag names for the current-year total fundraising expense across schema
// revisions.
var fundraisingExpenseTags = []string{
	"CYTotalFundraisingExpenseAmt",
	"TotalFundrsngExpCurrentYrAmt",
}

// FundraisingExpense extracts the total fundraising expense from a filing.
// If no explicit total tag matches, it falls back to the first FundraisingAmt
// (in document order) whose immediate parent's name contains "Total" — a
// heuristic for schema variants that lack a dedicated total tag, not a
// verified schema rule. Returns 0 when nothing is found; the caller's
// threshold gate rejects the organization in that case.
func FundraisingExpense(doc *Document) float64 {
	if doc == nil || doc.Root == nil {
		return 0
	}

	if r := MatchAmount(doc.Root, fundraisingExpenseTags...); r.State == Found {
		return r.Value
	}

	var amount float64
	doc.Root.walk(func(n *Node) bool {
		if n.Name != "FundraisingAmt" || n.Parent == nil {
			return true
		}
		if !strings.Contains(n.Parent.Name, "Total") {
			return true
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(n.Text), 64)
		if err != nil {
			return true
		}
		amount = v
		return false
	})
	return amount
}
