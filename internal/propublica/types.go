package propublica

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SearchResponse is the payload of GET /search.json. Organizations stays nil
// when the key is missing entirely, which callers treat as an API error as
// opposed to an empty page.
type SearchResponse struct {
	TotalResults  int         `json:"total_results"`
	Organizations []SearchOrg `json:"organizations"`
}

// SearchOrg is one search hit.
type SearchOrg struct {
	EIN   int64  `json:"ein"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// OrgDetail is the payload of GET /organizations/{ein}.json.
type OrgDetail struct {
	Organization OrgInfo  `json:"organization"`
	Filings      []Filing `json:"filings_with_data"`
}

// OrgInfo holds organization identity fields.
type OrgInfo struct {
	EIN            int64      `json:"ein"`
	Name           string     `json:"name"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	NTEECode       string     `json:"ntee_code"`
	Subsection     flexString `json:"subseccd"`
	LatestObjectID string     `json:"latest_object_id"`
}

// Filing is one annual filing. The revenue field has gone by three names
// across API vintages; all are decoded and the revenue filter tries them in
// order. Pointers keep "absent" distinct from zero.
type Filing struct {
	TotRevenue    *float64   `json:"totrevenue"`
	TotRevnue     *float64   `json:"totrevnue"`
	TotRcptPerBks *float64   `json:"totrcptperbks"`
	TotFuncExpns  *float64   `json:"totfuncexpns"`
	TaxPrdYr      int        `json:"tax_prd_yr"`
	TaxPrd        int        `json:"tax_prd"`
	PrdEnd        flexString `json:"prd_end"`
	FormType      flexString `json:"formtype"`
	PDFURL        string     `json:"pdf_url"`
	Updated       string     `json:"updated"`
}

// FiscalYearEnd returns prd_end when present, otherwise the raw tax period.
func (f Filing) FiscalYearEnd() string {
	if f.PrdEnd != "" {
		return string(f.PrdEnd)
	}
	if f.TaxPrd != 0 {
		return strconv.Itoa(f.TaxPrd)
	}
	return ""
}

// TaxYear returns the filing's tax year, falling back to the tax period.
func (f Filing) TaxYear() int {
	if f.TaxPrdYr != 0 {
		return f.TaxPrdYr
	}
	return f.TaxPrd
}

// flexString decodes JSON values the API serves inconsistently as either
// string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}
