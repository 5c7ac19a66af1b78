package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/charity-prospector/internal/model"
)

func f64(v float64) *float64 { return &v }

func testRecords() ([]model.QualificationRecord, map[string][]model.Contact, model.SearchParams) {
	records := []model.QualificationRecord{{
		EIN:      "111222333",
		Name:     "Good Charity",
		City:     "Springfield",
		State:    "IL",
		NTEECode: "E20",
		Filing: model.FilingSnapshot{
			Revenue:       50_000_000,
			TotalExpenses: 45_000_000,
			TaxYear:       2023,
			FiscalYearEnd: "2023-06",
			ObjectID:      "obj-good",
		},
		FundraisingExpenses: 3_000_000,
		Agencies: []model.Agency{
			{Name: "Premier Fundraising Partners", AmountPaid: f64(850_000), AmountRaised: 4_200_000, Activity: "Direct mail", City: "Chicago", State: "IL"},
			{Name: "Second Shop", AmountPaid: f64(600_000)},
		},
	}}

	contacts := map[string][]model.Contact{
		"111222333": {
			{Name: "Maria Lopez", Title: "Chief Development Officer", Compensation: 185_000, HoursPerWeek: "40", RelevanceScore: 20, Source: model.SourceFormFiling},
			{Name: "Dana Giver", Title: "VP Development", RelevanceScore: 8, Source: model.SourceApollo, Email: "dana@example.org"},
		},
	}

	params := model.SearchParams{
		MinRevenue:            20_000_000,
		MaxRevenue:            200_000_000,
		MinFundraisingExpense: 2_000_000,
		MinAgencySpend:        500_000,
	}
	return records, contacts, params
}

func TestWorkbook_SheetLayout(t *testing.T) {
	records, contacts, params := testRecords()
	wb := NewWorkbook(records, contacts, params)

	f, err := wb.build()
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)

	assert.Equal(t, "Charity Summary", f.Sheets[0].Name)
	assert.Equal(t, "Fundraising Agencies", f.Sheets[1].Name)
	assert.Equal(t, "Contacts", f.Sheets[2].Name)
	assert.Equal(t, "Criteria & Notes", f.Sheets[3].Name)
}

func TestWorkbook_SummarySheet(t *testing.T) {
	records, contacts, params := testRecords()
	f, err := NewWorkbook(records, contacts, params).build()
	require.NoError(t, err)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0]
	assert.Equal(t, "EIN", header.Cells[0].String())
	assert.Equal(t, "Total Revenue", header.Cells[5].String())
	assert.Equal(t, "Top Agency", header.Cells[11].String())

	row := sheet.Rows[1]
	assert.Equal(t, "111222333", row.Cells[0].String())
	assert.Equal(t, "Good Charity", row.Cells[1].String())

	revenue, err := row.Cells[5].Float()
	require.NoError(t, err)
	assert.Equal(t, 50_000_000.0, revenue)

	assert.Equal(t, "2", row.Cells[10].String())
	assert.Equal(t, "Premier Fundraising Partners", row.Cells[11].String())
	assert.Equal(t, "2", row.Cells[13].String())
}

func TestWorkbook_AgenciesSheetOneRowPerAgency(t *testing.T) {
	records, contacts, params := testRecords()
	f, err := NewWorkbook(records, contacts, params).build()
	require.NoError(t, err)

	sheet := f.Sheets[1]
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Premier Fundraising Partners", sheet.Rows[1].Cells[2].String())
	paid, err := sheet.Rows[1].Cells[5].Float()
	require.NoError(t, err)
	assert.Equal(t, 850_000.0, paid)

	assert.Equal(t, "Second Shop", sheet.Rows[2].Cells[2].String())
}

func TestWorkbook_ContactsSheet(t *testing.T) {
	records, contacts, params := testRecords()
	f, err := NewWorkbook(records, contacts, params).build()
	require.NoError(t, err)

	sheet := f.Sheets[2]
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Maria Lopez", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "form_990", sheet.Rows[1].Cells[10].String())
	assert.Equal(t, "Dana Giver", sheet.Rows[2].Cells[2].String())
	assert.Equal(t, "apollo", sheet.Rows[2].Cells[10].String())
	assert.Equal(t, "dana@example.org", sheet.Rows[2].Cells[7].String())
}

func TestWorkbook_CriteriaSheetFormatsThresholds(t *testing.T) {
	records, contacts, params := testRecords()
	f, err := NewWorkbook(records, contacts, params).build()
	require.NoError(t, err)

	sheet := f.Sheets[3]
	require.GreaterOrEqual(t, len(sheet.Rows), 6)

	assert.Equal(t, "Revenue Range", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "$20M - $200M", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "$2M", sheet.Rows[2].Cells[1].String())
	assert.Equal(t, "$500K", sheet.Rows[3].Cells[1].String())
}

func TestWorkbook_WriteProducesXLSX(t *testing.T) {
	records, contacts, params := testRecords()
	wb := NewWorkbook(records, contacts, params)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	// XLSX containers are zip archives.
	assert.Equal(t, "PK", buf.String()[:2])
	assert.Contains(t, wb.Filename(), "charity_prospector_")
	assert.Contains(t, wb.Filename(), ".xlsx")
}

func TestWorkbook_NoContactsForEIN(t *testing.T) {
	records, _, params := testRecords()
	f, err := NewWorkbook(records, nil, params).build()
	require.NoError(t, err)

	// Contacts sheet has only the header; summary contact count is 0.
	assert.Len(t, f.Sheets[2].Rows, 1)
	assert.Equal(t, "0", f.Sheets[0].Rows[1].Cells[13].String())
}
