package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"

	"github.com/sells-group/charity-prospector/internal/model"
)

const currencyFormat = "$#,##0"

// Workbook assembles the four-sheet prospect report: per-charity summary,
// agency detail, contact list, and the criteria the run used.
type Workbook struct {
	records  []model.QualificationRecord
	contacts map[string][]model.Contact
	params   model.SearchParams
	now      time.Time
}

// NewWorkbook creates a report over qualified records and their contact map.
func NewWorkbook(records []model.QualificationRecord, contacts map[string][]model.Contact, params model.SearchParams) *Workbook {
	return &Workbook{
		records:  records,
		contacts: contacts,
		params:   params,
		now:      time.Now(),
	}
}

// Filename returns the conventional report filename for the workbook's
// generation time.
func (w *Workbook) Filename() string {
	return fmt.Sprintf("charity_prospector_%s.xlsx", w.now.Format("20060102_1504"))
}

// Write renders the workbook to the writer.
func (w *Workbook) Write(out io.Writer) error {
	f, err := w.build()
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

// Save renders the workbook to a file at path.
func (w *Workbook) Save(path string) error {
	f, err := w.build()
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}

func (w *Workbook) build() (*xlsx.File, error) {
	f := xlsx.NewFile()

	if err := w.addSummarySheet(f); err != nil {
		return nil, err
	}
	if err := w.addAgenciesSheet(f); err != nil {
		return nil, err
	}
	if err := w.addContactsSheet(f); err != nil {
		return nil, err
	}
	if err := w.addCriteriaSheet(f); err != nil {
		return nil, err
	}

	return f, nil
}

func headerStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	style.Font.Bold = true
	style.Font.Size = 11
	style.Font.Color = "FFFFFFFF"
	style.Fill = *xlsx.NewFill("solid", "FF2F5496", "FF2F5496")
	style.Alignment.Horizontal = "center"
	style.Alignment.WrapText = true
	style.ApplyFont = true
	style.ApplyFill = true
	style.ApplyAlignment = true
	return style
}

func addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	style := headerStyle()
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		cell.SetStyle(style)
	}
}

func (w *Workbook) addSummarySheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Charity Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addHeaderRow(sheet, []string{
		"EIN", "Organization Name", "City", "State", "NTEE Code",
		"Total Revenue", "Total Expenses", "Fundraising Expenses",
		"Tax Year", "Fiscal Year End", "# Agencies", "Top Agency",
		"Top Agency Spend", "# Contacts",
	})

	for _, rec := range w.records {
		topAgencyName := "N/A"
		topAgencySpend := 0.0
		if len(rec.Agencies) > 0 {
			topAgencyName = rec.Agencies[0].Name
			topAgencySpend = rec.Agencies[0].PaidAmount()
		}

		row := sheet.AddRow()
		row.AddCell().SetString(rec.EIN)
		row.AddCell().SetString(rec.Name)
		row.AddCell().SetString(rec.City)
		row.AddCell().SetString(rec.State)
		row.AddCell().SetString(rec.NTEECode)
		row.AddCell().SetFloatWithFormat(rec.Filing.Revenue, currencyFormat)
		row.AddCell().SetFloatWithFormat(rec.Filing.TotalExpenses, currencyFormat)
		row.AddCell().SetFloatWithFormat(rec.FundraisingExpenses, currencyFormat)
		row.AddCell().SetInt(rec.Filing.TaxYear)
		row.AddCell().SetString(rec.Filing.FiscalYearEnd)
		row.AddCell().SetInt(len(rec.Agencies))
		row.AddCell().SetString(topAgencyName)
		row.AddCell().SetFloatWithFormat(topAgencySpend, currencyFormat)
		row.AddCell().SetInt(len(w.contacts[rec.EIN]))
	}

	if err := sheet.SetColWidth(0, 13, 22); err != nil {
		return eris.Wrap(err, "report: set summary widths")
	}
	return nil
}

func (w *Workbook) addAgenciesSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Fundraising Agencies")
	if err != nil {
		return eris.Wrap(err, "report: add agencies sheet")
	}

	addHeaderRow(sheet, []string{
		"EIN", "Organization", "Agency Name", "Agency City", "Agency State",
		"Amount Paid", "Amount Raised", "Activity",
	})

	for _, rec := range w.records {
		for _, agency := range rec.Agencies {
			row := sheet.AddRow()
			row.AddCell().SetString(rec.EIN)
			row.AddCell().SetString(rec.Name)
			row.AddCell().SetString(agency.Name)
			row.AddCell().SetString(agency.City)
			row.AddCell().SetString(agency.State)
			row.AddCell().SetFloatWithFormat(agency.PaidAmount(), currencyFormat)
			row.AddCell().SetFloatWithFormat(agency.AmountRaised, currencyFormat)
			row.AddCell().SetString(agency.Activity)
		}
	}

	if err := sheet.SetColWidth(0, 7, 25); err != nil {
		return eris.Wrap(err, "report: set agency widths")
	}
	return nil
}

func (w *Workbook) addContactsSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "report: add contacts sheet")
	}

	addHeaderRow(sheet, []string{
		"EIN", "Organization", "Contact Name", "Title", "Compensation",
		"Hours/Week", "Relevance Score", "Email", "LinkedIn", "Phone", "Source",
	})

	for _, rec := range w.records {
		for _, contact := range w.contacts[rec.EIN] {
			row := sheet.AddRow()
			row.AddCell().SetString(rec.EIN)
			row.AddCell().SetString(rec.Name)
			row.AddCell().SetString(contact.Name)
			row.AddCell().SetString(contact.Title)
			row.AddCell().SetFloatWithFormat(contact.Compensation, currencyFormat)
			row.AddCell().SetString(contact.HoursPerWeek)
			row.AddCell().SetInt(contact.RelevanceScore)
			row.AddCell().SetString(contact.Email)
			row.AddCell().SetString(contact.LinkedInURL)
			row.AddCell().SetString(contact.Phone)
			row.AddCell().SetString(string(contact.Source))
		}
	}

	if err := sheet.SetColWidth(0, 10, 22); err != nil {
		return eris.Wrap(err, "report: set contact widths")
	}
	return nil
}

func (w *Workbook) addCriteriaSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Criteria & Notes")
	if err != nil {
		return eris.Wrap(err, "report: add criteria sheet")
	}

	boldStyle := xlsx.NewStyle()
	boldStyle.Font.Bold = true
	boldStyle.ApplyFont = true

	rows := [][2]string{
		{"Parameter", "Value"},
		{"Revenue Range", fmt.Sprintf("$%.0fM - $%.0fM", w.params.MinRevenue/1e6, w.params.MaxRevenue/1e6)},
		{"Min Fundraising Expense", fmt.Sprintf("$%.0fM", w.params.MinFundraisingExpense/1e6)},
		{"Min Agency Spend (Schedule G)", fmt.Sprintf("$%.0fK", w.params.MinAgencySpend/1e3)},
		{"Organization Type", "501(c)(3)"},
		{"Target Contacts", "3-4 Fundraising/Development leaders per org"},
		{"", ""},
		{"Data Sources", ""},
		{"Financial Data", "ProPublica Nonprofit Explorer API v2"},
		{"Schedule G / Agencies", "IRS Form 990 XML E-Files"},
		{"Officer/Contact Data", "Form 990 Part VII Section A"},
		{"Contact Enrichment", "Apollo.io API (if key provided)"},
		{"", ""},
		{"Notes", ""},
		{"", "Contacts sourced from both Form 990 and Apollo.io where available"},
		{"", "Generated: " + w.now.Format("2006-01-02 15:04")},
	}

	for _, pair := range rows {
		row := sheet.AddRow()
		keyCell := row.AddCell()
		keyCell.SetString(pair[0])
		if pair[0] != "" {
			keyCell.SetStyle(boldStyle)
		}
		row.AddCell().SetString(pair[1])
	}

	if err := sheet.SetColWidth(0, 0, 30); err != nil {
		return eris.Wrap(err, "report: set criteria widths")
	}
	if err := sheet.SetColWidth(1, 1, 60); err != nil {
		return eris.Wrap(err, "report: set criteria widths")
	}
	return nil
}
