package form990

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func TestParse_StripsNamespaces(t *testing.T) {
	doc := mustParse(t, `<?xml version="1.0"?>
<irs:Return xmlns:irs="http://www.irs.gov/efile">
  <irs:ReturnData>
    <irs:CYTotalFundraisingExpenseAmt>2500000</irs:CYTotalFundraisingExpenseAmt>
  </irs:ReturnData>
</irs:Return>`)

	nodes := doc.FindAll("CYTotalFundraisingExpenseAmt")
	require.Len(t, nodes, 1)
	assert.Equal(t, "2500000", nodes[0].Text)
	assert.Equal(t, "ReturnData", nodes[0].Parent.Name)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse([]byte("   "))
	assert.Error(t, err)
}

func TestParse_Truncated(t *testing.T) {
	_, err := Parse([]byte(`<Return><ReturnData>`))
	assert.Error(t, err)
}

func TestMatchText_CandidatePriorityBeatsDocumentOrder(t *testing.T) {
	doc := mustParse(t, `<Group>
  <BusinessNameLine1Txt>Acme Fundraising LLC</BusinessNameLine1Txt>
  <PersonNm>Jane Smith</PersonNm>
</Group>`)

	// PersonNm is listed first, so it wins even though the business name
	// appears earlier in the document.
	r := MatchText(doc.Root, "PersonNm", "BusinessNameLine1Txt")
	assert.Equal(t, Found, r.State)
	assert.Equal(t, "Jane Smith", r.Value)
}

func TestMatchText_SkipsEmptyElements(t *testing.T) {
	doc := mustParse(t, `<Group>
  <PersonNm>  </PersonNm>
  <BusinessNameLine1Txt>Acme Fundraising LLC</BusinessNameLine1Txt>
</Group>`)

	r := MatchText(doc.Root, "PersonNm", "BusinessNameLine1Txt")
	assert.Equal(t, Found, r.State)
	assert.Equal(t, "Acme Fundraising LLC", r.Value)
}

func TestMatchText_Absent(t *testing.T) {
	doc := mustParse(t, `<Group><Other>x</Other></Group>`)
	r := MatchText(doc.Root, "PersonNm")
	assert.Equal(t, Absent, r.State)

	assert.Equal(t, Absent, MatchText(nil, "PersonNm").State)
}

func TestMatchAmount_Found(t *testing.T) {
	doc := mustParse(t, `<Group><CompensationAmt>125000</CompensationAmt></Group>`)
	r := MatchAmount(doc.Root, "RetainedByContractorAmt", "CompensationAmt")
	assert.Equal(t, Found, r.State)
	assert.Equal(t, 125000.0, r.Value)
}

func TestMatchAmount_MalformedFallsThroughToNextCandidate(t *testing.T) {
	doc := mustParse(t, `<Group>
  <RetainedByContractorAmt>N/A</RetainedByContractorAmt>
  <CompensationAmt>90000</CompensationAmt>
</Group>`)

	r := MatchAmount(doc.Root, "RetainedByContractorAmt", "CompensationAmt")
	assert.Equal(t, Found, r.State)
	assert.Equal(t, 90000.0, r.Value)
}

func TestMatchAmount_AllMalformed(t *testing.T) {
	doc := mustParse(t, `<Group><RetainedByContractorAmt>N/A</RetainedByContractorAmt></Group>`)
	r := MatchAmount(doc.Root, "RetainedByContractorAmt")
	assert.Equal(t, Malformed, r.State)
}

func TestMatchAmount_ZeroIsFoundNotAbsent(t *testing.T) {
	doc := mustParse(t, `<Group><RetainedByContractorAmt>0</RetainedByContractorAmt></Group>`)
	r := MatchAmount(doc.Root, "RetainedByContractorAmt")
	assert.Equal(t, Found, r.State)
	assert.Equal(t, 0.0, r.Value)
}

func TestDocumentFindAll_NilSafe(t *testing.T) {
	var doc *Document
	assert.Empty(t, doc.FindAll("Anything"))
}
