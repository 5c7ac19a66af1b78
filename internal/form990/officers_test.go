package form990

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfficers_PartVII(t *testing.T) {
	doc := mustParse(t, `<Return>
  <Form990PartVIISectionAGrp>
    <PersonNm>Maria Lopez</PersonNm>
    <TitleTxt>Chief Development Officer</TitleTxt>
    <ReportableCompFromOrgAmt>185000</ReportableCompFromOrgAmt>
    <AverageHoursPerWeekRt>40.00</AverageHoursPerWeekRt>
  </Form990PartVIISectionAGrp>
  <Form990PartVIISectionAGrp>
    <PersonNm>Sam Director</PersonNm>
    <TitleTxt>Board Member</TitleTxt>
    <ReportableCompFromOrgAmt>0</ReportableCompFromOrgAmt>
  </Form990PartVIISectionAGrp>
</Return>`)

	officers := Officers(doc)
	require.Len(t, officers, 2)

	first := officers[0]
	assert.Equal(t, "Maria Lopez", first.Name)
	assert.Equal(t, "Chief Development Officer", first.Title)
	require.NotNil(t, first.Compensation)
	assert.Equal(t, 185000.0, *first.Compensation)
	assert.Equal(t, "40.00", first.HoursPerWeek)

	// Zero compensation is an explicit value, not a missing one.
	require.NotNil(t, officers[1].Compensation)
	assert.Equal(t, 0.0, *officers[1].Compensation)
}

func TestOfficers_LegacySchema(t *testing.T) {
	doc := mustParse(t, `<Return>
  <Form990PartVIISectionA>
    <PersonFullName>Pat Legacy</PersonFullName>
    <PersonTitleTxt>Executive Director</PersonTitleTxt>
    <CompensationAmount>140000</CompensationAmount>
    <AverageHoursPerWeek>35</AverageHoursPerWeek>
  </Form990PartVIISectionA>
</Return>`)

	officers := Officers(doc)
	require.Len(t, officers, 1)
	assert.Equal(t, "Pat Legacy", officers[0].Name)
	assert.Equal(t, "Executive Director", officers[0].Title)
	assert.Equal(t, "35", officers[0].HoursPerWeek)
}

func TestOfficers_NamelessEntryDiscarded(t *testing.T) {
	doc := mustParse(t, `<Return>
  <Form990PartVIISectionAGrp>
    <TitleTxt>CFO</TitleTxt>
    <ReportableCompFromOrgAmt>200000</ReportableCompFromOrgAmt>
  </Form990PartVIISectionAGrp>
</Return>`)
	assert.Empty(t, Officers(doc))
}

func TestOfficers_MissingCompensationStaysNil(t *testing.T) {
	doc := mustParse(t, `<Return>
  <Form990PartVIISectionAGrp>
    <PersonNm>Volunteer Chair</PersonNm>
    <TitleTxt>Chair</TitleTxt>
  </Form990PartVIISectionAGrp>
</Return>`)

	officers := Officers(doc)
	require.Len(t, officers, 1)
	assert.Nil(t, officers[0].Compensation)
}
