package form990

import "github.com/sells-group/charity-prospector/internal/model"

// Schedule G fundraiser activity group tags across schema revisions.
var scheduleGGroupTags = []string{
	"FundraiserActivityInfoGrp",
	"ProfessionalFundraising",
	"FundraisingActivityGroup",
	"ProfFundRaisingGrp",
}

var (
	agencyNameTags = []string{
		"PersonNm",
		"BusinessNameLine1Txt",
		"BusinessNameLine1",
		"BusinessName",
		"OrganizationBusinessName",
	}
	agencyAmountPaidTags = []string{
		"RetainedByContractorAmt",
		"AmtPaidToFundraiser",
		"CompensationAmount",
		"AmountPaidToFundraiser",
		"CompensationAmt",
	}
	agencyAmountRaisedTags = []string{
		"GrossReceiptsFromActivityAmt",
		"AmountRaisedByContractor",
		"GrossReceiptsFromActivity",
	}
	agencyActivityTags = []string{"ActivityTxt", "Activity", "Description"}
	agencyCityTags     = []string{"CityNm", "City"}
	agencyStateTags    = []string{"StateAbbreviationCd", "State"}
)

// Agencies extracts professional fundraising agencies from Schedule G.
// Each activity group is matched independently within its own subtree. A
// group without a name is discarded entirely; amount paid stays absent (nil)
// when missing or unparseable, which callers must not conflate with zero.
func Agencies(doc *Document) []model.Agency {
	var agencies []model.Agency
	for _, group := range doc.FindAll(scheduleGGroupTags...) {
		name := MatchText(group, agencyNameTags...)
		if name.State != Found {
			continue
		}

		agency := model.Agency{Name: name.Value}
		if paid := MatchAmount(group, agencyAmountPaidTags...); paid.State == Found {
			v := paid.Value
			agency.AmountPaid = &v
		}
		if raised := MatchAmount(group, agencyAmountRaisedTags...); raised.State == Found {
			agency.AmountRaised = raised.Value
		}
		if activity := MatchText(group, agencyActivityTags...); activity.State == Found {
			agency.Activity = activity.Value
		}
		if city := MatchText(group, agencyCityTags...); city.State == Found {
			agency.City = city.Value
		}
		if state := MatchText(group, agencyStateTags...); state.State == Found {
			agency.State = state.Value
		}
		agencies = append(agencies, agency)
	}
	return agencies
}
