package form990

import "github.com/sells-group/charity-prospector/internal/model"

// Form 990 Part VII officer/director/compensation group tags across schema
// revisions.
var officerGroupTags = []string{
	"Form990PartVIISectionAGrp",
	"OfficerDirectorTrusteeEmplGrp",
	"CompensationInfoGrp",
	"Form990PartVIISectionA",
}

var (
	officerNameTags = []string{
		"PersonNm",
		"PersonFullName",
		"Name",
		"BusinessNameLine1Txt",
		"BusinessNameLine1",
	}
	officerTitleTags = []string{"TitleTxt", "Title", "PersonTitleTxt"}
	officerCompTags  = []string{
		"ReportableCompFromOrgAmt",
		"ReportableCompFromOrg",
		"CompensationAmount",
		"TotalCompensation",
	}
	officerHoursTags = []string{
		"AverageHoursPerWeekRt",
		"AverageHoursPerWeek",
		"AvgHoursPerWkDevotedToPosRt",
	}
)

// Officers extracts compensated officers from Form 990 Part VII. Entries
// without a name are discarded.
func Officers(doc *Document) []model.Officer {
	var officers []model.Officer
	for _, group := range doc.FindAll(officerGroupTags...) {
		name := MatchText(group, officerNameTags...)
		if name.State != Found {
			continue
		}

		officer := model.Officer{Name: name.Value}
		if title := MatchText(group, officerTitleTags...); title.State == Found {
			officer.Title = title.Value
		}
		if comp := MatchAmount(group, officerCompTags...); comp.State == Found {
			v := comp.Value
			officer.Compensation = &v
		}
		if hours := MatchText(group, officerHoursTags...); hours.State == Found {
			officer.HoursPerWeek = hours.Value
		}
		officers = append(officers, officer)
	}
	return officers
}
