package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/charity-prospector/internal/model"
	"github.com/sells-group/charity-prospector/pkg/apollo"
)

// maxContacts caps the final contact list per organization, after merging
// filing-derived and enrichment contacts.
const maxContacts = 4

// enrichmentBaselineScore is assigned to all enrichment contacts; they carry
// no compensation or hours basis for the heuristic scorer.
const enrichmentBaselineScore = 8

const (
	fundraisingKeywordWeight = 10
	leadershipKeywordWeight  = 5
	compensationBonus        = 3
	fullTimeHoursBonus       = 2
	fullTimeHoursThreshold   = 30
)

var fundraisingKeywords = []string{
	"development", "fundrais", "advancement", "donor", "philanthrop",
	"annual giving", "major gift", "planned giving", "campaign",
	"chief development", "cdo", "vp develop", "vice president develop",
}

var leadershipKeywords = []string{
	"chief", "president", "executive director", "ceo", "cfo", "coo",
	"vp", "vice president", "svp", "evp", "director", "secretary", "treasurer",
}

// ScoreOfficers ranks officers for fundraising/development relevance and
// returns the top 4. The title contributes at most one fundraising-keyword
// bonus and at most one leadership-keyword bonus no matter how many keywords
// match; positive compensation and full-time hours add small fixed bonuses.
// Officers scoring 0 are excluded entirely. Sort is descending by score with
// compensation as the tie-break.
func ScoreOfficers(officers []model.Officer) []model.Contact {
	var scored []model.Contact
	for _, officer := range officers {
		title := strings.ToLower(officer.Title)

		score := 0
		for _, kw := range fundraisingKeywords {
			if strings.Contains(title, kw) {
				score += fundraisingKeywordWeight
				break
			}
		}
		for _, kw := range leadershipKeywords {
			if strings.Contains(title, kw) {
				score += leadershipKeywordWeight
				break
			}
		}

		comp := 0.0
		if officer.Compensation != nil {
			comp = *officer.Compensation
		}
		if comp > 0 {
			score += compensationBonus
		}
		if hours, err := strconv.ParseFloat(strings.TrimSpace(officer.HoursPerWeek), 64); err == nil && hours >= fullTimeHoursThreshold {
			score += fullTimeHoursBonus
		}

		if score == 0 {
			continue
		}
		scored = append(scored, model.Contact{
			Name:           officer.Name,
			Title:          officer.Title,
			Compensation:   comp,
			HoursPerWeek:   officer.HoursPerWeek,
			RelevanceScore: score,
			Source:         model.SourceFormFiling,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].Compensation > scored[j].Compensation
	})

	if len(scored) > maxContacts {
		scored = scored[:maxContacts]
	}
	return scored
}

// EnrichmentContacts normalizes Apollo people into contacts, keeping at most
// the first 4 with a non-empty resolved name.
func EnrichmentContacts(people []apollo.Person) []model.Contact {
	var contacts []model.Contact
	for _, p := range people {
		if len(contacts) == maxContacts {
			break
		}
		name := strings.TrimSpace(p.Name())
		if name == "" {
			continue
		}
		contacts = append(contacts, model.Contact{
			Name:           name,
			Title:          p.Title,
			RelevanceScore: enrichmentBaselineScore,
			Source:         model.SourceApollo,
			Email:          p.Email,
			LinkedInURL:    p.LinkedInURL,
			Phone:          p.Phone(),
		})
	}
	return contacts
}

// MergeContacts appends enrichment contacts to the scored filing contacts,
// skipping any whose name already appears (case-insensitively), then
// truncates to the 4-contact cap. Truncation happens after the merge so
// enrichment can fill slots filing data left open.
func MergeContacts(filing, enrichment []model.Contact) []model.Contact {
	merged := make([]model.Contact, 0, len(filing)+len(enrichment))
	seen := make(map[string]bool, len(filing))

	for _, c := range filing {
		merged = append(merged, c)
		seen[strings.ToLower(c.Name)] = true
	}
	for _, c := range enrichment {
		if seen[strings.ToLower(c.Name)] {
			continue
		}
		merged = append(merged, c)
		seen[strings.ToLower(c.Name)] = true
	}

	if len(merged) > maxContacts {
		merged = merged[:maxContacts]
	}
	return merged
}
