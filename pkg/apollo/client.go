package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apollo.io/api/v1"

// Target titles for fundraising/development contact lookup.
var personTitles = []string{
	"VP Development", "Vice President Development",
	"Chief Development Officer", "CDO",
	"Director of Development", "Director of Fundraising",
	"Senior Director Development", "SVP Development",
	"Executive Director", "CEO", "President",
}

// Client searches Apollo.io for people at an organization.
type Client interface {
	SearchPeople(ctx context.Context, orgName string) ([]Person, error)
}

// Person is one people-search hit.
type Person struct {
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Title        string        `json:"title"`
	Email        string        `json:"email"`
	LinkedInURL  string        `json:"linkedin_url"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// PhoneNumber is one phone entry on a person record.
type PhoneNumber struct {
	SanitizedNumber string `json:"sanitized_number"`
}

// Name returns the person's full name, trimmed.
func (p Person) Name() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Phone returns the first sanitized phone number, if any.
func (p Person) Phone() string {
	if len(p.PhoneNumbers) == 0 {
		return ""
	}
	return p.PhoneNumbers[0].SanitizedNumber
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apollo.io API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchRequest struct {
	APIKey       string   `json:"api_key"`
	OrgName      string   `json:"q_organization_name"`
	PersonTitles []string `json:"person_titles"`
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
}

type searchResponse struct {
	People []Person `json:"people"`
}

// SearchPeople queries mixed_people/search with the fixed target-title list,
// requesting up to 5 results.
func (c *httpClient) SearchPeople(ctx context.Context, orgName string) ([]Person, error) {
	payload := searchRequest{
		APIKey:       c.apiKey,
		OrgName:      orgName,
		PersonTitles: personTitles,
		Page:         1,
		PerPage:      5,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mixed_people/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("apollo: unexpected status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal response")
	}

	return result.People, nil
}
