package apollo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPeople(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mixed_people/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "Good Charity", req.OrgName)
		assert.Equal(t, personTitles, req.PersonTitles)
		assert.Equal(t, 1, req.Page)
		assert.Equal(t, 5, req.PerPage)

		w.Write([]byte(`{"people": [
			{"first_name": "Dana", "last_name": "Giver", "title": "CDO", "email": "dana@example.org",
			 "linkedin_url": "https://linkedin.com/in/dana", "phone_numbers": [{"sanitized_number": "+15551234567"}]},
			{"first_name": "Lee", "title": "President"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	people, err := c.SearchPeople(context.Background(), "Good Charity")
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "Dana Giver", people[0].Name())
	assert.Equal(t, "dana@example.org", people[0].Email)
	assert.Equal(t, "+15551234567", people[0].Phone())

	assert.Equal(t, "Lee", people[1].Name())
	assert.Empty(t, people[1].Phone())
}

func TestSearchPeople_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.SearchPeople(context.Background(), "Good Charity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPersonName(t *testing.T) {
	assert.Equal(t, "Dana Giver", Person{FirstName: "Dana", LastName: "Giver"}.Name())
	assert.Equal(t, "Dana", Person{FirstName: "Dana"}.Name())
	assert.Equal(t, "Giver", Person{LastName: "Giver"}.Name())
	assert.Empty(t, Person{}.Name())
}
