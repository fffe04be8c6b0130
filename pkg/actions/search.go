package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSearchResults is the number of results shown to the model.
const DefaultSearchResults = 5

// Search queries a SearXNG instance.
type Search struct {
	endpoint   string
	http       *http.Client
	maxResults int
}

// SearchOption configures Search.
type SearchOption func(*Search)

// WithSearchHTTPClient replaces the HTTP client.
func WithSearchHTTPClient(hc *http.Client) SearchOption {
	return func(s *Search) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithMaxResults caps the number of listed results.
func WithMaxResults(n int) SearchOption {
	return func(s *Search) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewSearch creates a search action posting to endpoint, the instance's
// /search URL.
func NewSearch(endpoint string, opts ...SearchOption) *Search {
	s := &Search{
		endpoint:   endpoint,
		http:       &http.Client{Timeout: 30 * time.Second},
		maxResults: DefaultSearchResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type searxResult struct {
	Title   *string `json:"title"`
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// Invoke runs the "query" parameter against the instance.
func (s *Search) Invoke(ctx context.Context, params map[string]any) (any, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return "Error: No search query provided.", nil
	}

	form := url.Values{"q": {query}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Sprintf("Error performing search: %v", err), nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fmt.Sprintf("Error performing search: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error: Could not complete search. Status code: %d", resp.StatusCode), nil
	}

	var body struct {
		Results []searxResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Sprintf("Error performing search: %v", err), nil
	}
	if len(body.Results) == 0 {
		return "No results found for query: " + query, nil
	}

	var b strings.Builder
	b.WriteString("Search Results:\n\n")
	for i, r := range body.Results {
		if i == s.maxResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, orDefault(r.Title, "No Title"))
		fmt.Fprintf(&b, "   URL: %s\n", orDefault(r.URL, "No URL"))
		fmt.Fprintf(&b, "   Description: %s\n\n", strings.TrimSpace(orDefault(r.Content, "No Description")))
	}
	fmt.Fprintf(&b, "Total results found: %d", len(body.Results))
	return b.String(), nil
}
