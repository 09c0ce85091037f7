package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient verifies the constructor creates a properly configured client.
func TestNewClient(t *testing.T) {
	client := NewClient("test-token", "owner", "repo")

	if client.Token != "test-token" {
		t.Errorf("Token = %q, want %q", client.Token, "test-token")
	}
	if client.Owner != "owner" || client.Repo != "repo" {
		t.Errorf("Owner/Repo = %q/%q, want owner/repo", client.Owner, client.Repo)
	}
	if client.BaseURL != DefaultAPIEndpoint {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL, DefaultAPIEndpoint)
	}
	if client.GraphQLURL != DefaultGraphQLEndpoint {
		t.Errorf("GraphQLURL = %q, want %q", client.GraphQLURL, DefaultGraphQLEndpoint)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient is nil, want non-nil default client")
	}
	if client.Limiter != nil {
		t.Error("Limiter set, want nil by default")
	}
}

// TestClientBuilders verifies the With* builders return modified copies.
func TestClientBuilders(t *testing.T) {
	base := NewClient("token", "owner", "repo")
	custom := &http.Client{Timeout: 60 * time.Second}

	c := base.WithHTTPClient(custom).
		WithBaseURL("https://github.example.com/api/v3").
		WithGraphQLURL("https://github.example.com/api/graphql").
		WithRateLimit(5).
		WithRetryDelay(time.Millisecond)

	if c.HTTPClient != custom {
		t.Error("HTTPClient not set to custom client")
	}
	if c.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("BaseURL = %q, want custom URL", c.BaseURL)
	}
	if c.GraphQLURL != "https://github.example.com/api/graphql" {
		t.Errorf("GraphQLURL = %q, want custom URL", c.GraphQLURL)
	}
	if c.Limiter == nil || c.Limiter.Limit() != 5 {
		t.Errorf("Limiter = %v, want 5 rps", c.Limiter)
	}
	if c.RetryDelay != time.Millisecond {
		t.Errorf("RetryDelay = %v, want 1ms", c.RetryDelay)
	}
	if base.BaseURL != DefaultAPIEndpoint || base.Limiter != nil {
		t.Error("builders modified the original client")
	}
	if c.WithRateLimit(0).Limiter != nil {
		t.Error("WithRateLimit(0) should disable limiting")
	}
}

// TestBuildURL verifies URL construction for API endpoints.
func TestBuildURL(t *testing.T) {
	client := NewClient("token", "owner", "repo")

	tests := []struct {
		name    string
		path    string
		params  map[string]string
		wantURL string
	}{
		{
			name:    "issues endpoint",
			path:    "/repos/owner/repo/issues",
			wantURL: "https://api.github.com/repos/owner/repo/issues",
		},
		{
			name:    "with query params",
			path:    "/repos/owner/repo/issues",
			params:  map[string]string{"state": "open", "per_page": "100"},
			wantURL: "https://api.github.com/repos/owner/repo/issues?per_page=100&state=open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.buildURL(tt.path, tt.params); got != tt.wantURL {
				t.Errorf("buildURL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func testClient(serverURL string) *Client {
	return NewClient("test-token", "owner", "repo").
		WithBaseURL(serverURL).
		WithGraphQLURL(serverURL + "/graphql").
		WithRetryDelay(time.Millisecond)
}

// TestFetchIssuesSince verifies the since param, PR filtering and pagination.
func TestFetchIssuesSince(t *testing.T) {
	since := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	var page atomic.Int32
	var capturedQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("Authorization header = %q, want Bearer prefix", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		if page.Add(1) == 1 {
			capturedQuery = r.URL.RawQuery
			w.Header().Set("Link", `<`+r.URL.String()+`&page=2>; rel="next"`)
			_ = json.NewEncoder(w).Encode([]Issue{
				{ID: 1, Number: 1, Title: "Issue"},
				{ID: 2, Number: 2, Title: "PR", PullRequest: &PullRef{URL: "https://api.github.com/repos/o/r/pulls/2"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode([]Issue{{ID: 3, Number: 3, Title: "Issue 3"}})
	}))
	defer server.Close()

	issues, err := testClient(server.URL).FetchIssuesSince(context.Background(), "all", since)
	if err != nil {
		t.Fatalf("FetchIssuesSince() error = %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("FetchIssuesSince() returned %d issues, want 2 (PR filtered, 2 pages)", len(issues))
	}
	if !strings.Contains(capturedQuery, "since=2024-01-15") {
		t.Errorf("query = %s, want to contain since=2024-01-15", capturedQuery)
	}
}

// TestFetchIssuesSince_ZeroTime verifies a zero time omits the since param.
func TestFetchIssuesSince_ZeroTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("since") {
			t.Errorf("query = %s, want no since", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]Issue{})
	}))
	defer server.Close()

	if _, err := testClient(server.URL).FetchIssuesSince(context.Background(), "", time.Time{}); err != nil {
		t.Fatalf("FetchIssuesSince() error = %v", err)
	}
}

// TestFetchIssueByNumber_Success verifies fetching a sub-issue.
func TestFetchIssueByNumber_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/issues/7" {
			t.Errorf("URL path = %s, want /repos/owner/repo/issues/7", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"number": 7, "title": "[PRD] Child", "parent_issue_url": "https://api.github.com/repos/owner/repo/issues/3", "type": {"name": "Task"}}`))
	}))
	defer server.Close()

	issue, err := testClient(server.URL).FetchIssueByNumber(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchIssueByNumber() error = %v", err)
	}
	if issue.ParentIssueURL == "" || issue.TypeName() != "Task" {
		t.Errorf("issue = %+v, want parent URL and type Task", issue)
	}
}

// TestUpdateIssueBody verifies the PATCH payload.
func TestUpdateIssueBody(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Method = %s, want PATCH", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(Issue{Number: 5, Body: "stripped"})
	}))
	defer server.Close()

	issue, err := testClient(server.URL).UpdateIssueBody(context.Background(), 5, "stripped")
	if err != nil {
		t.Fatalf("UpdateIssueBody() error = %v", err)
	}
	if captured["body"] != "stripped" || len(captured) != 1 {
		t.Errorf("payload = %v, want only body", captured)
	}
	if issue.Body != "stripped" {
		t.Errorf("issue.Body = %q", issue.Body)
	}
}

// TestDoRequest_NotFoundIsPermanent verifies 4xx errors are not retried.
func TestDoRequest_NotFoundIsPermanent(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found", "documentation_url": "https://docs.github.com"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchIssueByNumber(context.Background(), 404)
	if err == nil {
		t.Fatal("FetchIssueByNumber() error = nil, want 404 error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

// TestDoRequest_ServerErrorExhaustsRetries verifies 5xx responses retry then fail.
func TestDoRequest_ServerErrorExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "Server error"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchIssueByNumber(context.Background(), 1)
	if err == nil {
		t.Fatal("FetchIssueByNumber() error = nil, want error for 500")
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("error = %v, want max retries", err)
	}
	if got := attempts.Load(); got != MaxRetries+1 {
		t.Errorf("attempts = %d, want %d", got, MaxRetries+1)
	}
}

// TestDoRequest_RateLimitRetry verifies rate limit handling with retry.
func TestDoRequest_RateLimitRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(Issue{Number: 1, Title: "After retry"})
	}))
	defer server.Close()

	issue, err := testClient(server.URL).FetchIssueByNumber(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchIssueByNumber() error = %v, want success after retries", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", got)
	}
	if issue.Title != "After retry" {
		t.Errorf("issue.Title = %q", issue.Title)
	}
}

// TestDoRequest_ContextCancelled verifies a cancelled context is not retried.
func TestDoRequest_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testClient(server.URL).FetchIssueByNumber(ctx, 1); err == nil {
		t.Fatal("FetchIssueByNumber() error = nil, want context error")
	}
}

// TestHasNextPage verifies Link header parsing.
func TestHasNextPage(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		wantURL  string
		wantNext bool
	}{
		{
			name:     "has next page",
			link:     `<https://api.github.com/repos/o/r/issues?page=2>; rel="next", <https://api.github.com/repos/o/r/issues?page=5>; rel="last"`,
			wantURL:  "https://api.github.com/repos/o/r/issues?page=2",
			wantNext: true,
		},
		{
			name: "no next page",
			link: `<https://api.github.com/repos/o/r/issues?page=1>; rel="prev"`,
		},
		{
			name: "empty link header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.link != "" {
				headers.Set("Link", tt.link)
			}
			gotURL, gotNext := hasNextPage(headers)
			if gotNext != tt.wantNext {
				t.Errorf("hasNextPage() next = %v, want %v", gotNext, tt.wantNext)
			}
			if gotURL != tt.wantURL {
				t.Errorf("hasNextPage() url = %q, want %q", gotURL, tt.wantURL)
			}
		})
	}
}
