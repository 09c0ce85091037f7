package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:      token,
		Owner:      owner,
		Repo:       repo,
		BaseURL:    DefaultAPIEndpoint,
		GraphQLURL: DefaultGraphQLEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		RetryDelay: RetryDelay,
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.HTTPClient = httpClient
	return &clone
}

// WithBaseURL returns a new client with a custom REST base URL (for testing
// or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.BaseURL = baseURL
	return &clone
}

// WithGraphQLURL returns a new client with a custom GraphQL endpoint.
func (c *Client) WithGraphQLURL(graphqlURL string) *Client {
	clone := *c
	clone.GraphQLURL = graphqlURL
	return &clone
}

// WithRateLimit returns a new client that sends at most rps requests per
// second. A non-positive rps disables client-side limiting.
func (c *Client) WithRateLimit(rps float64) *Client {
	clone := *c
	if rps <= 0 {
		clone.Limiter = nil
	} else {
		clone.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &clone
}

// WithRetryDelay returns a new client with a custom initial retry interval.
func (c *Client) WithRetryDelay(d time.Duration) *Client {
	clone := *c
	clone.RetryDelay = d
	return &clone
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh one.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryDelay
	if bo.InitialInterval <= 0 {
		bo.InitialInterval = RetryDelay
	}
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, MaxRetries), ctx)
}

// doRequest performs an HTTP request with authentication, client-side rate
// limiting and retry on rate-limit or server errors.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var (
		respBody []byte
		headers  http.Header
		attempt  int
	)
	op := func() error {
		attempt++
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("request failed (attempt %d/%d): %w", attempt, MaxRetries+1, err)
		}

		const maxResponseSize = 50 * 1024 * 1024
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt, MaxRetries+1, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(resp, data)
			if !IsRetryable(apiErr) {
				return backoff.Permanent(apiErr)
			}
			if err := waitRetryAfter(ctx, resp.Header); err != nil {
				return backoff.Permanent(err)
			}
			return apiErr
		}

		respBody, headers = data, resp.Header
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && IsRetryable(apiErr) && attempt > MaxRetries {
			return nil, nil, fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries+1, err)
		}
		return nil, nil, err
	}
	return respBody, headers, nil
}

// waitRetryAfter honours a Retry-After header (in seconds) before the next
// attempt.
func waitRetryAfter(ctx context.Context, headers http.Header) error {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return nil
	}
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	}
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// FetchIssuesSince retrieves issues updated since the given time. A zero
// since fetches every issue. Pull requests are filtered out.
func (c *Client) FetchIssuesSince(ctx context.Context, state string, since time.Time) ([]Issue, error) {
	var allIssues []Issue
	page := 1

	for {
		select {
		case <-ctx.Done():
			return allIssues, ctx.Err()
		default:
		}

		params := map[string]string{
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}
		if !since.IsZero() {
			params["since"] = since.UTC().Format(time.RFC3339)
		}
		if state != "" && state != "all" {
			params["state"] = state
		} else {
			params["state"] = "all"
		}

		urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues", params)
		respBody, headers, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issues: %w", err)
		}

		var issues []Issue
		if err := json.Unmarshal(respBody, &issues); err != nil {
			return nil, fmt.Errorf("failed to parse issues response: %w", err)
		}

		for i := range issues {
			if issues[i].PullRequest == nil {
				allIssues = append(allIssues, issues[i])
			}
		}

		if _, ok := hasNextPage(headers); !ok {
			break
		}
		page++

		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}

	return allIssues, nil
}

// FetchIssueByNumber retrieves a single issue by its number.
func (c *Client) FetchIssueByNumber(ctx context.Context, number int) (*Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	return &issue, nil
}

// UpdateIssueBody replaces an issue's body.
// GitHub uses PATCH for issue updates.
func (c *Client) UpdateIssueBody(ctx context.Context, number int, body string) (*Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPatch, urlStr, map[string]interface{}{"body": body})
	if err != nil {
		return nil, fmt.Errorf("failed to update issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}

	return &issue, nil
}
