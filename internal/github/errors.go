package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a non-2xx response from the GitHub REST or GraphQL
// endpoint.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the top-level error description from GitHub, or the raw
	// body when it was not JSON.
	Message string

	// DocumentationURL points to the relevant API documentation.
	DocumentationURL string

	// RateLimited is set when GitHub signalled a primary or secondary rate limit.
	RateLimited bool
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", err.StatusCode, err.Message)
}

// newAPIError builds an APIError from a failed response.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var decoded struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Message != "" {
		apiErr.Message = decoded.Message
		apiErr.DocumentationURL = decoded.DocumentationURL
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.RateLimited = resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden &&
			(resp.Header.Get("X-RateLimit-Remaining") == "0" || isRateLimitMessage(apiErr.Message)))
	return apiErr
}

func isRateLimitMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit")
}

// GraphQLError carries the errors array of a GraphQL response that
// returned HTTP 200.
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

// GraphQLErrorEntry is one entry of a GraphQL errors array.
type GraphQLErrorEntry struct {
	Type    string        `json:"type,omitempty"`
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

func (err *GraphQLError) Error() string {
	messages := make([]string, 0, len(err.Errors))
	for _, e := range err.Errors {
		if e.Type != "" {
			messages = append(messages, e.Type+": "+e.Message)
		} else {
			messages = append(messages, e.Message)
		}
	}
	return "github graphql: " + strings.Join(messages, "; ")
}

func (err *GraphQLError) hasType(t string) bool {
	for _, e := range err.Errors {
		if e.Type == t {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a 404 response or a GraphQL NOT_FOUND error.
func IsNotFound(err error) bool {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError.StatusCode == http.StatusNotFound
	}
	var gqlError *GraphQLError
	return errors.As(err, &gqlError) && gqlError.hasType("NOT_FOUND")
}

// IsRateLimited reports whether err is a GitHub rate limit response.
// GitHub returns 403 when the primary rate limit is exceeded and 429
// for secondary (abuse) rate limits. GraphQL reports RATE_LIMITED in the
// errors array.
func IsRateLimited(err error) bool {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError.RateLimited
	}
	var gqlError *GraphQLError
	return errors.As(err, &gqlError) && gqlError.hasType("RATE_LIMITED")
}

// IsRetryable reports whether a failed request is worth repeating.
func IsRetryable(err error) bool {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError.RateLimited || apiError.StatusCode >= 500
	}
	return IsRateLimited(err)
}
