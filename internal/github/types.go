// Package github provides clients and data types for the GitHub REST and
// GraphQL APIs.
//
// The REST side covers the issue reads and body rewrites boardsync needs;
// the GraphQL side covers Projects (v2) item lookup and field updates.
package github

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultGraphQLEndpoint is the GitHub GraphQL API URL.
	DefaultGraphQLEndpoint = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited or
	// server-error responses.
	MaxRetries = 3

	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = time.Second

	// MaxPageSize is the maximum number of issues to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 1000

	// ProjectItemsPageSize bounds how many project memberships are read per issue.
	ProjectItemsPageSize = 20

	// FieldValuesPageSize bounds how many field values are read per item.
	FieldValuesPageSize = 50
)

// Client provides methods to interact with the GitHub REST and GraphQL APIs.
type Client struct {
	Token      string        // GitHub token (PAT, app installation or Actions token)
	Owner      string        // Repository owner (user or org)
	Repo       string        // Repository name
	BaseURL    string        // REST API base URL (default: https://api.github.com)
	GraphQLURL string        // GraphQL endpoint (default: https://api.github.com/graphql)
	HTTPClient *http.Client  // Optional custom HTTP client
	RetryDelay time.Duration // Initial retry interval
	Limiter    *rate.Limiter // Optional client-side request limiter
}

// Issue represents an issue from the GitHub API.
type Issue struct {
	ID             int        `json:"id"`      // Global unique ID
	NodeID         string     `json:"node_id"` // GraphQL node ID
	Number         int        `json:"number"`  // Repository-scoped issue number
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	State          string     `json:"state"` // "open" or "closed"
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	Labels         []Label    `json:"labels"`
	User           *User      `json:"user,omitempty"` // Author
	HTMLURL        string     `json:"html_url"`
	PullRequest    *PullRef   `json:"pull_request,omitempty"`     // Non-nil if this is a PR
	ParentIssueURL string     `json:"parent_issue_url,omitempty"` // Set on sub-issues
	Type           *IssueType `json:"type,omitempty"`
	IssueType      *IssueType `json:"issue_type,omitempty"` // Older payload spelling of Type
}

// TypeName returns the issue type name, or "" when the issue is untyped.
func (i *Issue) TypeName() string {
	if i.Type != nil {
		return i.Type.Name
	}
	if i.IssueType != nil {
		return i.IssueType.Name
	}
	return ""
}

// PullRef indicates an issue is actually a pull request.
// The GitHub Issues API returns PRs alongside issues; this field
// distinguishes them.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// IssueType is an organization-level issue type.
type IssueType struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// User represents a GitHub user.
type User struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// Label represents a GitHub label.
type Label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Repository identifies the repository in webhook and Actions payloads.
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    *User  `json:"owner,omitempty"`
}

// IssuesEvent is the payload of an "issues" webhook or Actions event.
type IssuesEvent struct {
	Action     string      `json:"action"`
	Issue      *Issue      `json:"issue"`
	Repository *Repository `json:"repository,omitempty"`
}

// ProjectItem is an issue's membership in a project.
type ProjectItem struct {
	ID            string
	ProjectID     string
	ProjectNumber int
}

// FieldValue is one field value read from a project item.
// Exactly one of Number or OptionID is meaningful, depending on Kind.
type FieldValue struct {
	FieldID   string
	FieldName string
	Kind      FieldValueKind
	Number    float64
	OptionID  string
	Name      string
}

// FieldValueKind distinguishes number and single-select field values.
type FieldValueKind int

// Field value kinds
const (
	FieldValueNumber FieldValueKind = iota
	FieldValueSingleSelect
)
