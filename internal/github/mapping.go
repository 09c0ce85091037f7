package github

import (
	"strconv"
	"strings"
)

// LabelNames extracts label name strings from a slice of Label structs.
func LabelNames(labels []Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

// ParentNumber parses the issue number from the last path segment of a
// parent_issue_url. It reports false for an empty or malformed URL.
func ParentNumber(parentIssueURL string) (int, bool) {
	parentIssueURL = strings.TrimRight(strings.TrimSpace(parentIssueURL), "/")
	if parentIssueURL == "" {
		return 0, false
	}
	last := parentIssueURL[strings.LastIndex(parentIssueURL, "/")+1:]
	n, err := strconv.Atoi(last)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// SplitRepository splits "owner/repo" as found in GITHUB_REPOSITORY.
func SplitRepository(fullName string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}
