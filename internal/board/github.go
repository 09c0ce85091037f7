package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/steveyegge/boardsync/internal/github"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
)

// GitHubStore is a Board backed by GitHub Projects (v2).
//
// Field values are read once per item with a single GraphQL query and kept
// until Invalidate is called; writes update the cached copy so later reads
// in the same run see them.
type GitHubStore struct {
	client *github.Client
	schema *schema.Holder

	mu     sync.Mutex
	values map[string]map[string]github.FieldValue // itemID → fieldID → value
}

// NewGitHubStore creates a store for the project described by the schema.
func NewGitHubStore(client *github.Client, holder *schema.Holder) *GitHubStore {
	return &GitHubStore{
		client: client,
		schema: holder,
		values: make(map[string]map[string]github.FieldValue),
	}
}

// Invalidate drops the cached field values of an item.
func (s *GitHubStore) Invalidate(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, itemID)
}

func (s *GitHubStore) fieldID(field types.Field) (string, error) {
	id := s.schema.Get().FieldID(field)
	if id == "" {
		return "", fmt.Errorf("no field ID configured for %s", field)
	}
	return id, nil
}

// snapshot returns the field values of an item, fetching them on first use.
func (s *GitHubStore) snapshot(ctx context.Context, itemID string) (map[string]github.FieldValue, error) {
	s.mu.Lock()
	cached, ok := s.values[itemID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	fetched, err := s.client.FetchFieldValues(ctx, itemID)
	if err != nil {
		return nil, err
	}
	byField := make(map[string]github.FieldValue, len(fetched))
	for _, v := range fetched {
		byField[v.FieldID] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.values[itemID]; ok {
		return existing, nil
	}
	s.values[itemID] = byField
	return byField, nil
}

func (s *GitHubStore) remember(itemID string, v github.FieldValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byField, ok := s.values[itemID]; ok {
		byField[v.FieldID] = v
	}
}

// ReadNumber implements Store.
func (s *GitHubStore) ReadNumber(ctx context.Context, itemID string, field types.Field) (*float64, error) {
	fieldID, err := s.fieldID(field)
	if err != nil {
		return nil, err
	}
	values, err := s.snapshot(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	v, ok := values[fieldID]
	s.mu.Unlock()
	if !ok || v.Kind != github.FieldValueNumber {
		return nil, nil
	}
	n := v.Number
	return &n, nil
}

// ReadChoice implements Store.
func (s *GitHubStore) ReadChoice(ctx context.Context, itemID string, field types.Field) (*types.Choice, error) {
	fieldID, err := s.fieldID(field)
	if err != nil {
		return nil, err
	}
	values, err := s.snapshot(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	v, ok := values[fieldID]
	s.mu.Unlock()
	if !ok || v.Kind != github.FieldValueSingleSelect {
		return nil, nil
	}
	return &types.Choice{OptionID: v.OptionID, Name: v.Name}, nil
}

// WriteNumber implements Store.
func (s *GitHubStore) WriteNumber(ctx context.Context, itemID string, field types.Field, value float64) error {
	fieldID, err := s.fieldID(field)
	if err != nil {
		return err
	}
	if err := s.client.UpdateNumber(ctx, s.schema.Get().ProjectID, itemID, fieldID, value); err != nil {
		return err
	}
	s.remember(itemID, github.FieldValue{FieldID: fieldID, Kind: github.FieldValueNumber, Number: value})
	return nil
}

// WriteChoice implements Store.
func (s *GitHubStore) WriteChoice(ctx context.Context, itemID string, field types.Field, optionID string) error {
	fieldID, err := s.fieldID(field)
	if err != nil {
		return err
	}
	if err := s.client.UpdateSingleSelect(ctx, s.schema.Get().ProjectID, itemID, fieldID, optionID); err != nil {
		return err
	}
	s.remember(itemID, github.FieldValue{FieldID: fieldID, Kind: github.FieldValueSingleSelect, OptionID: optionID})
	return nil
}

// ReadItemText implements Store.
func (s *GitHubStore) ReadItemText(ctx context.Context, issueNumber int) (types.IssueText, error) {
	issue, err := s.client.FetchIssueByNumber(ctx, issueNumber)
	if err != nil {
		return types.IssueText{}, err
	}
	return types.IssueText{
		Title:  issue.Title,
		Body:   issue.Body,
		Labels: github.LabelNames(issue.Labels),
	}, nil
}

// RewriteItemBody implements Store.
func (s *GitHubStore) RewriteItemBody(ctx context.Context, issueNumber int, body string) error {
	_, err := s.client.UpdateIssueBody(ctx, issueNumber, body)
	return err
}

// FindItem implements Locator. An issue matches when its project item
// belongs to the schema's project, by node ID or, failing that, by number.
func (s *GitHubStore) FindItem(ctx context.Context, issueNumber int) (string, error) {
	items, err := s.client.FetchProjectItems(ctx, issueNumber)
	if err != nil {
		return "", err
	}
	sch := s.schema.Get()
	for _, item := range items {
		if sch.ProjectID != "" && item.ProjectID == sch.ProjectID {
			return item.ID, nil
		}
	}
	for _, item := range items {
		if sch.ProjectNumber != 0 && item.ProjectNumber == sch.ProjectNumber {
			return item.ID, nil
		}
	}
	return "", fmt.Errorf("issue #%d: %w", issueNumber, ErrItemNotFound)
}

// ParentOf implements Locator.
func (s *GitHubStore) ParentOf(ctx context.Context, issueNumber int) (int, bool, error) {
	issue, err := s.client.FetchIssueByNumber(ctx, issueNumber)
	if err != nil {
		return 0, false, err
	}
	n, ok := github.ParentNumber(issue.ParentIssueURL)
	return n, ok, nil
}
