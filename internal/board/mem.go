package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/steveyegge/boardsync/internal/types"
)

// MemStore is an in-memory Board. It backs the offline tests and records
// every write it receives.
type MemStore struct {
	mu      sync.Mutex
	items   map[int]string // issue → item ID
	parents map[int]int
	numbers map[string]map[types.Field]float64
	choices map[string]map[types.Field]types.Choice
	texts   map[int]types.IssueText
	writes  []Write
	reads   int

	// FailWrites makes every write return this error when set.
	FailWrites error
	// FailReads makes every field read return this error when set.
	FailReads error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		items:   make(map[int]string),
		parents: make(map[int]int),
		numbers: make(map[string]map[types.Field]float64),
		choices: make(map[string]map[types.Field]types.Choice),
		texts:   make(map[int]types.IssueText),
	}
}

// AddItem puts an issue on the board under itemID with the given text.
func (m *MemStore) AddItem(issueNumber int, itemID string, text types.IssueText) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[issueNumber] = itemID
	m.texts[issueNumber] = text
}

// AddIssue records an issue that is not on the board.
func (m *MemStore) AddIssue(issueNumber int, text types.IssueText) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[issueNumber] = text
}

// SetParent links a sub-issue to its parent.
func (m *MemStore) SetParent(child, parent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents[child] = parent
}

// SetNumber seeds a number field without recording a write.
func (m *MemStore) SetNumber(itemID string, field types.Field, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setNumber(itemID, field, value)
}

// SetChoice seeds a single-select field without recording a write.
func (m *MemStore) SetChoice(itemID string, field types.Field, choice types.Choice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setChoice(itemID, field, choice)
}

func (m *MemStore) setNumber(itemID string, field types.Field, value float64) {
	if m.numbers[itemID] == nil {
		m.numbers[itemID] = make(map[types.Field]float64)
	}
	m.numbers[itemID][field] = value
}

func (m *MemStore) setChoice(itemID string, field types.Field, choice types.Choice) {
	if m.choices[itemID] == nil {
		m.choices[itemID] = make(map[types.Field]types.Choice)
	}
	m.choices[itemID][field] = choice
}

// Writes returns a copy of every write received so far.
func (m *MemStore) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.writes...)
}

// ResetWrites clears the write log.
func (m *MemStore) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// Reads returns the number of field reads served.
func (m *MemStore) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Text returns the current text of an issue.
func (m *MemStore) Text(issueNumber int) types.IssueText {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts[issueNumber]
}

// ReadNumber implements Store.
func (m *MemStore) ReadNumber(_ context.Context, itemID string, field types.Field) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	m.reads++
	v, ok := m.numbers[itemID][field]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// ReadChoice implements Store.
func (m *MemStore) ReadChoice(_ context.Context, itemID string, field types.Field) (*types.Choice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	m.reads++
	v, ok := m.choices[itemID][field]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// WriteNumber implements Store.
func (m *MemStore) WriteNumber(_ context.Context, itemID string, field types.Field, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.setNumber(itemID, field, value)
	m.writes = append(m.writes, Write{Op: OpNumber, ItemID: itemID, Field: field, Number: value})
	return nil
}

// WriteChoice implements Store.
func (m *MemStore) WriteChoice(_ context.Context, itemID string, field types.Field, optionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.setChoice(itemID, field, types.Choice{OptionID: optionID})
	m.writes = append(m.writes, Write{Op: OpChoice, ItemID: itemID, Field: field, OptionID: optionID})
	return nil
}

// ReadItemText implements Store.
func (m *MemStore) ReadItemText(_ context.Context, issueNumber int) (types.IssueText, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.texts[issueNumber]
	if !ok {
		return types.IssueText{}, fmt.Errorf("issue #%d not found", issueNumber)
	}
	return text, nil
}

// RewriteItemBody implements Store.
func (m *MemStore) RewriteItemBody(_ context.Context, issueNumber int, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	text := m.texts[issueNumber]
	text.Body = body
	m.texts[issueNumber] = text
	m.writes = append(m.writes, Write{Op: OpBody, Issue: issueNumber, Body: body})
	return nil
}

// FindItem implements Locator.
func (m *MemStore) FindItem(_ context.Context, issueNumber int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.items[issueNumber]
	if !ok {
		return "", fmt.Errorf("issue #%d: %w", issueNumber, ErrItemNotFound)
	}
	return id, nil
}

// ParentOf implements Locator.
func (m *MemStore) ParentOf(_ context.Context, issueNumber int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parents[issueNumber]
	return p, ok, nil
}
