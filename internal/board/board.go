// Package board defines the project-board item store that the sync engine
// reads from and writes to, plus its GitHub, in-memory and dry-run
// implementations.
package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/steveyegge/boardsync/internal/types"
)

// ErrItemNotFound is returned by Locator.FindItem when the issue is not on
// the configured project board.
var ErrItemNotFound = errors.New("issue is not on the project board")

// Store reads and writes board fields and the issue text behind an item.
// Read methods return nil when the field is unset.
type Store interface {
	// ReadNumber returns the number stored in a number field.
	ReadNumber(ctx context.Context, itemID string, field types.Field) (*float64, error)

	// ReadChoice returns the option stored in a single-select field.
	ReadChoice(ctx context.Context, itemID string, field types.Field) (*types.Choice, error)

	// WriteNumber sets a number field.
	WriteNumber(ctx context.Context, itemID string, field types.Field, value float64) error

	// WriteChoice sets a single-select field to an option.
	WriteChoice(ctx context.Context, itemID string, field types.Field, optionID string) error

	// ReadItemText returns the title, body and labels of an issue.
	ReadItemText(ctx context.Context, issueNumber int) (types.IssueText, error)

	// RewriteItemBody replaces an issue's body.
	RewriteItemBody(ctx context.Context, issueNumber int, body string) error
}

// Locator maps issues to board items.
type Locator interface {
	// FindItem returns the board item ID for an issue, or ErrItemNotFound.
	FindItem(ctx context.Context, issueNumber int) (string, error)

	// ParentOf returns the parent issue number of a sub-issue.
	// ok is false when the issue has no parent.
	ParentOf(ctx context.Context, issueNumber int) (parent int, ok bool, err error)
}

// Board is a Store that can also locate items.
type Board interface {
	Store
	Locator
}

// Invalidator is implemented by stores that cache item state. The engine
// calls Invalidate at the start of each run so every run reads fresh values.
type Invalidator interface {
	Invalidate(itemID string)
}

// Op names a store write.
type Op string

// Write operations
const (
	OpNumber Op = "number"
	OpChoice Op = "choice"
	OpBody   Op = "body"
)

// Write records one store mutation. Used by the dry-run and in-memory
// stores to report what was (or would have been) written.
type Write struct {
	Op       Op
	ItemID   string
	Issue    int
	Field    types.Field
	Number   float64
	OptionID string
	Body     string
}

func (w Write) String() string {
	switch w.Op {
	case OpNumber:
		return fmt.Sprintf("%s %s = %v", w.ItemID, w.Field, w.Number)
	case OpChoice:
		return fmt.Sprintf("%s %s = %s", w.ItemID, w.Field, w.OptionID)
	case OpBody:
		return fmt.Sprintf("#%d body (%d bytes)", w.Issue, len(w.Body))
	}
	return string(w.Op)
}
