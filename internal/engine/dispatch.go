package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/boardsync/internal/github"
	"github.com/steveyegge/boardsync/internal/schema"
)

// Target is an issue as seen by an event or listing, before any board
// lookup.
type Target struct {
	Number    int
	Labels    []string
	IssueType string
	ParentURL string
}

// TargetFromIssue builds a Target from a GitHub issue.
func TargetFromIssue(issue github.Issue) Target {
	return Target{
		Number:    issue.Number,
		Labels:    github.LabelNames(issue.Labels),
		IssueType: issue.TypeName(),
		ParentURL: issue.ParentIssueURL,
	}
}

// Route picks the automation for a target. Sub-issues get their fields
// from the parent; initiatives are scored; everything else is ignored.
func Route(s *schema.Schema, t Target) Kind {
	switch {
	case t.ParentURL != "":
		return KindChild
	case s.IsInitiative(t.Labels, t.IssueType):
		return KindInitiative
	}
	return KindIgnored
}

// Dispatch runs the automation Route picks for t. Ignored targets return a
// skipped result.
func (e *Engine) Dispatch(ctx context.Context, t Target) (*Result, error) {
	switch Route(e.Schema.Get(), t) {
	case KindChild:
		return e.CopyFromParent(ctx, t.Number)
	case KindInitiative:
		return e.SyncInitiative(ctx, t.Number)
	}
	e.logger().Debug("issue is neither an initiative nor a sub-issue, ignoring", "issue", t.Number)
	return &Result{Kind: KindIgnored, Issue: t.Number, Skipped: true, SkipReason: "not an initiative or sub-issue"}, nil
}

// IssueLister lists repository issues updated since a time.
type IssueLister interface {
	FetchIssuesSince(ctx context.Context, state string, since time.Time) ([]github.Issue, error)
}

// Resync dispatches every issue updated since the given time, a bounded
// number at a time. A run that fails is recorded in the result and does not
// stop the others; only a failed listing returns an error.
func (e *Engine) Resync(ctx context.Context, lister IssueLister, since time.Time) (*BatchResult, error) {
	issues, err := lister.FetchIssuesSince(ctx, "all", since)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	sch := e.Schema.Get()
	seen := make(map[int]bool, len(issues))
	var targets []Target
	batch := &BatchResult{}
	for _, issue := range issues {
		if seen[issue.Number] {
			continue
		}
		seen[issue.Number] = true
		t := TargetFromIssue(issue)
		if Route(sch, t) == KindIgnored {
			batch.Ignored++
			continue
		}
		targets = append(targets, t)
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	e.logger().Info("resync started", "issues", len(issues), "targets", len(targets), "concurrency", limit)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, t := range targets {
		g.Go(func() error {
			res, err := e.Dispatch(gctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failures = append(batch.Failures, Failure{Issue: t.Number, Error: err.Error()})
				return nil
			}
			batch.Results = append(batch.Results, res)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(batch.Results, func(i, j int) bool { return batch.Results[i].Issue < batch.Results[j].Issue })
	sort.Slice(batch.Failures, func(i, j int) bool { return batch.Failures[i].Issue < batch.Failures[j].Issue })

	e.logger().Info("resync finished",
		"runs", len(batch.Results),
		"failures", len(batch.Failures),
		"ignored", batch.Ignored,
		"written", batch.Written(),
	)
	return batch, nil
}
