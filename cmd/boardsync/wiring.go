package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/steveyegge/boardsync/internal/board"
	"github.com/steveyegge/boardsync/internal/engine"
	"github.com/steveyegge/boardsync/internal/github"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/telemetry"
)

// app is what a board command needs: the engine plus the pieces it was
// built from.
type app struct {
	engine *engine.Engine
	client *github.Client
	schema *schema.Holder
	dryRun *board.DryRun // nil unless --dry-run
}

// loadSchema loads the configured schema file, or the built-in board.
func loadSchema() (*schema.Holder, error) {
	s, err := schema.Load(settings.SchemaPath)
	if err != nil {
		return nil, err
	}
	return schema.NewHolder(s), nil
}

// newClient builds a GitHub client from the settings.
func newClient() (*github.Client, error) {
	if err := settings.RequireGitHub(); err != nil {
		return nil, err
	}
	gh := settings.GitHub
	client := github.NewClient(gh.Token, gh.Owner, gh.Repo).
		WithBaseURL(gh.APIURL).
		WithGraphQLURL(gh.GraphQLURL)
	if gh.RequestsPerSecond > 0 {
		client = client.WithRateLimit(gh.RequestsPerSecond)
	}
	return client, nil
}

// newApp wires client, store and engine. The store is instrumented when
// telemetry is on and wrapped in a dry run when requested.
func newApp() (*app, error) {
	holder, err := loadSchema()
	if err != nil {
		return nil, err
	}
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	var b board.Board = telemetry.WrapBoard(board.NewGitHubStore(client, holder))
	a := &app{client: client, schema: holder}
	if settings.DryRun {
		a.dryRun = board.NewDryRun(b, logger)
		b = a.dryRun
		logger.Info("dry run: board writes will be logged, not sent")
	}

	e := engine.New(b, holder, logger)
	e.StripBody = settings.StripBody
	e.Concurrency = settings.ResyncConcurrency
	a.engine = e
	return a, nil
}

// parseIssueNumber parses a positive issue number argument, accepting a
// leading '#'.
func parseIssueNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q", arg)
	}
	return n, nil
}
