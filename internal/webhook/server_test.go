package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/boardsync/internal/engine"
	"github.com/steveyegge/boardsync/internal/schema"
)

type fakeDispatcher struct {
	mu      sync.Mutex
	targets []engine.Target
	err     error
	block   chan struct{}
	done    chan struct{}
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{done: make(chan struct{}, 16)}
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, t engine.Target) (*engine.Result, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.targets = append(f.targets, t)
	f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.err != nil {
		return nil, f.err
	}
	return &engine.Result{Kind: engine.KindInitiative, Issue: t.Number}, nil
}

func (f *fakeDispatcher) seen() []engine.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.Target(nil), f.targets...)
}

func newTestServer(d Dispatcher, secret string, queue int) *Server {
	return NewServer(ServerConfig{
		Dispatcher: d,
		Schema:     schema.NewHolder(schema.Default()),
		Secret:     []byte(secret),
		QueueSize:  queue,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func issuesPayload(action string, number int, labels []string, parentURL string) []byte {
	type label struct {
		Name string `json:"name"`
	}
	ls := make([]label, 0, len(labels))
	for _, l := range labels {
		ls = append(ls, label{Name: l})
	}
	issue := map[string]interface{}{"number": number, "title": "t", "labels": ls}
	if parentURL != "" {
		issue["parent_issue_url"] = parentURL
	}
	data, _ := json.Marshal(map[string]interface{}{"action": action, "issue": issue})
	return data
}

func post(t *testing.T, h http.Handler, event string, body []byte, secret string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", "d-1")
	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, []byte(secret)))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandleWebhook_Routing(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		body       []byte
		wantStatus int
		wantState  string
		wantKind   string
	}{
		{"initiative label", "issues", issuesPayload("labeled", 12, []string{"initiative"}, ""), http.StatusAccepted, "queued", "initiative"},
		{"sub-issue", "issues", issuesPayload("opened", 30, nil, "https://api.github.com/repos/acme/product/issues/12"), http.StatusAccepted, "queued", "child"},
		{"plain issue", "issues", issuesPayload("opened", 5, []string{"bug"}, ""), http.StatusAccepted, "ignored", ""},
		{"closed action", "issues", issuesPayload("closed", 12, []string{"initiative"}, ""), http.StatusAccepted, "ignored", ""},
		{"other event", "pull_request", []byte(`{"action":"opened"}`), http.StatusAccepted, "ignored", ""},
		{"ping", "ping", []byte(`{"zen":"hi"}`), http.StatusOK, "pong", ""},
		{"bad json", "issues", []byte(`{`), http.StatusBadRequest, "error", ""},
		{"no issue", "issues", []byte(`{"action":"opened"}`), http.StatusBadRequest, "error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(newFakeDispatcher(), "", 8)
			w, resp := post(t, s.Handler(), tt.event, tt.body, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.wantState == "queued" {
				assert.Equal(t, "d-1", resp.Delivery)
				assert.Len(t, s.queue, 1)
			} else {
				assert.Empty(t, s.queue)
			}
		})
	}
}

func TestHandleWebhook_MethodNotAllowed(t *testing.T) {
	s := newTestServer(newFakeDispatcher(), "", 8)
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleWebhook_Signature(t *testing.T) {
	body := issuesPayload("opened", 12, []string{"initiative"}, "")

	t.Run("valid", func(t *testing.T) {
		s := newTestServer(newFakeDispatcher(), "s3cret", 8)
		w, resp := post(t, s.Handler(), "issues", body, "s3cret")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "queued", resp.Status)
	})

	t.Run("wrong secret", func(t *testing.T) {
		s := newTestServer(newFakeDispatcher(), "s3cret", 8)
		w, resp := post(t, s.Handler(), "issues", body, "other")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", resp.Error)
		assert.Empty(t, s.queue)
	})

	t.Run("missing", func(t *testing.T) {
		s := newTestServer(newFakeDispatcher(), "s3cret", 8)
		w, resp := post(t, s.Handler(), "issues", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", resp.Error)
	})
}

func TestHandleWebhook_QueueFull(t *testing.T) {
	s := newTestServer(newFakeDispatcher(), "", 1)
	body := issuesPayload("edited", 12, []string{"initiative"}, "")

	w, _ := post(t, s.Handler(), "issues", body, "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w, resp := post(t, s.Handler(), "issues", body, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "queue full", resp.Error)
}

func TestWorker_RunsQueuedEventsInOrder(t *testing.T) {
	d := newFakeDispatcher()
	s := newTestServer(d, "", 8)

	for _, n := range []int{12, 13, 14} {
		w, _ := post(t, s.Handler(), "issues", issuesPayload("opened", n, []string{"initiative"}, ""), "")
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.StartWorker(ctx)
	for i := 0; i < 3; i++ {
		select {
		case <-d.done:
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not process queued events")
		}
	}
	cancel()
	s.Wait()

	got := d.seen()
	require.Len(t, got, 3)
	for i, n := range []int{12, 13, 14} {
		assert.Equal(t, n, got[i].Number)
	}
	assert.Equal(t, []string{"initiative"}, got[0].Labels)
}

func TestWorker_DispatchErrorDoesNotStopWorker(t *testing.T) {
	d := newFakeDispatcher()
	d.err = errors.New("board unavailable")
	s := newTestServer(d, "", 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartWorker(ctx)

	for _, n := range []int{1, 2} {
		post(t, s.Handler(), "issues", issuesPayload("opened", n, []string{"initiative"}, ""), "")
		select {
		case <-d.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("event %d not processed", n)
		}
	}
	assert.Len(t, d.seen(), 2)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(newFakeDispatcher(), "", 8)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(newFakeDispatcher(), "", 8)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

// slowDispatcher signals when a run starts, then holds it for hold or until
// its context ends, and reports the context error it saw.
type slowDispatcher struct {
	hold    time.Duration
	started chan struct{}
	ctxErr  chan error
}

func (d *slowDispatcher) Dispatch(ctx context.Context, t engine.Target) (*engine.Result, error) {
	d.started <- struct{}{}
	select {
	case <-time.After(d.hold):
	case <-ctx.Done():
	}
	d.ctxErr <- ctx.Err()
	return &engine.Result{Kind: engine.KindInitiative, Issue: t.Number}, ctx.Err()
}

func TestListenAndServe_ShutdownDrainsRunInProgress(t *testing.T) {
	tests := []struct {
		name    string
		hold    time.Duration
		grace   time.Duration
		wantErr error
	}{
		{"run finishes within timeout", 200 * time.Millisecond, 5 * time.Second, nil},
		{"run cancelled at timeout", time.Minute, 100 * time.Millisecond, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &slowDispatcher{hold: tt.hold, started: make(chan struct{}, 1), ctxErr: make(chan error, 1)}
			s := NewServer(ServerConfig{
				Dispatcher:      d,
				Schema:          schema.NewHolder(schema.Default()),
				Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
				ShutdownTimeout: tt.grace,
			})
			s.queue <- job{delivery: "d-1", event: "issues", action: "opened", target: engine.Target{Number: 12}}
			s.queue <- job{delivery: "d-2", event: "issues", action: "opened", target: engine.Target{Number: 13}}

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

			select {
			case <-d.started:
			case <-time.After(5 * time.Second):
				t.Fatal("run did not start")
			}
			cancel()

			select {
			case err := <-errCh:
				assert.NoError(t, err)
			case <-time.After(15 * time.Second):
				t.Fatal("ListenAndServe did not return after cancel")
			}
			assert.Equal(t, tt.wantErr, <-d.ctxErr)
			assert.Len(t, d.started, 0, "queued delivery should not start after shutdown")
			assert.Len(t, s.queue, 1)
		})
	}
}
