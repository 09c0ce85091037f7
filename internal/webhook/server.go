package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/steveyegge/boardsync/internal/engine"
	"github.com/steveyegge/boardsync/internal/github"
	"github.com/steveyegge/boardsync/internal/schema"
)

// DefaultQueueSize is the number of events buffered for the worker.
const DefaultQueueSize = 64

// maxPayload is GitHub's webhook payload cap.
const maxPayload = 25 << 20

// DefaultShutdownTimeout bounds how long shutdown waits for the run in
// progress before cancelling it.
const DefaultShutdownTimeout = 10 * time.Second

// handledActions are the issues actions that can change what a run computes.
var handledActions = map[string]bool{
	"opened":    true,
	"edited":    true,
	"labeled":   true,
	"unlabeled": true,
	"reopened":  true,
}

// HandlesAction reports whether an issues event with this action triggers a
// run.
func HandlesAction(action string) bool {
	return handledActions[action]
}

// Dispatcher runs the automation for one issue. *engine.Engine implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, t engine.Target) (*engine.Result, error)
}

// Server handles GitHub webhook deliveries.
//
// Deliveries are verified and answered immediately; accepted events are
// queued for a single worker so runs never overlap.
type Server struct {
	dispatcher Dispatcher
	schema     *schema.Holder
	secret     []byte
	log        *slog.Logger
	queue      chan job
	grace      time.Duration
	mux        *http.ServeMux
	httpServer *http.Server
	workerDone sync.WaitGroup
}

// ServerConfig holds configuration for the webhook server.
type ServerConfig struct {
	Dispatcher Dispatcher
	Schema     *schema.Holder
	Secret     []byte // HMAC secret; empty disables signature checks
	QueueSize  int
	Logger     *slog.Logger

	// ShutdownTimeout defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

type job struct {
	delivery string
	event    string
	action   string
	target   engine.Target
}

// NewServer creates a new webhook server.
func NewServer(cfg ServerConfig) *Server {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	grace := cfg.ShutdownTimeout
	if grace <= 0 {
		grace = DefaultShutdownTimeout
	}
	s := &Server{
		dispatcher: cfg.Dispatcher,
		schema:     cfg.Schema,
		secret:     cfg.Secret,
		log:        logger,
		queue:      make(chan job, size),
		grace:      grace,
		mux:        http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/webhook", s.handleWebhook)
	s.mux.HandleFunc("/health", s.handleHealth)

	return s
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartWorker processes queued events until ctx is cancelled. Cancelling
// ctx also cancels the run in progress; events still queued are dropped.
func (s *Server) StartWorker(ctx context.Context) {
	s.startWorker(ctx, ctx)
}

// startWorker dequeues until stop is done. Runs get runCtx, so a run that
// started before stop fired keeps going until it ends or runCtx is done.
func (s *Server) startWorker(stop, runCtx context.Context) {
	s.workerDone.Add(1)
	go func() {
		defer s.workerDone.Done()
		for stop.Err() == nil {
			select {
			case <-stop.Done():
				return
			case j := <-s.queue:
				s.process(runCtx, j)
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (s *Server) Wait() {
	s.workerDone.Wait()
}

// waitUntil is Wait bounded by ctx. It reports whether the worker stopped.
func (s *Server) waitUntil(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		s.workerDone.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) process(ctx context.Context, j job) {
	log := s.log.With("delivery", j.delivery, "event", j.event, "action", j.action, "issue", j.target.Number)
	res, err := s.dispatcher.Dispatch(ctx, j.target)
	if err != nil {
		log.Error("run failed", "error", err)
		return
	}
	log.Info("run finished",
		"kind", string(res.Kind),
		"skipped", res.Skipped,
		"written", res.Stats.Written,
	)
}

// ListenAndServe serves on addr and runs the worker until ctx is cancelled.
// Shutdown stops accepting deliveries and dequeuing, then lets the run in
// progress finish within the shutdown timeout before cancelling it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop, stopDequeue := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDequeue()
	runCtx, cancelRuns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRuns()
	s.startWorker(stop, runCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	s.log.Info("webhook server listening", "addr", addr, "signed", len(s.secret) > 0)

	select {
	case err := <-errCh:
		stopDequeue()
		cancelRuns()
		s.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	stopDequeue()
	if !s.waitUntil(shutdownCtx) {
		s.log.Warn("run still in progress at shutdown deadline, cancelling", "timeout", s.grace)
		cancelRuns()
		s.Wait()
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Response is the JSON body of every webhook reply.
type Response struct {
	Status   string `json:"status"`
	Delivery string `json:"delivery,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleWebhook handles POST /webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed: use POST")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayload))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer func() { _ = r.Body.Close() }()

	if len(s.secret) > 0 {
		if err := VerifySignature(r.Header.Get(SignatureHeader), body, s.secret); err != nil {
			s.log.Warn("rejected delivery", "error", err, "remote", r.RemoteAddr)
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	event := r.Header.Get("X-GitHub-Event")
	switch event {
	case "ping":
		s.write(w, http.StatusOK, Response{Status: "pong", Delivery: delivery})
		return
	case "issues":
	default:
		s.write(w, http.StatusAccepted, Response{Status: "ignored", Delivery: delivery, Reason: "event " + event})
		return
	}

	var payload github.IssuesEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if payload.Issue == nil || payload.Issue.Number == 0 {
		s.writeError(w, http.StatusBadRequest, "payload has no issue")
		return
	}
	if !HandlesAction(payload.Action) {
		s.write(w, http.StatusAccepted, Response{Status: "ignored", Delivery: delivery, Reason: "action " + payload.Action})
		return
	}

	target := engine.TargetFromIssue(*payload.Issue)
	kind := engine.Route(s.schema.Get(), target)
	if kind == engine.KindIgnored {
		s.write(w, http.StatusAccepted, Response{Status: "ignored", Delivery: delivery, Reason: "not an initiative or sub-issue"})
		return
	}

	select {
	case s.queue <- job{delivery: delivery, event: event, action: payload.Action, target: target}:
		s.write(w, http.StatusAccepted, Response{Status: "queued", Delivery: delivery, Kind: string(kind)})
	default:
		s.log.Warn("queue full, rejecting delivery", "delivery", delivery, "issue", target.Number)
		s.writeError(w, http.StatusServiceUnavailable, "queue full")
	}
}

// handleHealth handles GET /health for load balancer checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "queued": len(s.queue)})
}

func (s *Server) write(w http.ResponseWriter, status int, resp Response) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.write(w, status, Response{Status: "error", Error: message})
}
