// Package stubserver is an in-memory stand-in for the remote review service.
// It implements exactly the documented request/response shapes (start a
// workflow, list pending checkpoints, accept a decision) so the console can
// be demoed and exercised without the real workflow engine.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kingrea/reviewdesk/internal/review"
)

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server owns the HTTP listener and the in-memory pending-review queue.
type Server struct {
	settings Settings
	logger   Logger
	clock    func() time.Time
	newID    func() string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	pending  map[string]review.PendingItem
	order    []string
	threads  map[string]string
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides workflow/checkpoint id generation for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewServer prepares a stub review service using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
		pending:  map[string]review.PendingItem{},
		threads:  map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed HTTP handler, exposed for httptest use.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Post("/workflow/start", s.handleStart)
	r.Get("/human-review/pending", s.handlePending)
	r.Post("/human-review/decision", s.handleDecision)
	return r
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("stubserver: already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stubserver: listen %s: %w", addr, err)
	}
	s.listener = listener
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("stubserver: serve error: %v", err)
		}
	}()
	s.logger.Printf("stubserver: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

type startRequest struct {
	InvoiceID  string  `json:"invoice_id"`
	VendorName string  `json:"vendor_name"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

type startResponse struct {
	Status       string `json:"status"`
	ThreadID     string `json:"thread_id"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Message      string `json:"message,omitempty"`
}

type pendingResponse struct {
	Items []review.PendingItem `json:"items"`
}

type decisionResponse struct {
	Status    string `json:"status"`
	NextStage string `json:"next_stage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"time":   s.clock().Format(time.RFC3339),
	})
}

// handleStart runs the mock pipeline up to the two-way match. Invoices whose
// amount deviates from the mock PO beyond the tolerance pause at a human
// checkpoint; everything else completes immediately.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InvoiceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body: {\"invoice_id\":\"...\"}"})
		return
	}
	threadID := s.newID()
	if s.matches(req.Amount) {
		s.logger.Printf("stubserver: workflow %s completed for %s", threadID, req.InvoiceID)
		writeJSON(w, http.StatusOK, startResponse{Status: "COMPLETED", ThreadID: threadID})
		return
	}

	checkpointID := s.newID()
	item := review.PendingItem{
		InvoiceID:    req.InvoiceID,
		Amount:       req.Amount,
		Reason:       fmt.Sprintf("Amount mismatch: invoice %.2f vs PO %.2f", req.Amount, s.settings.POAmount),
		CheckpointID: checkpointID,
	}
	s.mu.Lock()
	s.pending[checkpointID] = item
	s.order = append(s.order, checkpointID)
	s.threads[checkpointID] = threadID
	s.mu.Unlock()

	s.logger.Printf("stubserver: workflow %s paused at checkpoint %s", threadID, checkpointID)
	writeJSON(w, http.StatusOK, startResponse{
		Status:       "PAUSED",
		ThreadID:     threadID,
		CheckpointID: checkpointID,
		Message:      "Workflow paused for human review.",
	})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]review.PendingItem, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.pending[id]; ok {
			items = append(items, item)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, pendingResponse{Items: items})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var d review.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil || d.CheckpointID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body: {\"checkpoint_id\":\"...\"}"})
		return
	}

	s.mu.Lock()
	_, ok := s.pending[d.CheckpointID]
	if ok {
		delete(s.pending, d.CheckpointID)
		for i, id := range s.order {
			if id == d.CheckpointID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		delete(s.threads, d.CheckpointID)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Checkpoint not found"})
		return
	}

	nextStage := "END"
	if isApproval(d.Decision) {
		nextStage = "RECONCILE"
	}
	s.logger.Printf("stubserver: checkpoint %s resolved as %s by %s", d.CheckpointID, d.Decision, d.ReviewerID)
	writeJSON(w, http.StatusOK, decisionResponse{Status: "RESUMED", NextStage: nextStage})
}

// matches reports whether the invoice amount is within the two-way tolerance
// of the mock PO amount.
func (s *Server) matches(amount float64) bool {
	po := s.settings.POAmount
	diffPct := math.Abs(amount-po) / po * 100
	return diffPct <= s.settings.TolerancePct
}

func isApproval(decision string) bool {
	switch decision {
	case review.DecisionApprove, "ACCEPT", "APPROVE":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
