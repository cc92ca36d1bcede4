package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/normalize"
	"HelpsResolver/internal/urlplan"
)

// ErrSessionClosed is returned by handles submitted after Close.
var ErrSessionClosed = errors.New("session closed")

// LinkClassifier maps a raw link onto a resource descriptor.
type LinkClassifier interface {
	Classify(rawLink string, lc domain.LinkContext) domain.ResourceDescriptor
}

// Resolver fetches a planned resource.
type Resolver interface {
	Resolve(ctx context.Context, req FetchRequest) (domain.Resource, error)
}

var _ Resolver = (*Orchestrator)(nil)

// SessionDeps is the fixed configuration a consumer supplies for the
// lifetime of a session.
type SessionDeps struct {
	Classifier      LinkClassifier
	Resolver        Resolver
	Server          domain.ServerConfig
	Context         domain.LinkContext
	OnResourceError func(ferr *domain.FetchError)
	OnStateChange   func(state domain.ResolutionState)
	Logger          *slog.Logger
}

// Outcome is what an attempt produced. Discarded outcomes never reached the
// exposed state because a newer click, Clear or Close superseded them.
type Outcome struct {
	Resource  domain.Resource
	Err       *domain.FetchError
	Discarded bool
}

// Session holds the resolution state of one consumer. Each Submit starts a
// new attempt; only the latest attempt may change the state.
type Session struct {
	classifier LinkClassifier
	resolver   Resolver
	server     domain.ServerConfig
	linkCtx    domain.LinkContext
	onError    func(ferr *domain.FetchError)
	onChange   func(state domain.ResolutionState)
	logger     *slog.Logger

	mu      sync.Mutex
	state   domain.ResolutionState
	attempt uint64
	seq     uint64
	cancel  context.CancelFunc
	closed  bool
	wg      sync.WaitGroup

	// notifyMu serializes listener calls; delivered is the seq of the last
	// transition handed to onChange.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewSession constructs the state machine in the idle state. OnStateChange
// observes transitions in order and must not call back into the session.
func NewSession(deps SessionDeps) *Session {
	return &Session{
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		server:     deps.Server,
		linkCtx:    deps.Context,
		onError:    deps.OnResourceError,
		onChange:   deps.OnStateChange,
		logger:     deps.Logger,
	}
}

// State returns the current snapshot.
func (s *Session) State() domain.ResolutionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit starts resolving link and supersedes any attempt in flight.
// Classification and planning happen before Submit returns.
func (s *Session) Submit(ctx context.Context, link domain.ClickedLink) *Handle {
	desc := s.classifier.Classify(link.Href, s.linkCtx)
	req := FetchRequest{
		Link:       link,
		Descriptor: desc,
		Plan:       urlplan.Build(desc, s.server),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return closedHandle()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.attempt++
	attemptCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = domain.ResolutionState{
		Phase:   domain.PhaseLoading,
		Link:    link.Href,
		Loading: true,
	}
	h := &Handle{id: s.attempt, session: s, cancel: cancel, done: make(chan struct{})}
	seq, snapshot := s.transitionLocked()
	s.wg.Add(1)
	s.mu.Unlock()

	s.debug("resolution submitted", "attempt", h.id, "link", link.Href, "category", desc.Category.String())
	s.notify(seq, snapshot)

	go s.run(attemptCtx, h, req)
	return h
}

// Clear forces the idle state. Outcomes of the attempt in flight are discarded.
func (s *Session) Clear() {
	s.mu.Lock()
	s.resetLocked()
	seq, snapshot := s.transitionLocked()
	s.mu.Unlock()

	s.notify(seq, snapshot)
}

// Close clears the session, rejects further submits and waits for in-flight
// attempts to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.resetLocked()
	s.mu.Unlock()

	s.wg.Wait()
	s.debug("session closed")
}

func (s *Session) run(ctx context.Context, h *Handle, req FetchRequest) {
	defer s.wg.Done()
	defer close(h.done)
	defer h.cancel()

	var (
		resource domain.Resource
		err      error
	)
	if s.resolver == nil {
		err = normalize.ProcessUnknownError(errors.New("resolver is not configured"), req.Link, req.Plan.URLs())
	} else {
		resource, err = s.resolver.Resolve(ctx, req)
	}

	var ferr *domain.FetchError
	if err != nil && !errors.As(err, &ferr) {
		ferr = normalize.ProcessUnknownError(err, req.Link, req.Plan.URLs())
	}

	h.outcome = s.finish(h.id, resource, ferr)
}

func (s *Session) finish(id uint64, resource domain.Resource, ferr *domain.FetchError) Outcome {
	outcome := Outcome{Resource: resource, Err: ferr}

	s.mu.Lock()
	if s.closed || id != s.attempt {
		s.mu.Unlock()
		s.debug("stale outcome discarded", "attempt", id)
		outcome.Discarded = true
		return outcome
	}

	s.cancel = nil
	if ferr != nil {
		s.state = domain.ResolutionState{Phase: domain.PhaseFailed, Link: s.state.Link, Error: true}
	} else {
		s.state = domain.ResolutionState{
			Phase:   domain.PhaseLoaded,
			Link:    s.state.Link,
			Title:   resource.Title,
			Content: resource.Content,
		}
	}
	seq, snapshot := s.transitionLocked()
	s.mu.Unlock()

	if ferr != nil {
		s.warn("resource resolution failed",
			"attempt", id,
			"kind", string(ferr.Kind),
			"link", ferr.Link,
			"html", ferr.LinkHTML,
			"urls", ferr.AttemptedURLs,
			"http_status", ferr.HTTPStatus,
			"error", ferr,
		)
		if s.onError != nil {
			s.onError(ferr)
		}
	}
	s.notify(seq, snapshot)
	return outcome
}

// cancelAttempt cancels h; when h is the attempt in flight the session goes idle.
func (s *Session) cancelAttempt(h *Handle) {
	s.mu.Lock()
	current := !s.closed && h.id == s.attempt && s.cancel != nil
	var (
		seq      uint64
		snapshot domain.ResolutionState
	)
	if current {
		s.resetLocked()
		seq, snapshot = s.transitionLocked()
	}
	s.mu.Unlock()

	h.cancel()
	if current {
		s.notify(seq, snapshot)
	}
}

// resetLocked bumps the attempt counter so any outcome in flight is stale.
func (s *Session) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.attempt++
	s.state = domain.ResolutionState{}
}

// transitionLocked stamps the current state with the next sequence number.
func (s *Session) transitionLocked() (uint64, domain.ResolutionState) {
	s.seq++
	return s.seq, s.state
}

// notify hands state to the listener unless a later transition was already
// delivered.
func (s *Session) notify(seq uint64, state domain.ResolutionState) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		s.debug("superseded transition dropped", "seq", seq, "phase", string(state.Phase))
		return
	}
	s.delivered = seq
	s.onChange(state)
}

func (s *Session) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Session) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// Handle tracks one submitted attempt.
type Handle struct {
	id      uint64
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
	err     error
}

func closedHandle() *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{
		cancel:  func() {},
		done:    done,
		outcome: Outcome{Discarded: true},
		err:     ErrSessionClosed,
	}
}

// ID is the attempt identity; later submits have larger ids.
func (h *Handle) ID() uint64 { return h.id }

// Done is closed once the attempt has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the attempt returns or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		return h.outcome, h.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Cancel aborts the attempt. If it is still the active one the session
// returns to idle.
func (h *Handle) Cancel() {
	if h.session == nil {
		h.cancel()
		return
	}
	h.session.cancelAttempt(h)
}
