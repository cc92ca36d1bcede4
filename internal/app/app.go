package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sync/atomic"

	"HelpsResolver/internal/classifier"
	"HelpsResolver/internal/config"
	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/infrastructure/auth"
	"HelpsResolver/internal/infrastructure/capture"
	"HelpsResolver/internal/infrastructure/events"
	"HelpsResolver/internal/infrastructure/storage"
	"HelpsResolver/internal/infrastructure/telegram"
	"HelpsResolver/internal/infrastructure/transport"
	"HelpsResolver/internal/logging"
	"HelpsResolver/internal/ports"
	"HelpsResolver/internal/urlplan"
	"HelpsResolver/internal/usecase"
)

const userAgent = "HelpsResolver/1.0"

var (
	// ErrNotALink is returned when a clicked element carries no href.
	ErrNotALink = errors.New("clicked element is not a link")
	// ErrJournalDisabled is returned when no database is configured.
	ErrJournalDisabled = errors.New("error journal is disabled: no database dsn configured")
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	classifier *classifier.Classifier
	dispatcher *events.Dispatcher
	session    *usecase.Session
	journal    *storage.PostgresJournal
	db         *sql.DB

	unsubscribe func()
	submitted   atomic.Pointer[usecase.Handle]
	latest      atomic.Pointer[usecase.Handle]
}

// New builds the resolver stack. onState, when set, observes every state
// transition of the session.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, onState func(domain.ResolutionState)) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		classifier: classifier.New(baseLogger.With("component", "classifier")),
		dispatcher: events.NewDispatcher(baseLogger.With("component", "events")),
	}

	reporters := usecase.Reporters{usecase.NewLogReporter(baseLogger.With("component", "reporter"))}

	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.journal = storage.NewPostgresJournal(db)
		if err := a.journal.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		reporters = append(reporters, a.journal)
	}

	if cfg.Notifications.Telegram.Enabled() {
		reporters = append(reporters, telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID))
	}

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Transport: transport.NewClient(&http.Client{}, baseLogger.With("component", "transport")),
		Auth:      auth.NewStaticProvider(cfg.Door43.Token, userAgent),
		Timeout:   cfg.Resolver.Timeout,
		Logger:    baseLogger.With("component", "orchestrator"),
	})

	a.session = usecase.NewSession(usecase.SessionDeps{
		Classifier:      a.classifier,
		Resolver:        orchestrator,
		Server:          a.serverConfig(),
		Context:         a.linkContext(),
		OnResourceError: reporters.Callback(ctx, baseLogger.With("component", "reporter")),
		OnStateChange:   onState,
		Logger:          baseLogger.With("component", "session"),
	})

	capturer, err := capture.NewCapturer(cfg.Resolver.DocumentBase, baseLogger.With("component", "capture"))
	if err != nil {
		a.closeDB()
		return nil, err
	}
	listener := capture.NewListener(capturer, func(ctx context.Context, link domain.ClickedLink) {
		h := a.session.Submit(ctx, link)
		a.latest.Store(h)
		a.submitted.Store(h)
	})
	a.unsubscribe = listener.Attach(a.dispatcher)

	return a, nil
}

// Resolve clicks the element described by targetHTML and waits for the
// resolution to settle.
func (a *Application) Resolve(ctx context.Context, targetHTML string) (domain.ResolutionState, usecase.Outcome, error) {
	a.submitted.Store(nil)
	a.dispatcher.Dispatch(ctx, events.NewClick(targetHTML))

	h := a.submitted.Swap(nil)
	if h == nil {
		return a.session.State(), usecase.Outcome{}, ErrNotALink
	}

	outcome, err := h.Wait(ctx)
	if err != nil {
		return a.session.State(), outcome, fmt.Errorf("wait for resolution: %w", err)
	}
	return a.session.State(), outcome, nil
}

// ResolveHref resolves a bare href as if an anchor carrying it was clicked.
func (a *Application) ResolveHref(ctx context.Context, href string) (domain.ResolutionState, usecase.Outcome, error) {
	escaped := html.EscapeString(href)
	return a.Resolve(ctx, `<a href="`+escaped+`">`+escaped+`</a>`)
}

// Plan classifies href and computes its URLs without any network access.
func (a *Application) Plan(href string) (domain.ResourceDescriptor, domain.FetchPlan) {
	desc := a.classifier.Classify(href, a.linkContext())
	return desc, urlplan.Build(desc, a.serverConfig())
}

// Listen feeds events from in to the click listener until ctx ends or in closes.
func (a *Application) Listen(ctx context.Context, in <-chan ports.Event) error {
	return a.dispatcher.Start(ctx, in)
}

// Drain stops the event pump started by Listen and waits for the latest
// click to settle.
func (a *Application) Drain(ctx context.Context) error {
	if err := a.dispatcher.Stop(ctx); err != nil {
		return err
	}
	h := a.latest.Load()
	if h == nil {
		return nil
	}
	if _, err := h.Wait(ctx); err != nil {
		return fmt.Errorf("wait for resolution: %w", err)
	}
	return nil
}

// State returns the current resolution snapshot.
func (a *Application) State() domain.ResolutionState {
	return a.session.State()
}

// Clear resets the resolution state to idle.
func (a *Application) Clear() {
	a.session.Clear()
}

// RecentErrors lists the newest journal records.
func (a *Application) RecentErrors(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	if a.journal == nil {
		return nil, ErrJournalDisabled
	}
	return a.journal.Recent(ctx, limit)
}

// Close detaches from the event source and waits for in-flight work.
func (a *Application) Close(ctx context.Context) error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	err := a.dispatcher.Stop(ctx)
	a.session.Close()
	a.closeDB()
	return err
}

func (a *Application) closeDB() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
	a.db = nil
}

func (a *Application) serverConfig() domain.ServerConfig {
	return domain.ServerConfig{
		Server: a.cfg.Door43.Server,
		Owner:  a.cfg.Door43.Owner,
		Branch: a.cfg.Door43.Branch,
	}
}

func (a *Application) linkContext() domain.LinkContext {
	return domain.LinkContext{
		LanguageID:         a.cfg.Resolver.LanguageID,
		TAArticleProjectID: a.cfg.Resolver.TAArticleProjectID,
	}
}
