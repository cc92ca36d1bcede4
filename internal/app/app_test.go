package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HelpsResolver/internal/config"
	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/infrastructure/events"
	"HelpsResolver/internal/logging"
	"HelpsResolver/internal/ports"
)

func newTestApp(t *testing.T, server string, onState func(domain.ResolutionState)) *Application {
	t.Helper()

	cfg := config.Config{
		Door43:   config.Door43Config{Server: server, Owner: "unfoldingWord", Branch: "master", Token: "secret"},
		Resolver: config.ResolverConfig{LanguageID: "en", Timeout: 2 * time.Second},
	}
	a, err := New(context.Background(), cfg, logging.NewWithWriter(io.Discard, "error"), onState)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func helpsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/01.md":
			_, _ = w.Write([]byte("# How to translate names"))
		case "/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/title.md":
			_, _ = w.Write([]byte("How to Translate Names"))
		case "/unfoldingWord/en_tw/raw/branch/master/bible/kt/grace.md":
			_, _ = w.Write([]byte("# grace"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolveHref(t *testing.T) {
	t.Parallel()

	server := helpsServer(t)
	a := newTestApp(t, server.URL, nil)

	state, outcome, err := a.ResolveHref(context.Background(), "rc://*/ta/man/translate/translate-names")
	require.NoError(t, err)
	assert.Nil(t, outcome.Err)
	assert.Equal(t, domain.PhaseLoaded, state.Phase)
	assert.Equal(t, "How to Translate Names", state.Title)
	assert.Equal(t, "# How to translate names", state.Content)

	state, _, err = a.ResolveHref(context.Background(), "../kt/grace.md")
	require.NoError(t, err)
	assert.Equal(t, "Grace", state.Title)

	a.Clear()
	assert.True(t, a.State().Idle())
}

func TestResolveReportsFailures(t *testing.T) {
	t.Parallel()

	server := helpsServer(t)
	a := newTestApp(t, server.URL, nil)

	state, outcome, err := a.Resolve(context.Background(), `<a href="/names/nobody.md">nobody</a>`)
	require.NoError(t, err)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, domain.FailureHTTPStatus, outcome.Err.Kind)
	assert.Equal(t, `<a href="/names/nobody.md">nobody</a>`, outcome.Err.LinkHTML)
	assert.True(t, state.Error)
}

func TestResolveNonLink(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, "http://127.0.0.1:1", nil)
	_, _, err := a.Resolve(context.Background(), `<span>plain</span>`)
	assert.True(t, errors.Is(err, ErrNotALink))
}

func TestPlan(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, "https://git.door43.org/", nil)
	desc, plan := a.Plan("rc://*/ta/man/translate/translate-names")
	assert.Equal(t, domain.CategoryTAManual, desc.Category)
	assert.Equal(t, "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/01.md", plan.ContentURL)
	assert.Equal(t, "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/title.md", plan.TitleURL)
}

func TestRecentErrorsWithoutJournal(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, "https://git.door43.org", nil)
	_, err := a.RecentErrors(context.Background(), 10)
	assert.ErrorIs(t, err, ErrJournalDisabled)
}

func TestListenDrivesStateListener(t *testing.T) {
	t.Parallel()

	server := helpsServer(t)
	loaded := make(chan domain.ResolutionState, 1)
	var once sync.Once
	a := newTestApp(t, server.URL, func(s domain.ResolutionState) {
		if s.Phase == domain.PhaseLoaded {
			once.Do(func() { loaded <- s })
		}
	})

	in := make(chan ports.Event, 1)
	require.NoError(t, a.Listen(context.Background(), in))
	in <- events.NewClick(`<a href="../kt/grace.md">grace</a>`)

	select {
	case s := <-loaded:
		assert.Equal(t, "# grace", s.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("state listener was not notified")
	}
}

func TestDrainWaitsForLatestClick(t *testing.T) {
	t.Parallel()

	server := helpsServer(t)
	a := newTestApp(t, server.URL, nil)

	in := make(chan ports.Event)
	require.NoError(t, a.Listen(context.Background(), in))
	in <- events.NewClick(`<a href="rc://*/ta/man/translate/translate-names">names</a>`)
	in <- events.NewClick(`<a href="../kt/grace.md">grace</a>`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Drain(ctx))

	state := a.State()
	assert.Equal(t, domain.PhaseLoaded, state.Phase)
	assert.Equal(t, "Grace", state.Title)
}
