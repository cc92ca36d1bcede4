package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HelpsResolver/internal/domain"
)

// runRoot executes the root command with args and returns what it printed.
// Commands share package state, so these tests do not run in parallel.
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	for _, env := range []string{
		"HELPS_RESOLVER_CONFIG", "DOOR43_SERVER", "DOOR43_OWNER", "DOOR43_BRANCH", "DOOR43_TOKEN",
		"HELPS_LANGUAGE_ID", "HELPS_REQUEST_TIMEOUT", "DATABASE_DSN", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(env, "")
	}
	overrides = rootOverrides{}
	resolveHTML = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func door43Args(server string) []string {
	return []string{"--server", server, "--owner", "unfoldingWord", "--branch", "master", "--lang", "en"}
}

func TestPlanCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want planView
	}{
		{
			name: "manual article",
			args: []string{"rc://*/ta/man/translate/translate-names"},
			want: planView{
				Category:   "ta_manual",
				LanguageID: "en",
				ResourceID: "ta",
				FilePath:   "translate/translate-names",
				ContentURL: "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/01.md",
				TitleURL:   "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/title.md",
			},
		},
		{
			name: "words entry",
			args: []string{"../kt/grace.md"},
			want: planView{
				Category:     "tw_entry",
				LanguageID:   "en",
				ResourceID:   "tw",
				FilePath:     "/kt/grace.md",
				DerivedTitle: "Grace",
				ContentURL:   "https://git.door43.org/unfoldingWord/en_tw/raw/branch/master/bible/kt/grace.md",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{"plan"}, door43Args("https://git.door43.org")...), tt.args...)
			out, err := runRoot(t, "", args...)
			require.NoError(t, err)

			var got planView
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanCommandRequiresOneLink(t *testing.T) {
	_, err := runRoot(t, "", "plan")
	assert.Error(t, err)
}

func helpsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

func TestResolveCommand(t *testing.T) {
	server := helpsServer(t)

	args := append(append([]string{"resolve"}, door43Args(server.URL)...), "../kt/grace.md")
	out, err := runRoot(t, "", args...)
	require.NoError(t, err)

	var got resolveView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Nil(t, got.Failure)
	assert.Equal(t, stateView{Phase: "loaded", Link: "../kt/grace.md", Title: "Grace", Content: "# grace"}, got.State)
}

func TestResolveCommandReportsFailure(t *testing.T) {
	server := helpsServer(t)

	args := append(append([]string{"resolve", "--html"}, door43Args(server.URL)...), `<a href="/names/nobody.md">nobody</a>`)
	out, err := runRoot(t, "", args...)
	require.Error(t, err)

	var ferr *domain.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, domain.FailureHTTPStatus, ferr.Kind)

	var got resolveView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Failure)
	assert.Equal(t, "http_status", got.Failure.Kind)
	assert.Equal(t, http.StatusNotFound, got.Failure.HTTPStatus)
	assert.Equal(t, "failed", got.State.Phase)
	assert.True(t, got.State.Error)
}

func TestWatchCommandEndsOnLatestClick(t *testing.T) {
	server := helpsServer(t)

	stdin := "rc://*/ta/man/translate/translate-names\n\n<a href=\"../kt/grace.md\">grace</a>\n"
	out, err := runRoot(t, stdin, append([]string{"watch"}, door43Args(server.URL)...)...)
	require.NoError(t, err)

	var views []stateView
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var v stateView
		require.NoError(t, dec.Decode(&v))
		views = append(views, v)
	}
	require.NotEmpty(t, views)
	assert.Equal(t, "loading", views[0].Phase)
	assert.Equal(t, stateView{Phase: "loaded", Link: "../kt/grace.md", Title: "Grace", Content: "# grace"}, views[len(views)-1])
}

func TestClickMarkup(t *testing.T) {
	assert.Equal(t, `<a href="../kt/grace.md">../kt/grace.md</a>`, clickMarkup("../kt/grace.md"))
	assert.Equal(t, `<a href="x?a=1&amp;b=2">x?a=1&amp;b=2</a>`, clickMarkup("x?a=1&b=2"))
	assert.Equal(t, `<span>raw</span>`, clickMarkup(`<span>raw</span>`))
}

func TestViewOfIdle(t *testing.T) {
	assert.Equal(t, stateView{Phase: "idle"}, viewOf(domain.ResolutionState{}))
}
