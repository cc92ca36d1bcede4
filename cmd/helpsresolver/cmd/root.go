// Package cmd contains all CLI commands for the helpsresolver tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"HelpsResolver/internal/app"
	"HelpsResolver/internal/config"
	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/logging"
)

// rootOverrides holds the persistent flag values layered over the loaded config.
type rootOverrides struct {
	server    string
	owner     string
	branch    string
	language  string
	taArticle string
	base      string
	timeout   time.Duration
	logLevel  string
}

var overrides rootOverrides

var rootCmd = &cobra.Command{
	Use:   "helpsresolver",
	Short: "Resolve translation-helps links to their content",
	Long: `helpsresolver classifies translation-helps links (Translation Academy
manual articles, same-article references and Translation Words entries),
computes their raw file URLs on a Door43 server and fetches content and title.

Configuration comes from $HELPS_RESOLVER_CONFIG (YAML), environment variables
and the flags below, in increasing priority.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel in-flight resolutions.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&overrides.server, "server", "", "content server base URL")
	flags.StringVar(&overrides.owner, "owner", "", "repository owner on the server")
	flags.StringVar(&overrides.branch, "branch", "", "repository branch")
	flags.StringVar(&overrides.language, "lang", "", "language id used for rc://* and relative links")
	flags.StringVar(&overrides.taArticle, "ta-article", "", "Translation Academy project of the current article")
	flags.StringVar(&overrides.base, "base", "", "document URL relative hrefs resolve against")
	flags.DurationVar(&overrides.timeout, "timeout", 0, "per-request timeout (0 means none)")
	flags.StringVar(&overrides.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func loadConfig() config.Config {
	cfg := config.Load()
	if overrides.server != "" {
		cfg.Door43.Server = overrides.server
	}
	if overrides.owner != "" {
		cfg.Door43.Owner = overrides.owner
	}
	if overrides.branch != "" {
		cfg.Door43.Branch = overrides.branch
	}
	if overrides.language != "" {
		cfg.Resolver.LanguageID = overrides.language
	}
	if overrides.taArticle != "" {
		cfg.Resolver.TAArticleProjectID = overrides.taArticle
	}
	if overrides.base != "" {
		cfg.Resolver.DocumentBase = overrides.base
	}
	if overrides.timeout > 0 {
		cfg.Resolver.Timeout = overrides.timeout
	}
	if overrides.logLevel != "" {
		cfg.Logging.Level = overrides.logLevel
	}
	return cfg
}

func newApplication(ctx context.Context, onState func(domain.ResolutionState)) (*app.Application, error) {
	cfg := loadConfig()
	application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level), onState)
	if err != nil {
		return nil, fmt.Errorf("start resolver: %w", err)
	}
	return application, nil
}

// stateView is the JSON shape printed for a resolution state.
type stateView struct {
	Phase   string `json:"phase"`
	Link    string `json:"link,omitempty"`
	Loading bool   `json:"loading"`
	Error   bool   `json:"error"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

func viewOf(s domain.ResolutionState) stateView {
	phase := string(s.Phase)
	if s.Idle() {
		phase = "idle"
	}
	return stateView{
		Phase:   phase,
		Link:    s.Link,
		Loading: s.Loading,
		Error:   s.Error,
		Title:   s.Title,
		Content: s.Content,
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
