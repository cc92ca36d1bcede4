package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/usecase"
)

var resolveHTML bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <href>",
	Short: "Resolve a link and print the resulting state as JSON",
	Long: `Simulate a click on a link and wait until its content and title are
loaded or the resolution fails.

Example:
  helpsresolver resolve 'rc://*/ta/man/translate/translate-names'
  helpsresolver resolve ../kt/grace.md
  helpsresolver resolve --html '<a href="../kt/grace.md">grace</a>'`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveHTML, "html", false, "treat the argument as the clicked element's markup")
	rootCmd.AddCommand(resolveCmd)
}

type resolveView struct {
	State   stateView    `json:"state"`
	Failure *failureView `json:"failure,omitempty"`
}

type failureView struct {
	Kind       string   `json:"kind"`
	Link       string   `json:"link"`
	URLs       []string `json:"urls,omitempty"`
	HTTPStatus int      `json:"httpStatus,omitempty"`
	Message    string   `json:"message"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, err := newApplication(ctx, nil)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	var (
		state   domain.ResolutionState
		outcome usecase.Outcome
	)
	input := strings.TrimSpace(args[0])
	if resolveHTML {
		state, outcome, err = application.Resolve(ctx, input)
	} else {
		state, outcome, err = application.ResolveHref(ctx, input)
	}
	if err != nil {
		return err
	}

	view := resolveView{State: viewOf(state)}
	if ferr := outcome.Err; ferr != nil {
		view.Failure = &failureView{
			Kind:       string(ferr.Kind),
			Link:       ferr.Link,
			URLs:       ferr.AttemptedURLs,
			HTTPStatus: ferr.HTTPStatus,
			Message:    ferr.Error(),
		}
	}
	if err := writeJSON(cmd.OutOrStdout(), view); err != nil {
		return err
	}

	if outcome.Err != nil {
		return fmt.Errorf("resolution failed: %w", outcome.Err)
	}
	return nil
}
