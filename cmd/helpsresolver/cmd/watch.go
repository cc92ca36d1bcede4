package cmd

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/infrastructure/events"
	"HelpsResolver/internal/ports"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Read clicks from stdin and print every state change",
	Long: `Read one click per line from stdin. A line starting with '<' is the
clicked element's markup, anything else is a bare href. Every state transition
is printed as JSON; a newer click supersedes one still loading.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var mu sync.Mutex
	printState := func(s domain.ResolutionState) {
		mu.Lock()
		defer mu.Unlock()
		_ = writeJSON(out, viewOf(s))
	}

	application, err := newApplication(ctx, printState)
	if err != nil {
		return err
	}

	clicks := make(chan ports.Event)
	if err := application.Listen(ctx, clicks); err != nil {
		_ = application.Close(context.Background())
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case clicks <- events.NewClick(clickMarkup(line)):
		case <-ctx.Done():
			return application.Close(context.Background())
		}
	}
	scanErr := scanner.Err()

	drainErr := application.Drain(ctx)
	if err := application.Close(context.Background()); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("read clicks: %w", scanErr)
	}
	return drainErr
}

func clickMarkup(line string) string {
	if strings.HasPrefix(line, "<") {
		return line
	}
	escaped := html.EscapeString(line)
	return `<a href="` + escaped + `">` + escaped + `</a>`
}
