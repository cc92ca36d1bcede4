package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var errorsLimit int

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List recently reported resolution failures",
	Long: `List the newest records of the Postgres error journal. Requires
DATABASE_DSN or database.dsn in the config file.`,
	Args: cobra.NoArgs,
	RunE: runErrors,
}

func init() {
	errorsCmd.Flags().IntVarP(&errorsLimit, "limit", "n", 20, "number of records to show")
	rootCmd.AddCommand(errorsCmd)
}

type errorView struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Link       string    `json:"link"`
	URLs       []string  `json:"urls,omitempty"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func runErrors(cmd *cobra.Command, _ []string) error {
	application, err := newApplication(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer application.Close(cmd.Context())

	records, err := application.RecentErrors(cmd.Context(), errorsLimit)
	if err != nil {
		return err
	}

	views := make([]errorView, 0, len(records))
	for _, rec := range records {
		views = append(views, errorView{
			ID:         rec.ID.String(),
			Kind:       string(rec.Kind),
			Link:       rec.Link,
			URLs:       rec.AttemptedURLs,
			HTTPStatus: rec.HTTPStatus,
			Message:    rec.Message,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return writeJSON(cmd.OutOrStdout(), views)
}
