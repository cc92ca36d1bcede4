package cmd

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <href>",
	Short: "Classify a link and print the URLs it would fetch",
	Long: `Classify a link and compute its content and title URLs without
touching the network.

Example:
  helpsresolver plan 'rc://*/ta/man/translate/translate-names'
  helpsresolver plan --ta-article checking ../acceptable/01.md`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

type planView struct {
	Category     string `json:"category"`
	LanguageID   string `json:"languageId,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
	FilePath     string `json:"filePath,omitempty"`
	DerivedTitle string `json:"derivedTitle,omitempty"`
	ContentURL   string `json:"contentUrl,omitempty"`
	TitleURL     string `json:"titleUrl,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer application.Close(cmd.Context())

	desc, plan := application.Plan(args[0])
	return writeJSON(cmd.OutOrStdout(), planView{
		Category:     desc.Category.String(),
		LanguageID:   desc.LanguageID,
		ResourceID:   desc.ResourceID,
		FilePath:     desc.FilePath,
		DerivedTitle: desc.DerivedTitle,
		ContentURL:   plan.ContentURL,
		TitleURL:     plan.TitleURL,
	})
}
