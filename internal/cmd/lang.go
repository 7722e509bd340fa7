package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var langCmd = &cobra.Command{
	Use:   "lang <code>",
	Short: "Set the panel language",
	Long: `Set the language of the panel and remember it for the next session.

Unknown languages fall back to locale.default.`,
	Args: cobra.ExactArgs(1),
	RunE: runLang,
}

func init() {
	rootCmd.AddCommand(langCmd)
}

func runLang(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	if err := e.app.SetLanguage(cmd.Context(), args[0]); err != nil {
		return err
	}

	active := e.app.Catalog().Code()
	if active != args[0] {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No string table for %q, using %q\n", args[0], active)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Language set to %s: %s\n", active, e.app.Catalog().Resolve("title"))
	return nil
}
