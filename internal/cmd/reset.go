package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/glassbreakers/glasspanel/internal/mounts"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset streamer settings to their defaults",
	Long: `Ask the host to restore every setting to its default value, then reload
the panel state.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	if err := e.app.ApplyPreferredLanguage(cmd.Context()); err != nil {
		e.logger.Debug("confirmation prompt stays untranslated", "error", err)
	}

	result, err := e.app.Reset(cmd.Context(), confirmer(cmd))
	if errors.Is(err, mounts.ErrCanceled) {
		printCanceled(cmd)
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults.")
	printReport(cmd.OutOrStdout(), result)
	return nil
}

// printReport writes the host's reset report, one line per field when it is
// an object.
func printReport(w io.Writer, result any) {
	switch report := result.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(report))
		for k := range report {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, report[k])
		}
	default:
		_, _ = fmt.Fprintf(w, "  %v\n", report)
	}
}
