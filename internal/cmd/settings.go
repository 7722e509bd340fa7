package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change spectator settings",
	Long: `Read and change the settings the host exposes for the spectator camera,
the in-game overlay and the streamer tools.

Settings are named <group>/<name>; a bare name refers to the spectator group.

Examples:
  glasspanel settings list
  glasspanel settings set fov 95
  glasspanel settings set overlay/enabled false`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting and its current value",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsSetCmd)
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SETTING\tKIND\tVALUE")
	_, _ = fmt.Fprintln(w, "-------\t----\t-----")

	failed := 0
	for _, b := range e.app.Bindings() {
		value, err := e.app.ReadSetting(cmd.Context(), b.Key())
		if err != nil {
			e.logger.Debug("failed to read setting", "setting", b.Key(), "error", err)
			value = "(unavailable)"
			failed++
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", b.Key(), b.Kind, value)
	}
	_ = w.Flush()

	if failed == len(e.app.Bindings()) {
		return fmt.Errorf("no settings could be read from %s", e.cfg.Host.BaseURL)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	if _, err := e.app.Setting(args[0]); err != nil {
		return fmt.Errorf("%w (known settings: see 'glasspanel settings list')", err)
	}

	err = e.app.UpdateSetting(cmd.Context(), args[0], args[1])
	printStatus(cmd, e.app)
	return err
}
