package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/mounts"
)

var mountsCmd = &cobra.Command{
	Use:     "mounts",
	Aliases: []string{"mount", "cameras"},
	Short:   "Manage camera mounts",
	Long: `Manage the camera mounts stored by the host.

Commands:
  list      List camera mounts grouped by map
  current   Show the active camera mount
  select    Activate a camera mount by id
  default   Activate the default viewpoint
  rename    Rename a camera mount
  delete    Delete a camera mount
  create    Create a camera mount at the current camera position
  next      Activate the next camera mount
  previous  Activate the previous camera mount

Examples:
  glasspanel mounts list
  glasspanel mounts rename 4 "North Gate"
  glasspanel mounts delete 4 --yes`,
}

var mountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List camera mounts grouped by map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		snap, err := e.app.Directory().Refresh(cmd.Context())
		if err != nil {
			return err
		}
		mounts.PrintSnapshot(cmd.OutOrStdout(), snap, e.app.Directory().DefaultViewpoint())
		return nil
	},
}

var mountsCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active camera mount",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		name, err := e.app.Directory().RefreshCurrentName(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch current camera mount: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var mountsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Activate a camera mount by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		dir := e.app.Directory()
		if err := dir.Select(cmd.Context(), dir.Lookup(cmd.Context(), args[0])); err != nil {
			return fmt.Errorf("failed to select camera mount %s: %w", args[0], err)
		}
		printActive(cmd, e)
		return nil
	},
}

var mountsDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Activate the default viewpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		if err := e.app.Directory().SelectDefault(cmd.Context()); err != nil {
			return fmt.Errorf("failed to select %s: %w", e.app.Directory().DefaultViewpoint(), err)
		}
		printActive(cmd, e)
		return nil
	},
}

var mountsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a camera mount",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		dir := e.app.Directory()
		if err := dir.Rename(cmd.Context(), dir.Lookup(cmd.Context(), args[0]), name); err != nil {
			return fmt.Errorf("failed to rename camera mount %s: %w", args[0], err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed camera mount %s to %q\n", args[0], name)
		return nil
	},
}

var mountsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a camera mount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		// The confirmation prompt is localized
		if err := e.app.ApplyPreferredLanguage(cmd.Context()); err != nil {
			e.logger.Debug("confirmation prompt stays untranslated", "error", err)
		}

		dir := e.app.Directory()
		err = dir.Delete(cmd.Context(), dir.Lookup(cmd.Context(), args[0]), confirmer(cmd))
		if errors.Is(err, mounts.ErrCanceled) {
			printCanceled(cmd)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to delete camera mount %s: %w", args[0], err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted camera mount %s\n", args[0])
		return nil
	},
}

var mountsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a camera mount at the current camera position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		confirmation, err := e.app.Directory().Create(cmd.Context())
		if err != nil {
			// The alerter has already printed the failure
			return errors.New("camera mount not created")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), confirmation)
		return nil
	},
}

func cycleCommand(dir hostapi.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir),
		Short: fmt.Sprintf("Activate the %s camera mount", dir),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			err = e.app.Directory().Cycle(cmd.Context(), dir)
			printStatus(cmd, e.app)
			if err != nil {
				return err
			}
			printActive(cmd, e)
			return nil
		},
	}
}

// printActive shows the mount name the last action left active
func printActive(cmd *cobra.Command, e *env) {
	el, ok := e.app.Document().Get(mounts.CurrentNameID)
	if !ok || el.Text == "" {
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active camera mount: %s\n", el.Text)
}

func init() {
	rootCmd.AddCommand(mountsCmd)
	mountsCmd.AddCommand(
		mountsListCmd,
		mountsCurrentCmd,
		mountsSelectCmd,
		mountsDefaultCmd,
		mountsRenameCmd,
		mountsDeleteCmd,
		mountsCreateCmd,
		cycleCommand(hostapi.Next),
		cycleCommand(hostapi.Previous),
	)
}
