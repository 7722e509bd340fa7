package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reset the camera on map changes",
	Long: `Poll the host's current map and, whenever it changes, refresh the camera
mount directory and switch back to the default viewpoint. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := e.app.Directory().Refresh(ctx); err != nil {
		e.logger.Warn("initial camera mount load failed", "error", err)
	}

	e.logger.Info("watching for map changes", "host", e.cfg.Host.BaseURL, "interval", e.cfg.Poll.Interval)
	e.app.Poller().Run(ctx)
	return nil
}
