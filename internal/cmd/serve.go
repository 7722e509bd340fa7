package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glassbreakers/glasspanel/internal/panel"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the control panel",
	Long: `Load the panel state from the host, then serve it over a local HTTP API
while polling the host for map changes.

The panel answers on panel.listen (default 127.0.0.1:7420):
  GET    /api/document
  POST   /api/mounts/refresh
  POST   /api/mounts
  POST   /api/mounts/{id}/select
  PATCH  /api/mounts/{id}
  DELETE /api/mounts/{id}
  POST   /api/mounts/default
  POST   /api/mounts/cycle/{previous|next}
  POST   /api/settings/{group}/{name}
  POST   /api/language/{code}
  POST   /api/streamer/reset`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "address to listen on (overrides panel.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The host may not be up yet; the poller and the routes recover later
	if err := e.app.Start(ctx); err != nil {
		e.logger.Warn("initial camera mount load failed", "error", err)
	}

	addr := e.cfg.Panel.Listen
	if serveListen != "" {
		addr = serveListen
	}

	srv := panel.NewServer(e.app, e.logger.With("component", "panel"))
	if err := srv.Serve(ctx, addr); err != nil {
		return fmt.Errorf("failed to serve panel: %w", err)
	}
	return nil
}
