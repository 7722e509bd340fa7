package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glassbreakers/glasspanel/internal/config"
	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/logging"
	"github.com/glassbreakers/glasspanel/internal/panel"
	"github.com/glassbreakers/glasspanel/internal/prefs"
)

var (
	cfgFile   string
	debug     bool
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   "glasspanel",
	Short: "Glasspanel - spectator camera control panel",
	Long: `Glasspanel drives the spectator camera of a running game through the
game's local HTTP control API.

Serve the panel and watch for map changes:
  glasspanel serve

List camera mounts grouped by map:
  glasspanel mounts list

Tune the spectator camera:
  glasspanel settings set fov 95
  glasspanel settings set overlay/enabled true`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.glasspanel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
}

// env is everything a subcommand needs to talk to the host
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	app    *panel.App
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	logger.Debug("config loaded", "host", cfg.Host.BaseURL, "timeout", cfg.Host.Timeout)

	client, err := hostapi.New(cfg.Host.BaseURL, cfg.Host.Timeout, hostapi.WithLogger(logger.With("component", "hostapi")))
	if err != nil {
		return nil, err
	}

	store, err := prefs.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to access preferences: %w", err)
	}

	app := panel.New(panel.Options{
		Config: cfg,
		Host:   client,
		Prefs:  store,
		Logger: logger,
		Alert: func(message string) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", message)
		},
	})

	return &env{cfg: cfg, logger: logger, app: app}, nil
}

// confirmer asks on the command's terminal, or says yes when --yes is set
func confirmer(cmd *cobra.Command) func(string) bool {
	return func(message string) bool {
		if assumeYes {
			return true
		}
		return promptYes(cmd.InOrStdin(), cmd.ErrOrStderr(), message)
	}
}

func promptYes(in io.Reader, out io.Writer, message string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", message)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// printStatus echoes the panel's status line, if an action set one
func printStatus(cmd *cobra.Command, app *panel.App) {
	line, isErr := app.Status()
	if line == "" {
		return
	}
	if isErr {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), line)
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
}

func printCanceled(cmd *cobra.Command) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
}
