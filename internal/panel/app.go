// Package panel owns the application state of the control panel and serves
// it over a small local HTTP API.
//
// App is the single owner of every piece of mutable panel state: the element
// tree, the active string table, the refresh guard and the map baseline all
// live in the components it creates and are reached only through it.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glassbreakers/glasspanel/internal/config"
	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/locale"
	"github.com/glassbreakers/glasspanel/internal/mounts"
	"github.com/glassbreakers/glasspanel/internal/poller"
	"github.com/glassbreakers/glasspanel/internal/settings"
	"github.com/glassbreakers/glasspanel/internal/status"
	"github.com/glassbreakers/glasspanel/internal/view"
)

const keyResetConfirm = "reset_confirm"

// ErrUnknownSetting is returned for a setting key no binding matches
var ErrUnknownSetting = errors.New("unknown setting")

// Host is the host API surface the panel drives
type Host interface {
	mounts.Client
	settings.Client
	poller.MapSource
	locale.TableFetcher
	ResetToDefaults(ctx context.Context) (any, error)
}

// Preferences stores the language chosen in a previous session
type Preferences interface {
	locale.PreferenceStore
	PreferredLanguage() string
}

// Options configures an App
type Options struct {
	Config *config.Config
	Host   Host
	Prefs  Preferences
	Logger *slog.Logger

	// Alert shows blocking error messages. Defaults to logging them.
	Alert mounts.Alerter
}

// App is the panel's application state
type App struct {
	cfg    *config.Config
	host   Host
	prefs  Preferences
	logger *slog.Logger
	alert  mounts.Alerter

	doc       *view.Document
	catalog   *locale.Catalog
	reporter  *status.Reporter
	settings  *settings.Synchronizer
	directory *mounts.Directory
	poller    *poller.Poller
	bindings  []settings.Binding
}

// New wires every panel component around one document
func New(opts Options) *App {
	logger := opts.Logger
	alert := opts.Alert
	if alert == nil {
		alert = func(message string) { logger.Error(message) }
	}

	doc := NewLayout()
	catalog := locale.NewCatalog(tableSource(opts.Config, opts.Host), opts.Config.Locale.Default, logger.With("component", "locale"))
	reporter := status.NewReporter(doc, logger.With("component", "status"))

	directory := mounts.NewDirectory(mounts.Options{
		Client:           opts.Host,
		Document:         doc,
		Text:             catalog,
		Reporter:         reporter,
		Logger:           logger.With("component", "mounts"),
		DefaultViewpoint: opts.Config.Mounts.DefaultViewpoint,
		Alert:            alert,
	})

	return &App{
		cfg:       opts.Config,
		host:      opts.Host,
		prefs:     opts.Prefs,
		logger:    logger,
		alert:     alert,
		doc:       doc,
		catalog:   catalog,
		reporter:  reporter,
		settings:  settings.NewSynchronizer(opts.Host, doc, reporter, logger.With("component", "settings")),
		directory: directory,
		poller:    poller.New(opts.Host, directory, opts.Config.Poll.Interval, logger.With("component", "poller")),
		bindings:  settings.All(),
	}
}

// tableSource orders the string table sources: a configured directory,
// then the host, then the tables compiled into the binary.
func tableSource(cfg *config.Config, fetcher locale.TableFetcher) locale.Source {
	var chain locale.Chain
	if cfg.Locale.Dir != "" {
		chain = append(chain, locale.DirSource(cfg.Locale.Dir))
	}
	if cfg.Locale.ShouldFetchRemote() {
		chain = append(chain, locale.NewHostSource(fetcher))
	}
	return append(chain, locale.Embedded())
}

func (a *App) Document() *view.Document     { return a.doc }
func (a *App) Directory() *mounts.Directory { return a.directory }
func (a *App) Poller() *poller.Poller       { return a.poller }
func (a *App) Catalog() *locale.Catalog     { return a.catalog }
func (a *App) Bindings() []settings.Binding { return a.bindings }

// Start performs the initial load: language, current mount, settings and
// the mount directory. Individual failures are logged and shown in the
// document; Start only fails when the directory cannot be listed.
func (a *App) Start(ctx context.Context) error {
	if err := a.ApplyPreferredLanguage(ctx); err != nil {
		a.logger.Warn("panel text stays untranslated", "error", err)
	}

	_, _ = a.directory.RefreshCurrentName(ctx)

	result := a.settings.LoadAll(ctx, a.bindings)
	a.logger.Debug("settings loaded", "loaded", len(result.Loaded), "skipped", len(result.Skipped))

	if _, err := a.directory.Refresh(ctx); err != nil && !errors.Is(err, mounts.ErrRefreshInProgress) {
		return err
	}
	return nil
}

// ApplyPreferredLanguage applies the language saved by a previous session,
// or the configured default when there is none.
func (a *App) ApplyPreferredLanguage(ctx context.Context) error {
	code := a.cfg.Locale.Default
	if a.prefs != nil {
		if preferred := a.prefs.PreferredLanguage(); preferred != "" {
			code = preferred
		}
	}
	return a.catalog.Apply(ctx, code, a.doc, a.prefs)
}

// SetLanguage switches the panel language and remembers it
func (a *App) SetLanguage(ctx context.Context, code string) error {
	return a.catalog.Apply(ctx, code, a.doc, a.prefs)
}

// Setting returns the binding for a "<group>/<name>" key
func (a *App) Setting(key string) (settings.Binding, error) {
	b, ok := settings.FindKey(a.bindings, key)
	if !ok {
		return settings.Binding{}, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return b, nil
}

// UpdateSetting parses raw for the binding at key and sends it to the host
func (a *App) UpdateSetting(ctx context.Context, key, raw string) error {
	b, err := a.Setting(key)
	if err != nil {
		return err
	}
	value, err := settings.ParseValue(b, raw)
	if err != nil {
		return err
	}
	return a.settings.Update(ctx, b, value)
}

// ReadSetting fetches the current host value of the binding at key
func (a *App) ReadSetting(ctx context.Context, key string) (string, error) {
	b, err := a.Setting(key)
	if err != nil {
		return "", err
	}
	return a.host.GetSetting(ctx, b.Group, b.Name)
}

// Reset asks for confirmation, restores the host's streamer defaults and
// reloads the whole panel. Once the host has reset, a failed reload is logged
// and the reset still succeeds.
func (a *App) Reset(ctx context.Context, confirm mounts.Confirmer) (any, error) {
	if !confirm(a.catalog.Resolve(keyResetConfirm)) {
		return nil, mounts.ErrCanceled
	}

	result, err := a.host.ResetToDefaults(ctx)
	if err != nil {
		a.logger.Error("error resetting to defaults", "error", err)
		a.alert("Failed to reset settings to defaults. Please try again.")
		return nil, err
	}
	a.logger.Info("settings reset to defaults", "result", result)

	if err := a.Start(ctx); err != nil {
		a.logger.Error("error reloading panel after reset", "error", err)
	}
	return result, nil
}

// Status returns the current status line and whether it reports an error
func (a *App) Status() (string, bool) {
	el, ok := a.doc.Get(status.ElementID)
	if !ok {
		return "", false
	}
	return el.Text, el.Color == status.ColorError
}

// compile-time check that the real client satisfies Host
var _ Host = (*hostapi.Client)(nil)
