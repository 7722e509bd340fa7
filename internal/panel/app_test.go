package panel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassbreakers/glasspanel/internal/config"
	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/logging"
	"github.com/glassbreakers/glasspanel/internal/mounts"
	"github.com/glassbreakers/glasspanel/internal/poller"
	"github.com/glassbreakers/glasspanel/internal/prefs"
	"github.com/glassbreakers/glasspanel/internal/settings"
)

type hostCall struct {
	method string
	path   string
	body   string
}

type gameMount struct {
	ID   int    `json:"-"`
	Name string `json:"name"`
	Map  string `json:"map"`
}

// gameHost is an in-memory stand-in for the game's control API
type gameHost struct {
	mu       sync.Mutex
	mounts   []gameMount
	values   map[string]string
	current  string
	mapName  string
	nextID   int
	reply    string
	failures map[string]int
	calls    []hostCall
}

func newGameHost() *gameHost {
	return &gameHost{
		mounts: []gameMount{
			{ID: 1, Name: "Bridge", Map: "harbor"},
			{ID: 2, Name: "Tower", Map: "airfield"},
		},
		values: map[string]string{
			"spectator/enabled":                  "true",
			"spectator/fov":                      "90",
			"spectator/auto_focus":               "False",
			"spectator/camera_mounts_hidden":     "false",
			"overlay/enabled":                    "TRUE",
			"streamer_tools/auto_launch_enabled": "false",
		},
		current:  "Player PoV",
		mapName:  "harbor",
		nextID:   3,
		reply:    `{"reset":true}`,
		failures: map[string]int{},
	}
}

func (g *gameHost) Calls() []hostCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]hostCall(nil), g.calls...)
}

func (g *gameHost) count(method, path string) int {
	n := 0
	for _, c := range g.Calls() {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func (g *gameHost) set(key, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[key] = value
}

func (g *gameHost) value(key string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.values[key]
}

func (g *gameHost) fail(path string, code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[path] = code
}

func (g *gameHost) find(id string) int {
	for i, m := range g.mounts {
		if strconv.Itoa(m.ID) == id {
			return i
		}
	}
	return -1
}

func (g *gameHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, hostCall{method: r.Method, path: r.URL.Path, body: string(body)})

	if code := g.failures[r.URL.Path]; code != 0 {
		http.Error(w, "scripted failure", code)
		return
	}

	switch r.URL.Path {
	case "/camera_mount/fetch_ids":
		ids := make([]int, 0, len(g.mounts))
		for _, m := range g.mounts {
			ids = append(ids, m.ID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"camera_ids": ids})
	case "/camera_mount/get_info":
		i := g.find(r.URL.Query().Get("id"))
		if i < 0 {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(g.mounts[i])
	case "/camera_mount/modify":
		var req struct {
			ID   json.Number `json:"id"`
			Info gameMount   `json:"info"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if i := g.find(req.ID.String()); i >= 0 {
			g.mounts[i].Name, g.mounts[i].Map = req.Info.Name, req.Info.Map
		}
	case "/camera_mount/delete":
		if i := g.find(r.URL.Query().Get("id")); i >= 0 {
			g.mounts = append(g.mounts[:i], g.mounts[i+1:]...)
		}
	case "/camera_mount/create":
		g.mounts = append(g.mounts, gameMount{ID: g.nextID, Map: g.mapName})
		g.nextID++
		_, _ = io.WriteString(w, "Camera mount created")
	case "/camera_mount/set_current_by_name", "/camera_mount/set_current_by_id":
		g.current = string(body)
	case "/camera_mount/get_current_name":
		_, _ = io.WriteString(w, g.current+"\n")
	case "/camera_mount/cycle_next", "/camera_mount/cycle_previous":
	case "/spectator/get_current_map_name":
		_, _ = io.WriteString(w, g.mapName)
	case "/streamer_tools/reset_to_defaults":
		g.values["spectator/fov"] = "90"
		_, _ = io.WriteString(w, g.reply)
	default:
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		group, op := parts[0], parts[1]
		switch {
		case strings.HasPrefix(op, "get_"):
			v, ok := g.values[group+"/"+strings.TrimPrefix(op, "get_")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, v)
		case strings.HasPrefix(op, "set_") && r.Method == http.MethodPost:
			g.values[group+"/"+strings.TrimPrefix(op, "set_")] = string(body)
		default:
			http.NotFound(w, r)
		}
	}
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Host:   config.Host{BaseURL: baseURL, Timeout: 2 * time.Second},
		Poll:   config.Poll{Interval: time.Second},
		Panel:  config.Panel{Listen: "127.0.0.1:0"},
		Locale: config.Locale{Default: "en"},
		Mounts: config.Mounts{DefaultViewpoint: "Player PoV"},
		Log:    config.Log{Level: "info", Format: "text"},
	}
}

func newTestApp(t *testing.T) (*App, *gameHost, *prefs.Store, *[]string) {
	t.Helper()

	game := newGameHost()
	srv := httptest.NewServer(game)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	client, err := hostapi.New(cfg.Host.BaseURL, cfg.Host.Timeout, hostapi.WithLogger(logging.Discard()))
	require.NoError(t, err)

	store, err := prefs.NewStoreAt(t.TempDir())
	require.NoError(t, err)

	var alerts []string
	app := New(Options{
		Config: cfg,
		Host:   client,
		Prefs:  store,
		Logger: logging.Discard(),
		Alert:  func(message string) { alerts = append(alerts, message) },
	})
	return app, game, store, &alerts
}

func TestStartLoadsPanel(t *testing.T) {
	app, game, store, _ := newTestApp(t)

	require.NoError(t, app.Start(context.Background()))
	doc := app.Document()

	title, _ := doc.Get(TitleID)
	assert.Equal(t, "Spectator Control Panel", title.Text)

	current, _ := doc.Get(mounts.CurrentNameID)
	assert.Equal(t, "Player PoV", current.Text)

	enabled, _ := doc.Get("cameraEnabledCheckbox")
	assert.True(t, enabled.Checked)
	focus, _ := doc.Get("autoFocusCheckbox")
	assert.False(t, focus.Checked)
	overlay, _ := doc.Get("overlayEnabledCheckbox")
	assert.True(t, overlay.Checked)

	fov, _ := doc.Get("fov")
	assert.Equal(t, "90", fov.Value)
	fovDisplay, _ := doc.Get("fovValue")
	assert.Equal(t, "90", fovDisplay.Text)

	// Settings the host does not know are skipped, the rest still load
	assert.Equal(t, 1, game.count(http.MethodGet, "/spectator/get_gamma"))

	list, _ := doc.Get(mounts.ListID)
	require.Len(t, list.Children, 4)
	assert.Equal(t, "airfield", list.Children[0].Text)
	assert.Equal(t, "harbor", list.Children[2].Text)
	assert.True(t, doc.Has(mounts.EntryID(hostapi.NumberID(1))))
	assert.True(t, doc.Has(mounts.EntryID(hostapi.NumberID(2))))

	assert.Equal(t, "en", store.PreferredLanguage())
}

func TestStartUsesPreferredLanguage(t *testing.T) {
	app, _, store, _ := newTestApp(t)
	require.NoError(t, store.SetPreferredLanguage("de"))

	require.NoError(t, app.Start(context.Background()))

	title, _ := app.Document().Get(TitleID)
	assert.Equal(t, "Zuschauer-Steuerung", title.Text)
	assert.Equal(t, "de", app.Catalog().Code())
}

func TestStartHideMountsDisablesCreate(t *testing.T) {
	app, game, _, _ := newTestApp(t)
	game.set("spectator/camera_mounts_hidden", "true")

	require.NoError(t, app.Start(context.Background()))

	add, _ := app.Document().Get(settings.AddMountButtonID)
	assert.True(t, add.Disabled)
}

func TestUpdateSetting(t *testing.T) {
	ctx := context.Background()

	t.Run("one post with the decimal text", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)

		require.NoError(t, app.UpdateSetting(ctx, "fov", "95"))

		var posts []hostCall
		for _, c := range game.Calls() {
			if c.path == "/spectator/set_fov" {
				posts = append(posts, c)
			}
		}
		require.Len(t, posts, 1)
		assert.Equal(t, http.MethodPost, posts[0].method)
		assert.Equal(t, "95", posts[0].body)

		line, isErr := app.Status()
		assert.Equal(t, "Updated fov", line)
		assert.False(t, isErr)
	})

	t.Run("host failure reports once without retry", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)
		game.fail("/spectator/set_fov", http.StatusInternalServerError)

		err := app.UpdateSetting(ctx, "spectator/fov", "95")
		var statusErr *hostapi.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)

		assert.Equal(t, 1, game.count(http.MethodPost, "/spectator/set_fov"))
		line, isErr := app.Status()
		assert.Equal(t, "Failed to update fov", line)
		assert.True(t, isErr)
	})

	t.Run("spectator enabled messages", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		require.NoError(t, app.UpdateSetting(ctx, "spectator/enabled", "false"))
		line, _ := app.Status()
		assert.Equal(t, "Spectator camera disabled", line)
	})

	t.Run("quiet binding leaves the status line alone", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)

		require.NoError(t, app.UpdateSetting(ctx, "streamer_tools/auto_launch_enabled", "true"))
		line, _ := app.Status()
		assert.Empty(t, line)
		assert.Equal(t, "true", game.value("streamer_tools/auto_launch_enabled"))
	})

	t.Run("unknown and malformed", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)

		assert.ErrorIs(t, app.UpdateSetting(ctx, "spectator/warp_drive", "1"), ErrUnknownSetting)
		assert.Error(t, app.UpdateSetting(ctx, "spectator/auto_focus", "maybe"))
		assert.Empty(t, game.Calls())
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)
		require.NoError(t, app.Start(ctx))

		var asked string
		_, err := app.Reset(ctx, func(message string) bool {
			asked = message
			return false
		})
		assert.ErrorIs(t, err, mounts.ErrCanceled)
		assert.Equal(t, "Reset all settings to their defaults?", asked)
		assert.Zero(t, game.count(http.MethodPost, "/streamer_tools/reset_to_defaults"))
	})

	t.Run("confirmed reloads the panel", func(t *testing.T) {
		app, game, _, _ := newTestApp(t)
		require.NoError(t, app.Start(ctx))
		require.NoError(t, app.UpdateSetting(ctx, "fov", "120"))

		result, err := app.Reset(ctx, func(string) bool { return true })
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"reset": true}, result)

		calls := game.Calls()
		var reset hostCall
		for _, c := range calls {
			if c.path == "/streamer_tools/reset_to_defaults" {
				reset = c
			}
		}
		assert.Equal(t, "{}", reset.body)
		assert.Equal(t, 2, game.count(http.MethodGet, "/camera_mount/fetch_ids"))

		fov, _ := app.Document().Get("fov")
		assert.Equal(t, "90", fov.Value)
	})

	t.Run("non-object reply succeeds", func(t *testing.T) {
		for _, tt := range []struct {
			reply string
			want  any
		}{
			{`true`, true},
			{`"ok"`, "ok"},
		} {
			app, game, _, alerts := newTestApp(t)
			game.mu.Lock()
			game.reply = tt.reply
			game.mu.Unlock()

			result, err := app.Reset(ctx, func(string) bool { return true })
			require.NoError(t, err, tt.reply)
			assert.Equal(t, tt.want, result)
			assert.Empty(t, *alerts)
		}
	})

	t.Run("failed reload after reset is not an error", func(t *testing.T) {
		app, game, _, alerts := newTestApp(t)
		require.NoError(t, app.Start(ctx))
		game.fail("/camera_mount/fetch_ids", http.StatusInternalServerError)

		result, err := app.Reset(ctx, func(string) bool { return true })
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"reset": true}, result)
		assert.Empty(t, *alerts)
		assert.Equal(t, "90", game.value("spectator/fov"))
	})

	t.Run("failure alerts", func(t *testing.T) {
		app, game, _, alerts := newTestApp(t)
		game.fail("/streamer_tools/reset_to_defaults", http.StatusServiceUnavailable)

		_, err := app.Reset(ctx, func(string) bool { return true })
		assert.Error(t, err)
		assert.Equal(t, []string{"Failed to reset settings to defaults. Please try again."}, *alerts)
		assert.Zero(t, game.count(http.MethodGet, "/camera_mount/fetch_ids"))
	})
}

func TestMapChangeResetsDirectory(t *testing.T) {
	app, game, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Start(ctx))

	assert.Equal(t, poller.Baseline, app.Poller().Check(ctx))

	game.mu.Lock()
	game.mapName = "airfield"
	game.current = "Tower"
	game.mu.Unlock()

	assert.Equal(t, poller.Changed, app.Poller().Check(ctx))
	assert.Equal(t, 2, game.count(http.MethodGet, "/camera_mount/fetch_ids"))

	current, _ := app.Document().Get(mounts.CurrentNameID)
	assert.Equal(t, "Player PoV", current.Text)
}
