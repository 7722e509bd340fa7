package panel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/logging"
	"github.com/glassbreakers/glasspanel/internal/mounts"
)

func newTestServer(t *testing.T) (*httptest.Server, *App, *gameHost) {
	t.Helper()

	app, game, _, _ := newTestApp(t)
	require.NoError(t, app.Start(context.Background()))

	srv := httptest.NewServer(NewServer(app, logging.Discard()).Handler())
	t.Cleanup(srv.Close)
	return srv, app, game
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, Result) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result Result
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &result), string(data))
	return resp, result
}

func TestDocumentRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/document")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(hostapi.RequestIDHeader))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), mounts.ListID)
	assert.Contains(t, string(data), "Bridge")
}

func TestSettingRoute(t *testing.T) {
	srv, _, game := newTestServer(t)

	resp, result := call(t, srv, http.MethodPost, "/api/settings/spectator/fov", "95")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.OK)
	assert.Equal(t, "Updated fov", result.Status)
	assert.Equal(t, "95", game.value("spectator/fov"))

	resp, result = call(t, srv, http.MethodPost, "/api/settings/spectator/warp_drive", "1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.OK)

	resp, _ = call(t, srv, http.MethodPost, "/api/settings/spectator/auto_focus", "maybe")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	game.fail("/spectator/set_gamma", http.StatusInternalServerError)
	resp, result = call(t, srv, http.MethodPost, "/api/settings/spectator/gamma", "1.2")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to update gamma", result.Status)
}

func TestMountRoutes(t *testing.T) {
	srv, app, game := newTestServer(t)

	resp, _ := call(t, srv, http.MethodPatch, "/api/mounts/1", "Main Bridge")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var modify hostCall
	for _, c := range game.Calls() {
		if c.path == "/camera_mount/modify" {
			modify = c
		}
	}
	assert.JSONEq(t, `{"id":1,"info":{"name":"Main Bridge","map":"harbor"}}`, modify.body)

	resp, _ = call(t, srv, http.MethodPost, "/api/mounts/2/select", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	current, _ := app.Document().Get(mounts.CurrentNameID)
	assert.Equal(t, "2", current.Text)

	resp, _ = call(t, srv, http.MethodPost, "/api/mounts/default", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	current, _ = app.Document().Get(mounts.CurrentNameID)
	assert.Equal(t, "Player PoV", current.Text)

	resp, result := call(t, srv, http.MethodPost, "/api/mounts/cycle/next", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Camera mode cycled", result.Status)

	resp, _ = call(t, srv, http.MethodPost, "/api/mounts/cycle/sideways", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, result = call(t, srv, http.MethodPost, "/api/mounts", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Camera mount created", result.Message)
	assert.True(t, app.Document().Has(mounts.EntryID(hostapi.NumberID(3))))

	resp, _ = call(t, srv, http.MethodDelete, "/api/mounts/2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, game.count(http.MethodDelete, "/camera_mount/delete"))
	assert.False(t, app.Document().Has(mounts.EntryID(hostapi.NumberID(2))))

	resp, result = call(t, srv, http.MethodPost, "/api/mounts/refresh", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2 camera mounts", result.Message)
}

func TestLanguageRoute(t *testing.T) {
	srv, app, _ := newTestServer(t)

	resp, result := call(t, srv, http.MethodPost, "/api/language/de", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "de", result.Message)

	title, _ := app.Document().Get(TitleID)
	assert.Equal(t, "Zuschauer-Steuerung", title.Text)

	// Unknown languages fall back to the default table
	resp, result = call(t, srv, http.MethodPost, "/api/language/xx", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "en", result.Message)
}

func TestResetRoute(t *testing.T) {
	srv, _, game := newTestServer(t)

	resp, result := call(t, srv, http.MethodPost, "/api/streamer/reset", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.OK)
	assert.Equal(t, 1, game.count(http.MethodPost, "/streamer_tools/reset_to_defaults"))
}

func TestHostDownIsBadGateway(t *testing.T) {
	srv, _, game := newTestServer(t)
	game.fail("/camera_mount/fetch_ids", http.StatusInternalServerError)

	resp, result := call(t, srv, http.MethodPost, "/api/mounts/refresh", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, result.Error, "500")
}
