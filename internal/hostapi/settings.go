package hostapi

import (
	"context"
	"fmt"
	"net/http"
)

// Group is the endpoint family a setting belongs to
type Group string

const (
	Spectator     Group = "spectator"
	Overlay       Group = "overlay"
	StreamerTools Group = "streamer_tools"
)

// ParseGroup validates a user-supplied group name
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case Spectator, Overlay, StreamerTools:
		return g, nil
	default:
		return "", fmt.Errorf("unknown setting group %q", s)
	}
}

// GetSetting returns the raw text value of /<group>/get_<name>
func (c *Client) GetSetting(ctx context.Context, group Group, name string) (string, error) {
	return c.getText(ctx, fmt.Sprintf("/%s/get_%s", group, name))
}

// SetSetting posts value as plain text to /<group>/set_<name>
func (c *Client) SetSetting(ctx context.Context, group Group, name, value string) error {
	return c.postText(ctx, fmt.Sprintf("/%s/set_%s", group, name), value)
}

// CurrentMapName returns the name of the map the game is currently on
func (c *Client) CurrentMapName(ctx context.Context) (string, error) {
	return c.getText(ctx, "/spectator/get_current_map_name")
}

// ResetToDefaults restores every streamer tool setting and returns the host's
// report, which may be any JSON value.
func (c *Client) ResetToDefaults(ctx context.Context) (any, error) {
	const path = "/streamer_tools/reset_to_defaults"

	data, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        []byte("{}"),
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var result any
	if err := decodeJSON(path, data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// LocaleTable fetches the static string table for a language code
func (c *Client) LocaleTable(ctx context.Context, code string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: "/locales/" + code + ".json"})
}
