package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MountID is the host-assigned key of a camera mount. The host may send it as
// a JSON number or a JSON string; the form it arrived in is kept so the id is
// written back exactly as the host sent it.
type MountID struct {
	text    string
	numeric bool
}

// TextID returns an id the host sends as a JSON string
func TextID(s string) MountID {
	return MountID{text: s}
}

// NumberID returns an id the host sends as a JSON number
func NumberID(n int64) MountID {
	return MountID{text: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the id as it appears in query strings and element ids
func (id MountID) String() string {
	return id.text
}

// Numeric reports whether the host sent the id as a JSON number
func (id MountID) Numeric() bool {
	return id.numeric
}

// UnmarshalJSON accepts both numeric and string ids
func (id *MountID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TextID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = MountID{text: n.String(), numeric: true}
	return nil
}

// MarshalJSON writes the id in the form it was received
func (id MountID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// MountInfo is the metadata record of a camera mount. The raw record is kept
// verbatim, name and map included, so a rename sends back the full record
// and changes only the name.
type MountInfo struct {
	Name string
	Map  string

	// name and map as decoded; raw holds every field of the record
	decodedName string
	decodedMap  string
	raw         map[string]json.RawMessage
}

// UnmarshalJSON decodes a mount record, keeping every field
func (m *MountInfo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("mount info is null")
	}

	*m = MountInfo{raw: fields}
	// Non-string names and maps are treated as absent
	if v, ok := fields["name"]; ok {
		_ = json.Unmarshal(v, &m.Name)
	}
	if v, ok := fields["map"]; ok {
		_ = json.Unmarshal(v, &m.Map)
	}
	m.decodedName, m.decodedMap = m.Name, m.Map
	return nil
}

// MarshalJSON encodes the record. Fields of a decoded record are written back
// unchanged; name and map are replaced only when they were edited.
func (m MountInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.raw)+2)
	for k, v := range m.raw {
		out[k] = v
	}

	if _, ok := m.raw["name"]; !ok || m.Name != m.decodedName {
		out["name"] = m.Name
	}
	if _, ok := m.raw["map"]; ok && m.Map != m.decodedMap || !ok && m.Map != "" {
		out["map"] = m.Map
	}
	return json.Marshal(out)
}

// Field returns a raw field of a decoded record, if present
func (m MountInfo) Field(key string) (json.RawMessage, bool) {
	v, ok := m.raw[key]
	return v, ok
}

// Direction selects which way CycleMount moves
type Direction string

const (
	Previous Direction = "previous"
	Next     Direction = "next"
)

// ParseDirection validates a user-supplied cycle direction
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case Previous, "prev":
		return Previous, nil
	case Next:
		return Next, nil
	default:
		return "", errors.New("direction must be 'previous' or 'next'")
	}
}

// CurrentMountName returns the display name of the active mount
func (c *Client) CurrentMountName(ctx context.Context) (string, error) {
	name, err := c.getText(ctx, "/camera_mount/get_current_name")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// CycleMount activates the previous or next mount
func (c *Client) CycleMount(ctx context.Context, dir Direction) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/camera_mount/cycle_" + string(dir)})
	return err
}

// FetchMountIDs lists every mount id the host knows about, in host order
func (c *Client) FetchMountIDs(ctx context.Context) ([]MountID, error) {
	const path = "/camera_mount/fetch_ids"

	data, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}

	var payload struct {
		CameraIDs []MountID `json:"camera_ids"`
	}
	if err := decodeJSON(path, data, &payload); err != nil {
		return nil, err
	}
	if payload.CameraIDs == nil {
		return []MountID{}, nil
	}
	return payload.CameraIDs, nil
}

// MountInfo fetches the metadata record of one mount
func (c *Client) MountInfo(ctx context.Context, id MountID) (*MountInfo, error) {
	const path = "/camera_mount/get_info"

	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		query:  url.Values{"id": {id.String()}},
	})
	if err != nil {
		return nil, err
	}

	var info MountInfo
	if err := decodeJSON(path, data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ModifyMount replaces the metadata of a mount with info
func (c *Client) ModifyMount(ctx context.Context, id MountID, info MountInfo) error {
	body, err := json.Marshal(struct {
		ID   MountID   `json:"id"`
		Info MountInfo `json:"info"`
	}{ID: id, Info: info})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "/camera_mount/modify",
		body:        body,
		contentType: "application/json",
	})
	return err
}

// SelectMountByName activates the mount with the given display name
func (c *Client) SelectMountByName(ctx context.Context, name string) error {
	return c.postText(ctx, "/camera_mount/set_current_by_name", name)
}

// SelectMountByID activates the mount with the given id
func (c *Client) SelectMountByID(ctx context.Context, id MountID) error {
	return c.postText(ctx, "/camera_mount/set_current_by_id", id.String())
}

// DeleteMount removes a mount on the host
func (c *Client) DeleteMount(ctx context.Context, id MountID) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/camera_mount/delete",
		query:  url.Values{"id": {id.String()}},
	})
	return err
}

// CreateMount asks the host to create a mount at the current camera position
// and returns the host's confirmation text.
func (c *Client) CreateMount(ctx context.Context) (string, error) {
	data, err := c.do(ctx, request{method: http.MethodPost, path: "/camera_mount/create"})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
