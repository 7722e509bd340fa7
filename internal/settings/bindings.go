package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/view"
)

// HideMountsSetting disables the add-mount control while mounts are hidden
const HideMountsSetting = "camera_mounts_hidden"

// AddMountButtonID is the element toggled by HideMountsSetting
const AddMountButtonID = "addCameraMountBtn"

// Messages overrides the default status lines of a binding
type Messages struct {
	Success func(text string) string
	Failure string
}

// Binding ties one host setting to one panel element
type Binding struct {
	Name      string
	Group     hostapi.Group
	Kind      view.Kind
	ElementID string

	// Quiet bindings log their outcome instead of reporting it on the status line
	Quiet    bool
	Messages *Messages
}

// DisplayID is the element mirroring the current value of a range control
func (b Binding) DisplayID() string {
	return b.ElementID + "Value"
}

// Key is the "<group>/<name>" form used on the command line and in routes
func (b Binding) Key() string {
	return string(b.Group) + "/" + b.Name
}

func spectator(name string, kind view.Kind, elementID string) Binding {
	return Binding{Name: name, Group: hostapi.Spectator, Kind: kind, ElementID: elementID}
}

// SpectatorEnabled is the master switch of the spectator camera
var SpectatorEnabled = Binding{
	Name:      "enabled",
	Group:     hostapi.Spectator,
	Kind:      view.KindCheckbox,
	ElementID: "cameraEnabledCheckbox",
	Messages: &Messages{
		Success: func(text string) string {
			if text == "true" {
				return "Spectator camera enabled"
			}
			return "Spectator camera disabled"
		},
		Failure: "Failed to update camera state",
	},
}

// SpectatorBindings are the spectator camera tuning controls, in panel order
var SpectatorBindings = []Binding{
	spectator("auto_focus", view.KindCheckbox, "autoFocusCheckbox"),
	spectator("right_thumbstick_cycle", view.KindCheckbox, "rightThumbstickCycleCheckbox"),
	spectator(HideMountsSetting, view.KindCheckbox, "hideCameraMountsCheckbox"),
	spectator("spectator_hud_hidden", view.KindCheckbox, "hideSpectatorHUDCheckbox"),
	spectator("velocity_smoothing", view.KindRange, "velocitySmoothing"),
	spectator("rotation_smoothing", view.KindRange, "rotationSmoothing"),
	spectator("max_lag_distance", view.KindRange, "maxLagDistance"),
	spectator("fov", view.KindRange, "fov"),
	spectator("pixel_density", view.KindRange, "pixelDensity"),
	spectator("gamma", view.KindRange, "gamma"),
	spectator("personal_bubble_radius", view.KindRange, "personalBubbleRadius"),
	spectator("overlay_ui_scale", view.KindRange, "overlayUIScale"),
	spectator("resolution", view.KindInput, "resolution"),
	spectator("roll_enabled", view.KindCheckbox, "rollEnabledCheckbox"),
}

// OverlayBindings are the in-game overlay controls
var OverlayBindings = []Binding{
	{Name: "enabled", Group: hostapi.Overlay, Kind: view.KindCheckbox, ElementID: "overlayEnabledCheckbox"},
}

// StreamerBindings are the streamer tool controls
var StreamerBindings = []Binding{
	{Name: "auto_launch_enabled", Group: hostapi.StreamerTools, Kind: view.KindCheckbox, ElementID: "autoLaunchCheckbox", Quiet: true},
}

// All returns every binding the panel knows, in load order
func All() []Binding {
	all := make([]Binding, 0, len(SpectatorBindings)+len(OverlayBindings)+len(StreamerBindings)+1)
	all = append(all, SpectatorEnabled)
	all = append(all, SpectatorBindings...)
	all = append(all, OverlayBindings...)
	all = append(all, StreamerBindings...)
	return all
}

// Find looks a binding up by group and name
func Find(bindings []Binding, group hostapi.Group, name string) (Binding, bool) {
	for _, b := range bindings {
		if b.Group == group && b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// FindKey looks a binding up by its "<group>/<name>" key. A bare name is
// looked up in the spectator group.
func FindKey(bindings []Binding, key string) (Binding, bool) {
	group, name, ok := strings.Cut(key, "/")
	if !ok {
		return Find(bindings, hostapi.Spectator, key)
	}
	return Find(bindings, hostapi.Group(group), name)
}

// FormatValue renders a setting value the way the host expects it on the wire
func FormatValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ParseValue converts user input into the value type a binding expects
func ParseValue(b Binding, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch b.Kind {
	case view.KindCheckbox:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", b.Name, raw)
		}
		return v, nil
	case view.KindRange:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", b.Name, raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
