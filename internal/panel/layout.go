package panel

import (
	"github.com/glassbreakers/glasspanel/internal/mounts"
	"github.com/glassbreakers/glasspanel/internal/settings"
	"github.com/glassbreakers/glasspanel/internal/status"
	"github.com/glassbreakers/glasspanel/internal/view"
)

// Action types of the panel-level controls
const (
	ActionCreate  = "create"
	ActionCycle   = "cycle"
	ActionSetting = "setting"
	ActionReset   = "reset"
)

// Element ids of the panel-level controls
const (
	TitleID       = "title"
	PreviousID    = "previousCameraBtn"
	NextID        = "nextCameraBtn"
	ResetButtonID = "resetToDefaultsBtn"
)

func heading(id, key string) *view.Element {
	return &view.Element{ID: id, Kind: view.KindHeader, I18nKey: key, Text: key}
}

func control(b settings.Binding) []*view.Element {
	el := &view.Element{
		ID:      b.ElementID,
		Kind:    b.Kind,
		Actions: []view.Action{{Type: ActionSetting, Target: b.Key()}},
	}
	if b.Kind != view.KindRange {
		return []*view.Element{el}
	}
	return []*view.Element{el, {ID: b.DisplayID(), Kind: view.KindText, Class: "range-value"}}
}

func section(id, key string, bindings []settings.Binding) *view.Element {
	s := &view.Element{ID: id, Kind: view.KindContainer, Class: "panel-section"}
	s.Children = append(s.Children, heading(id+"Header", key))
	for _, b := range bindings {
		s.Children = append(s.Children, control(b)...)
	}
	return s
}

// NewLayout builds the panel's element tree. Every element carrying a
// localization key shows its key until a language is applied.
func NewLayout() *view.Document {
	doc := view.NewDocument()

	doc.Add(heading(TitleID, "title"))
	doc.Add(&view.Element{ID: status.ElementID, Kind: view.KindText, Class: "status"})

	doc.Add(&view.Element{
		ID:    "cameraMountsSection",
		Kind:  view.KindContainer,
		Class: "panel-section",
		Children: []*view.Element{
			heading("cameraMountsHeader", "camera_mounts"),
			{Kind: view.KindText, I18nKey: "active_camera_mount", Text: "active_camera_mount"},
			{ID: mounts.CurrentNameID, Kind: view.KindText, Class: "active-mount"},
			{ID: PreviousID, Kind: view.KindButton, Text: "◀", Actions: []view.Action{{Type: ActionCycle, Target: "previous"}}},
			{ID: NextID, Kind: view.KindButton, Text: "▶", Actions: []view.Action{{Type: ActionCycle, Target: "next"}}},
			{ID: mounts.ListID, Kind: view.KindContainer, Class: "camera-mount-list"},
			{
				ID:      settings.AddMountButtonID,
				Kind:    view.KindButton,
				I18nKey: "add_camera_mount",
				Text:    "add_camera_mount",
				Actions: []view.Action{{Type: ActionCreate}},
			},
		},
	})

	spectator := append([]settings.Binding{settings.SpectatorEnabled}, settings.SpectatorBindings...)
	doc.Add(section("spectatorSection", "spectator_camera", spectator))
	doc.Add(section("overlaySection", "overlay", settings.OverlayBindings))

	streamer := section("streamerSection", "streamer_tools", settings.StreamerBindings)
	streamer.Children = append(streamer.Children, &view.Element{
		ID:      ResetButtonID,
		Kind:    view.KindButton,
		I18nKey: "reset_to_defaults",
		Text:    "reset_to_defaults",
		Actions: []view.Action{{Type: ActionReset}},
	})
	doc.Add(streamer)

	return doc
}
