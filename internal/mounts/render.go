package mounts

import (
	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/view"
)

// Element ids owned by the directory. DefaultEntryID carries no "mount-"
// prefix so no host id can render to it.
const (
	ListID         = "camerasMountList"
	CurrentNameID  = "activeCameraMount"
	DefaultEntryID = "player-pov"
)

// Action types attached to rendered controls
const (
	ActionSelectByName = "select_by_name"
	ActionSelectByID   = "select_by_id"
	ActionRename       = "rename"
	ActionDelete       = "delete"
)

// Localization keys used by the directory
const (
	keyLoading       = "loading_camera_mounts"
	keyEmpty         = "no_camera_mounts_found"
	keySelect        = "select_mount"
	keyDeleteConfirm = "delete_camera_confirm"
)

// Resolver turns a localization key into display text
type Resolver interface {
	Resolve(key string) string
}

// EntryID is the element id of a rendered mount
func EntryID(id hostapi.MountID) string {
	return "mount-" + id.String()
}

// NameInputID is the element id of a mount's editable name field
func NameInputID(id hostapi.MountID) string {
	return EntryID(id) + "-name"
}

func placeholder(key string, text Resolver) *view.Element {
	return &view.Element{Kind: view.KindText, I18nKey: key, Text: text.Resolve(key)}
}

func selectButton(text Resolver, action view.Action) *view.Element {
	return &view.Element{
		Kind:    view.KindButton,
		Class:   "select-btn",
		I18nKey: keySelect,
		Text:    text.Resolve(keySelect),
		Actions: []view.Action{action},
	}
}

// defaultEntry is the synthetic, non-deletable viewpoint listed first
func defaultEntry(viewpoint string, text Resolver) *view.Element {
	return &view.Element{
		ID:    DefaultEntryID,
		Kind:  view.KindContainer,
		Class: "camera-mount-entry player-pov-entry",
		Children: []*view.Element{
			{Kind: view.KindText, Class: "camera-name-label", Text: viewpoint},
			selectButton(text, view.Action{Type: ActionSelectByName, Target: viewpoint}),
		},
	}
}

func mountEntry(r Record, text Resolver) *view.Element {
	target := r.ID.String()
	return &view.Element{
		ID:    EntryID(r.ID),
		Kind:  view.KindContainer,
		Class: "camera-mount-entry",
		Children: []*view.Element{
			{
				Kind:  view.KindContainer,
				Class: "camera-name-row",
				Children: []*view.Element{
					{
						ID:          NameInputID(r.ID),
						Kind:        view.KindInput,
						Class:       "camera-name-input",
						Value:       r.Info.Name,
						Placeholder: "Camera " + target,
						Actions:     []view.Action{{Type: ActionRename, Target: target}},
					},
					{
						Kind:    view.KindButton,
						Class:   "delete-btn-x",
						Text:    "×",
						Actions: []view.Action{{Type: ActionDelete, Target: target}},
					},
				},
			},
			selectButton(text, view.Action{Type: ActionSelectByID, Target: target}),
		},
	}
}

// renderSnapshot builds the children of the list element. The default
// viewpoint entry leads the first group whatever that group's map is.
func renderSnapshot(snap Snapshot, viewpoint string, text Resolver) []*view.Element {
	out := make([]*view.Element, 0, 2*len(snap.Groups))

	for i, g := range snap.Groups {
		header := &view.Element{Kind: view.KindHeader, Class: "map-group-header", Text: g.Map}

		grid := &view.Element{Kind: view.KindContainer, Class: "camera-grid"}
		if i == 0 {
			grid.Children = append(grid.Children, defaultEntry(viewpoint, text))
		}
		for _, r := range g.Mounts {
			grid.Children = append(grid.Children, mountEntry(r, text))
		}

		out = append(out, header, grid)
	}

	return out
}
