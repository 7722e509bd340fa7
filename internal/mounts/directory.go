// Package mounts renders the host's camera mounts and carries out the
// actions their controls expose (rename, delete, select, create, cycle).
package mounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/view"
)

// ErrRefreshInProgress is returned when Refresh is called while another
// refresh is still running. The call is dropped, not queued.
var ErrRefreshInProgress = errors.New("camera mount refresh already in progress")

// ErrCanceled is returned when the user declines a confirmation
var ErrCanceled = errors.New("canceled")

// Client is the part of the host API the directory uses
type Client interface {
	InfoFetcher
	FetchMountIDs(ctx context.Context) ([]hostapi.MountID, error)
	ModifyMount(ctx context.Context, id hostapi.MountID, info hostapi.MountInfo) error
	SelectMountByName(ctx context.Context, name string) error
	SelectMountByID(ctx context.Context, id hostapi.MountID) error
	DeleteMount(ctx context.Context, id hostapi.MountID) error
	CreateMount(ctx context.Context) (string, error)
	CycleMount(ctx context.Context, dir hostapi.Direction) error
	CurrentMountName(ctx context.Context) (string, error)
}

// Reporter shows a one-line outcome to the user
type Reporter interface {
	Report(message string, isError bool)
}

// Confirmer asks the user a yes/no question
type Confirmer func(message string) bool

// Alerter shows a blocking error message to the user
type Alerter func(message string)

// Options configures a Directory
type Options struct {
	Client   Client
	Document *view.Document
	Text     Resolver
	Reporter Reporter
	Logger   *slog.Logger

	// DefaultViewpoint is the reserved mount name selected after map changes
	DefaultViewpoint string

	Alert Alerter
}

// Directory owns the camera mount list element and its refresh guard
type Directory struct {
	client    Client
	doc       *view.Document
	text      Resolver
	reporter  Reporter
	logger    *slog.Logger
	viewpoint string
	alert     Alerter

	loading atomic.Bool

	// records from the last render, replaced wholesale on every refresh
	mu      sync.Mutex
	records map[hostapi.MountID]hostapi.MountInfo
	order   []hostapi.MountID
}

// NewDirectory creates a directory
func NewDirectory(opts Options) *Directory {
	alert := opts.Alert
	if alert == nil {
		alert = func(message string) { opts.Logger.Error(message) }
	}
	return &Directory{
		client:    opts.Client,
		doc:       opts.Document,
		text:      opts.Text,
		reporter:  opts.Reporter,
		logger:    opts.Logger,
		viewpoint: opts.DefaultViewpoint,
		alert:     alert,
		records:   make(map[hostapi.MountID]hostapi.MountInfo),
	}
}

// DefaultViewpoint returns the reserved viewpoint name
func (d *Directory) DefaultViewpoint() string {
	return d.viewpoint
}

// Loading reports whether a refresh is running
func (d *Directory) Loading() bool {
	return d.loading.Load()
}

// Refresh rebuilds the mount list from scratch. Only one refresh runs at a
// time; a call made while one is running returns ErrRefreshInProgress and
// leaves the document untouched. If the id list cannot be fetched the pass
// is aborted and the loading placeholder stays up.
func (d *Directory) Refresh(ctx context.Context) (Snapshot, error) {
	if !d.loading.CompareAndSwap(false, true) {
		d.logger.Debug("camera mount refresh already in progress, skipping")
		return Snapshot{}, ErrRefreshInProgress
	}
	defer d.loading.Store(false)

	d.doc.ReplaceChildren(ListID, placeholder(keyLoading, d.text))

	ids, err := d.client.FetchMountIDs(ctx)
	if err != nil {
		d.logger.Error("error fetching camera mount ids", "error", err)
		return Snapshot{}, fmt.Errorf("failed to fetch camera mount ids: %w", err)
	}

	if len(ids) == 0 {
		d.setRecords(nil)
		d.doc.ReplaceChildren(ListID, placeholder(keyEmpty, d.text))
		return Snapshot{}, nil
	}

	records, skipped := FetchAll(ctx, d.client, ids, d.logger)
	snap := BuildSnapshot(records)
	snap.Skipped = skipped

	d.setRecords(records)
	d.doc.ReplaceChildren(ListID, renderSnapshot(snap, d.viewpoint, d.text)...)

	d.logger.Debug("camera mounts rendered",
		"mounts", snap.Len(), "maps", len(snap.Groups), "skipped", len(skipped))
	return snap, nil
}

func (d *Directory) setRecords(records []Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = make(map[hostapi.MountID]hostapi.MountInfo, len(records))
	d.order = make([]hostapi.MountID, 0, len(records))
	for _, r := range records {
		d.records[r.ID] = r.Info
		d.order = append(d.order, r.ID)
	}
}

// Lookup returns the host id whose text is text. Ids of the last render are
// checked first, then the host's id list; text that matches no host id is
// used as a string id.
func (d *Directory) Lookup(ctx context.Context, text string) hostapi.MountID {
	d.mu.Lock()
	rendered := d.order
	d.mu.Unlock()
	if id, ok := matchID(rendered, text); ok {
		return id
	}

	ids, err := d.client.FetchMountIDs(ctx)
	if err != nil {
		d.logger.Debug("camera mount ids unavailable, using id as given", "id", text, "error", err)
		return hostapi.TextID(text)
	}
	if id, ok := matchID(ids, text); ok {
		return id
	}
	return hostapi.TextID(text)
}

func matchID(ids []hostapi.MountID, text string) (hostapi.MountID, bool) {
	for _, id := range ids {
		if id.String() == text {
			return id, true
		}
	}
	return hostapi.MountID{}, false
}

// record returns the last rendered record of id, fetching it when the id was
// not part of the last render.
func (d *Directory) record(ctx context.Context, id hostapi.MountID) (hostapi.MountInfo, error) {
	d.mu.Lock()
	info, ok := d.records[id]
	d.mu.Unlock()
	if ok {
		return info, nil
	}

	fetched, err := d.client.MountInfo(ctx, id)
	if err != nil {
		return hostapi.MountInfo{}, err
	}
	return *fetched, nil
}

// Rename sends the full record of id with a new name. It does not hold any
// lock while the request is in flight, so further edits are never blocked.
func (d *Directory) Rename(ctx context.Context, id hostapi.MountID, name string) error {
	info, err := d.record(ctx, id)
	if err != nil {
		d.logger.Error("error fetching camera info", "id", id, "error", err)
		return err
	}
	info.Name = name

	d.mu.Lock()
	if _, ok := d.records[id]; ok {
		d.records[id] = info
	}
	d.mu.Unlock()
	d.doc.Update(NameInputID(id), func(e *view.Element) { e.Value = name })

	if err := d.client.ModifyMount(ctx, id, info); err != nil {
		d.logger.Error("error modifying camera info", "id", id, "error", err)
		return err
	}
	return nil
}

// Delete asks for confirmation naming the mount, deletes it, then refreshes
// the whole list.
func (d *Directory) Delete(ctx context.Context, id hostapi.MountID, confirm Confirmer) error {
	label := id.String()
	if info, err := d.record(ctx, id); err == nil && info.Name != "" {
		label = info.Name
	}

	message := fmt.Sprintf("%s '%s'?", d.text.Resolve(keyDeleteConfirm), label)
	if !confirm(message) {
		return ErrCanceled
	}

	if err := d.client.DeleteMount(ctx, id); err != nil {
		d.logger.Error("error deleting camera", "id", id, "error", err)
		return err
	}

	return d.refreshAfterChange(ctx)
}

// Create asks the host for a new mount and refreshes the list. Failures are
// raised through the alerter.
func (d *Directory) Create(ctx context.Context) (string, error) {
	confirmation, err := d.client.CreateMount(ctx)
	if err != nil {
		d.logger.Error("error creating new camera mount", "error", err)
		d.alert("Error creating new camera mount: " + err.Error())
		return "", err
	}
	d.logger.Info("camera mount created", "response", confirmation)

	if err := d.refreshAfterChange(ctx); err != nil {
		return confirmation, err
	}
	return confirmation, nil
}

// refreshAfterChange refreshes, treating an already running refresh as success
func (d *Directory) refreshAfterChange(ctx context.Context) error {
	_, err := d.Refresh(ctx)
	if errors.Is(err, ErrRefreshInProgress) {
		return nil
	}
	return err
}

// Select activates the mount with id
func (d *Directory) Select(ctx context.Context, id hostapi.MountID) error {
	if err := d.client.SelectMountByID(ctx, id); err != nil {
		d.logger.Error("error selecting camera mount", "id", id, "error", err)
		return err
	}
	_, _ = d.RefreshCurrentName(ctx)
	return nil
}

// SelectByName activates the mount with the given name
func (d *Directory) SelectByName(ctx context.Context, name string) error {
	if err := d.client.SelectMountByName(ctx, name); err != nil {
		d.logger.Error("error selecting camera mount", "name", name, "error", err)
		return err
	}
	_, _ = d.RefreshCurrentName(ctx)
	return nil
}

// SelectDefault activates the reserved default viewpoint
func (d *Directory) SelectDefault(ctx context.Context) error {
	return d.SelectByName(ctx, d.viewpoint)
}

// Cycle activates the previous or next mount and reports the outcome
func (d *Directory) Cycle(ctx context.Context, dir hostapi.Direction) error {
	if err := d.client.CycleMount(ctx, dir); err != nil {
		d.logger.Error("error cycling camera mount", "direction", dir, "error", err)
		d.reporter.Report(fmt.Sprintf("Failed to activate %s camera", dir), true)
		return err
	}
	_, _ = d.RefreshCurrentName(ctx)
	d.reporter.Report("Camera mode cycled", false)
	return nil
}

// RefreshCurrentName shows the active mount's name, or "Error" if it cannot
// be fetched.
func (d *Directory) RefreshCurrentName(ctx context.Context) (string, error) {
	name, err := d.client.CurrentMountName(ctx)
	if err != nil {
		d.logger.Error("error fetching current camera mount", "error", err)
		d.doc.SetText(CurrentNameID, "Error")
		return "", err
	}
	d.doc.SetText(CurrentNameID, name)
	return name, nil
}
