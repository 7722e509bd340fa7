// Package poller watches the host's current map and resets the camera
// directory when the map changes.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glassbreakers/glasspanel/internal/mounts"
)

// MapSource reports the host's current map name
type MapSource interface {
	CurrentMapName(ctx context.Context) (string, error)
}

// Directory is what the poller drives on a map change
type Directory interface {
	Refresh(ctx context.Context) (mounts.Snapshot, error)
	SelectDefault(ctx context.Context) error
}

// State is the poller's position in its check cycle
type State int

const (
	Uninitialized State = iota
	Idle
	Checking
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	default:
		return "unknown"
	}
}

// Outcome describes what one Check did
type Outcome int

const (
	// Dropped means another check was already in flight
	Dropped Outcome = iota
	// Failed means the map name could not be fetched
	Failed
	// Baseline means the first map name was recorded
	Baseline
	// Unchanged means the map matches the baseline
	Unchanged
	// Changed means the map changed and the directory was reset
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Dropped:
		return "dropped"
	case Failed:
		return "failed"
	case Baseline:
		return "baseline"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Poller checks the current map on a fixed interval
type Poller struct {
	source    MapSource
	directory Directory
	interval  time.Duration
	logger    *slog.Logger

	checking atomic.Bool

	// baseline is written only by the check holding the guard
	mu       sync.Mutex
	baseline string
	seeded   bool
}

// New creates a poller
func New(source MapSource, directory Directory, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:    source,
		directory: directory,
		interval:  interval,
		logger:    logger,
	}
}

// State returns the poller's current state
func (p *Poller) State() State {
	if p.checking.Load() {
		return Checking
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seeded {
		return Uninitialized
	}
	return Idle
}

// Baseline returns the last confirmed map name and whether one was recorded
func (p *Poller) Baseline() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baseline, p.seeded
}

// Check fetches the current map once. The first successful observation only
// records the baseline. A different name updates the baseline, refreshes the
// directory and then selects the default viewpoint. Failures are logged and
// leave the baseline as it was.
func (p *Poller) Check(ctx context.Context) Outcome {
	if !p.checking.CompareAndSwap(false, true) {
		p.logger.Debug("map check already in flight, dropping tick")
		return Dropped
	}
	defer p.checking.Store(false)

	name, err := p.source.CurrentMapName(ctx)
	if err != nil {
		p.logger.Warn("error checking current map", "error", err)
		return Failed
	}

	p.mu.Lock()
	previous, seeded := p.baseline, p.seeded
	if !seeded || previous != name {
		p.baseline, p.seeded = name, true
	}
	p.mu.Unlock()

	switch {
	case !seeded:
		p.logger.Debug("recorded initial map", "map", name)
		return Baseline
	case previous == name:
		return Unchanged
	}

	p.logger.Info("map changed, refreshing camera mounts", "from", previous, "to", name)

	if _, err := p.directory.Refresh(ctx); err != nil {
		if errors.Is(err, mounts.ErrRefreshInProgress) {
			p.logger.Debug("camera mount refresh already running")
		} else {
			p.logger.Error("error refreshing camera mounts after map change", "error", err)
		}
	}
	if err := p.directory.SelectDefault(ctx); err != nil {
		p.logger.Error("error selecting default viewpoint after map change", "error", err)
	}

	return Changed
}

// Run checks the map every interval until ctx is canceled. Ticks that fire
// while a check is running are dropped.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("map poller started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("map poller stopped")
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
