// Package settings mirrors host settings into panel controls and back.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/view"
)

// Client is the part of the host API the synchronizer uses
type Client interface {
	GetSetting(ctx context.Context, group hostapi.Group, name string) (string, error)
	SetSetting(ctx context.Context, group hostapi.Group, name, value string) error
}

// Reporter shows the outcome of an update
type Reporter interface {
	Report(message string, isError bool)
}

// Skipped records a binding that could not be loaded
type Skipped struct {
	Binding Binding
	Err     error
}

// LoadResult is the outcome of LoadAll. A partial load is normal.
type LoadResult struct {
	Loaded  []Binding
	Skipped []Skipped
}

// Synchronizer reads settings into the document and writes user changes back
type Synchronizer struct {
	client   Client
	doc      *view.Document
	reporter Reporter
	logger   *slog.Logger
}

// NewSynchronizer creates a synchronizer
func NewSynchronizer(client Client, doc *view.Document, reporter Reporter, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		client:   client,
		doc:      doc,
		reporter: reporter,
		logger:   logger,
	}
}

// LoadAll fetches every binding in order. A failing entry is logged and
// skipped; it never stops the remaining entries.
func (s *Synchronizer) LoadAll(ctx context.Context, bindings []Binding) LoadResult {
	var result LoadResult

	for _, b := range bindings {
		if err := s.load(ctx, b); err != nil {
			s.logger.Warn("failed to load setting", "setting", b.Key(), "error", err)
			result.Skipped = append(result.Skipped, Skipped{Binding: b, Err: err})
			continue
		}
		result.Loaded = append(result.Loaded, b)
	}

	return result
}

func (s *Synchronizer) load(ctx context.Context, b Binding) error {
	raw, err := s.client.GetSetting(ctx, b.Group, b.Name)
	if err != nil {
		return err
	}

	if !s.doc.Has(b.ElementID) {
		return fmt.Errorf("no element %q", b.ElementID)
	}

	s.apply(b, strings.TrimSpace(raw))
	return nil
}

// apply writes a trimmed wire value into the binding's element
func (s *Synchronizer) apply(b Binding, text string) {
	if b.Kind == view.KindCheckbox {
		checked := strings.EqualFold(text, "true")
		s.doc.Update(b.ElementID, func(e *view.Element) { e.Checked = checked })
		if b.Group == hostapi.Spectator && b.Name == HideMountsSetting {
			s.doc.Update(AddMountButtonID, func(e *view.Element) { e.Disabled = checked })
		}
		return
	}

	s.doc.Update(b.ElementID, func(e *view.Element) { e.Value = text })
	if b.Kind == view.KindRange {
		// The display element is optional
		s.doc.SetText(b.DisplayID(), text)
	}
}

// Update sends one new value to the host. There is no retry; the outcome is
// reported once.
func (s *Synchronizer) Update(ctx context.Context, b Binding, value any) error {
	text := FormatValue(value)

	err := s.client.SetSetting(ctx, b.Group, b.Name, text)
	if err != nil {
		s.logger.Error("failed to update setting", "setting", b.Key(), "value", text, "error", err)
		s.outcome(b, text, err)
		return err
	}

	s.apply(b, text)
	s.outcome(b, text, nil)
	return nil
}

func (s *Synchronizer) outcome(b Binding, text string, err error) {
	if b.Quiet {
		if err == nil {
			s.logger.Info("setting updated", "setting", b.Key(), "value", text)
		}
		return
	}

	if b.Messages != nil {
		if err != nil {
			s.reporter.Report(b.Messages.Failure, true)
		} else {
			s.reporter.Report(b.Messages.Success(text), false)
		}
		return
	}

	label := b.Name
	if b.Group == hostapi.Overlay {
		label = "overlay " + b.Name
	}
	if err != nil {
		s.reporter.Report("Failed to update "+label, true)
		return
	}
	s.reporter.Report("Updated "+label, false)
}
