// Package locale loads language string tables and resolves keys against them.
//
// A Catalog holds exactly one table at a time. Loading a language that cannot
// be retrieved falls back to the default language; resolving a key that has
// no translation returns the key itself.
package locale

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/glassbreakers/glasspanel/internal/view"
)

// PreferenceStore persists the chosen language for the next session
type PreferenceStore interface {
	SetPreferredLanguage(code string) error
}

// Catalog is the active string table
type Catalog struct {
	source      Source
	defaultCode string
	logger      *slog.Logger

	mu       sync.RWMutex
	code     string
	messages map[string]string
}

// NewCatalog creates an empty catalog. Until Load succeeds every key resolves to itself.
func NewCatalog(source Source, defaultCode string, logger *slog.Logger) *Catalog {
	return &Catalog{
		source:      source,
		defaultCode: defaultCode,
		logger:      logger,
	}
}

// Load replaces the active table with the one for code. If that fails and code
// is not the default language, the default table is tried instead. Returns
// whether a table was loaded.
func (c *Catalog) Load(ctx context.Context, code string) (bool, error) {
	err := c.loadTable(ctx, code)
	if err == nil {
		return true, nil
	}

	c.logger.Error("failed to load language file", "language", code, "error", err)
	if code != c.defaultCode {
		return c.Load(ctx, c.defaultCode)
	}
	return false, err
}

func (c *Catalog) loadTable(ctx context.Context, code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}

	data, name, err := c.source.Table(ctx, code)
	if err != nil {
		return err
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	file, err := bundle.ParseMessageFileBytes(data, name)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	// Translations are literal text, never templates
	messages := make(map[string]string, len(file.Messages))
	for _, m := range file.Messages {
		messages[m.ID] = m.Other
	}

	c.mu.Lock()
	c.code = code
	c.messages = messages
	c.mu.Unlock()

	c.logger.Debug("language loaded", "language", code, "source", name)
	return nil
}

// Code returns the language of the active table, or "" if none is loaded
func (c *Catalog) Code() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.code
}

// Lookup returns the translation of key and whether one exists.
// Empty translations count as missing.
func (c *Catalog) Lookup(key string) (string, bool) {
	c.mu.RLock()
	text := c.messages[key]
	c.mu.RUnlock()

	if text == "" {
		return "", false
	}
	return text, true
}

// Resolve returns the translation of key, or key itself when there is none
func (c *Catalog) Resolve(key string) string {
	if text, ok := c.Lookup(key); ok {
		return text
	}
	return key
}

// Apply loads code, rewrites every localized element of doc and stores code
// as the preferred language. Elements rewritten before a failure stay
// rewritten.
func (c *Catalog) Apply(ctx context.Context, code string, doc *view.Document, store PreferenceStore) error {
	loaded, loadErr := c.Load(ctx, code)

	n := doc.Localize(c.Lookup)
	c.logger.Debug("localized elements", "language", c.Code(), "count", n)

	if store != nil {
		if err := store.SetPreferredLanguage(code); err != nil {
			c.logger.Warn("failed to save language preference", "language", code, "error", err)
		}
	}

	if !loaded {
		return fmt.Errorf("no string table could be loaded for %q: %w", code, loadErr)
	}
	return nil
}
