// Package view holds the panel's element tree.
//
// A Document is the in-process stand-in for the page the panel renders into:
// components look elements up by id and mutate them, the panel server
// serializes the whole tree, and the CLI prints parts of it.
package view

import (
	"encoding/json"
	"sync"
)

// Kind is the widget type of an element
type Kind string

const (
	KindContainer Kind = "container"
	KindText      Kind = "text"
	KindHeader    Kind = "header"
	KindCheckbox  Kind = "checkbox"
	KindRange     Kind = "range"
	KindInput     Kind = "input"
	KindButton    Kind = "button"
)

// Action describes what activating a control does
type Action struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

// Element is one node of the tree
type Element struct {
	ID          string     `json:"id,omitempty"`
	Kind        Kind       `json:"kind"`
	Class       string     `json:"class,omitempty"`
	Text        string     `json:"text,omitempty"`
	Value       string     `json:"value,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Checked     bool       `json:"checked,omitempty"`
	Disabled    bool       `json:"disabled,omitempty"`
	Color       string     `json:"color,omitempty"`
	I18nKey     string     `json:"i18n,omitempty"`
	Actions     []Action   `json:"actions,omitempty"`
	Children    []*Element `json:"children,omitempty"`
}

// Clone returns a deep copy of e
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.Actions != nil {
		c.Actions = append([]Action(nil), e.Actions...)
	}
	if e.Children != nil {
		c.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Walk calls fn on e and every descendant, depth first
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Document is a concurrency-safe set of top-level elements addressed by id
type Document struct {
	mu    sync.RWMutex
	roots []*Element
	byID  map[string]*Element
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{byID: make(map[string]*Element)}
}

// Add appends a top-level element and indexes it and its descendants by id
func (d *Document) Add(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.roots = append(d.roots, el)
	d.index(el)
}

func (d *Document) index(el *Element) {
	el.Walk(func(e *Element) {
		if e.ID != "" {
			d.byID[e.ID] = e
		}
	})
}

func (d *Document) unindex(el *Element) {
	el.Walk(func(e *Element) {
		if e.ID != "" && d.byID[e.ID] == e {
			delete(d.byID, e.ID)
		}
	})
}

// Has reports whether an element with id exists
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byID[id]
	return ok
}

// Get returns a copy of the element with id
func (d *Document) Get(id string) (*Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	el, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Update runs fn on the element with id under the document lock.
// Returns false when no such element exists.
func (d *Document) Update(id string, fn func(*Element)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.byID[id]
	if !ok {
		return false
	}
	fn(el)
	return true
}

// SetText replaces the text of the element with id
func (d *Document) SetText(id, text string) bool {
	return d.Update(id, func(e *Element) { e.Text = text })
}

// ReplaceChildren swaps the whole subtree below id for children
func (d *Document) ReplaceChildren(id string, children ...*Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.byID[id]
	if !ok {
		return false
	}
	for _, old := range el.Children {
		d.unindex(old)
	}
	el.Children = children
	for _, child := range children {
		d.index(child)
	}
	return true
}

// Localize rewrites the text of every element carrying a localization key.
// resolve returns false for keys without a translation; those elements keep
// their current text. Returns the number of rewritten elements.
func (d *Document) Localize(resolve func(key string) (string, bool)) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, root := range d.roots {
		root.Walk(func(e *Element) {
			if e.I18nKey == "" {
				return
			}
			if text, ok := resolve(e.I18nKey); ok {
				e.Text = text
				n++
			}
		})
	}
	return n
}

// Snapshot returns a deep copy of the whole tree
func (d *Document) Snapshot() []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Element, len(d.roots))
	for i, root := range d.roots {
		out[i] = root.Clone()
	}
	return out
}

// MarshalJSON encodes the tree as an array of top-level elements
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Snapshot())
}
