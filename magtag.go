// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"
	"unicode/utf8"

	"github.com/portalbase/magtag/extract"
	"github.com/portalbase/magtag/graphics"
)

// Renderer is the slice of the scene the text registry drives: slotted
// drawables plus a coalesced refresh. *graphics.Graphics implements it.
type Renderer interface {
	Show(slot int, d graphics.Drawable)
	Remove(slot int)
	Refresh() error
}

// FontLoader hands out fonts for text slots and can drop its cache.
// *graphics.FontCache implements it.
type FontLoader interface {
	Load(path string) (*graphics.Font, error)
	Clear()
}

// DataSource produces payload bytes for Fetch, usually a *network.Client.
type DataSource interface {
	Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error)
}

// Transform rewrites one extracted value into the string a slot displays,
// replacing the default formatting.
type Transform func(v any) string

// TextOptions configures one text slot.
type TextOptions struct {
	// Position is the anchored point on the panel.
	Position image.Point
	// Font is the path of a TTF file, the built-in fixed font when empty.
	Font string
	// Color of the text. The zero value is black.
	Color Color
	// Anchor picks which point of the text box sits at Position, the middle
	// of the left edge when nil. Components must be within [0, 1].
	Anchor *graphics.Anchor
	// Scale is the glyph magnification, rounded to an integer. Values below
	// 1, including the zero value, select 1.
	Scale float64
	// Wrap is the line width in characters for committed strings, 0 leaves
	// them unwrapped.
	Wrap int
	// MaxLength truncates committed strings to this many characters with a
	// trailing ellipsis, 0 disables truncation.
	MaxLength int
	// LineSpacing is the line pitch in font heights, 1.25 when zero.
	LineSpacing float64
	// Static excludes the slot from value assignment during Fetch.
	Static bool
	// Transform overrides the default value formatting during Fetch.
	Transform Transform
}

type textSlot struct {
	pos         image.Point
	font        *graphics.Font
	color       Color
	anchor      graphics.Anchor
	scale       int
	wrap        int
	maxLength   int
	lineSpacing float64
	static      bool
	transform   Transform
	text        string          // last committed string
	label       *graphics.Label // nil while text is empty
}

// Options configures a board.
type Options struct {
	// Renderer receives the text slots. When nil, a graphics scene over
	// Display is built and exposed as the Graphics field.
	Renderer Renderer
	// Display is the panel behind the default scene. Ignored when Renderer
	// is set.
	Display graphics.Display
	// Source produces payloads for Fetch. Fetch fails without one.
	Source DataSource
	// Fonts loads slot fonts, a fresh graphics.FontCache when nil.
	Fonts FontLoader
	// URL is the default fetch endpoint.
	URL string
	// Headers are added to every fetch request.
	Headers map[string]string
	// JSONPaths select the values extracted from JSON payloads.
	JSONPaths []extract.Path
	// RegexPaths are capture group patterns applied when no JSON paths are
	// configured.
	RegexPaths []string
	// DefaultBackground is the initial bottom layer, white when zero.
	DefaultBackground graphics.Background
	// Debug logs operations.
	Debug bool
}

// MagTag owns the text slot registry and the fetch pipeline of one board.
type MagTag struct {
	// Graphics is the scene behind the default renderer, nil when a custom
	// Renderer was injected.
	Graphics *graphics.Graphics

	renderer   Renderer
	source     DataSource
	fonts      FontLoader
	url        string
	headers    map[string]string
	jsonPaths  []extract.Path
	regexPaths []string
	slots      []*textSlot
	debug      bool
}

// New assembles a board from its parts.
func New(opts Options) (*MagTag, error) {
	m := &MagTag{
		renderer:   opts.Renderer,
		source:     opts.Source,
		fonts:      opts.Fonts,
		url:        opts.URL,
		headers:    opts.Headers,
		jsonPaths:  opts.JSONPaths,
		regexPaths: opts.RegexPaths,
		debug:      opts.Debug,
	}
	if m.renderer == nil {
		if opts.Display == nil {
			return nil, &InvalidArgumentError{Name: "options", Reason: "need a Renderer or a Display"}
		}
		g := graphics.New(opts.Display, &graphics.Opts{
			Background: opts.DefaultBackground,
			Debug:      opts.Debug,
		})
		m.Graphics = g
		m.renderer = g
	}
	if m.fonts == nil {
		m.fonts = graphics.NewFontCache(0)
	}
	return m, nil
}

// AddText registers a new text slot and returns its index. The slot shows
// nothing until its first SetText.
func (m *MagTag) AddText(opts TextOptions) (int, error) {
	slot, err := m.newSlot(opts)
	if err != nil {
		return 0, err
	}
	m.slots = append(m.slots, slot)
	index := len(m.slots) - 1
	m.debugf("added text slot %d at %v", index, slot.pos)
	return index, nil
}

func (m *MagTag) newSlot(opts TextOptions) (*textSlot, error) {
	anchor := graphics.Anchor{X: 0, Y: 0.5}
	if opts.Anchor != nil {
		anchor = *opts.Anchor
		if anchor.X < 0 || anchor.X > 1 || anchor.Y < 0 || anchor.Y > 1 {
			return nil, &InvalidArgumentError{
				Name:   "anchor",
				Reason: fmt.Sprintf("components (%v, %v) must be within [0, 1]", anchor.X, anchor.Y),
			}
		}
	}
	scale := 1
	if !math.IsNaN(opts.Scale) && !math.IsInf(opts.Scale, 0) {
		// Ties round to even: scale 2.5 gives 2, 3.5 gives 4.
		if s := int(math.RoundToEven(opts.Scale)); s > 1 {
			scale = s
		}
	}
	wrap := opts.Wrap
	if wrap < 0 {
		wrap = 0
	}
	maxLength := opts.MaxLength
	if maxLength < 0 {
		maxLength = 0
	}
	lineSpacing := opts.LineSpacing
	if lineSpacing <= 0 {
		lineSpacing = 1.25
	}
	font := graphics.Builtin()
	if opts.Font != "" {
		f, err := m.fonts.Load(opts.Font)
		if err != nil {
			return nil, err
		}
		font = f
	}
	return &textSlot{
		pos:         opts.Position,
		font:        font,
		color:       opts.Color,
		anchor:      anchor,
		scale:       scale,
		wrap:        wrap,
		maxLength:   maxLength,
		lineSpacing: lineSpacing,
		static:      opts.Static,
		transform:   opts.Transform,
	}, nil
}

// SetText commits val to the slot at index, converted to a string the way
// fmt.Sprint does. nil or an empty string removes the slot's label from the
// scene, a later non-empty commit brings it back at the same stacking
// position. A first SetText on a board with no slots registers a default
// slot. With autoRefresh the panel refreshes once.
func (m *MagTag) SetText(val any, index int, autoRefresh bool) error {
	if err := m.setText(val, index); err != nil {
		return err
	}
	if autoRefresh {
		return m.renderer.Refresh()
	}
	return nil
}

func (m *MagTag) setText(val any, index int) error {
	if len(m.slots) == 0 {
		if _, err := m.AddText(TextOptions{}); err != nil {
			return err
		}
	}
	if index < 0 || index >= len(m.slots) {
		return &SlotRangeError{Index: index, Count: len(m.slots)}
	}
	slot := m.slots[index]
	text := stringify(val)
	if slot.maxLength > 0 {
		text = truncate(text, slot.maxLength)
	}
	slot.text = text
	if text == "" {
		if slot.label != nil {
			m.renderer.Remove(index)
			slot.label = nil
		}
		m.debugf("slot %d cleared", index)
		return nil
	}
	slot.label = &graphics.Label{
		Text:        text,
		Font:        slot.font,
		Color:       slot.color.NRGBA(),
		Scale:       slot.scale,
		LineSpacing: slot.lineSpacing,
		Anchor:      slot.anchor,
		Position:    slot.pos,
	}
	m.renderer.Show(index, slot.label)
	m.debugf("slot %d shows %q", index, text)
	return nil
}

func stringify(val any) string {
	if val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// truncate shortens text to maxLength characters, ellipsis included.
func truncate(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	keep := maxLength - 3
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + "..."
}

// SetTextColor changes the color of the slot at index, taking effect with
// the next refresh. It accepts anything ParseColor does.
func (m *MagTag) SetTextColor(val any, index int) error {
	if index < 0 || index >= len(m.slots) {
		return &SlotRangeError{Index: index, Count: len(m.slots)}
	}
	c, err := ParseColor(val)
	if err != nil {
		return err
	}
	slot := m.slots[index]
	slot.color = c
	if slot.label != nil {
		slot.label.Color = c.NRGBA()
	}
	return nil
}

// RemoveAllText unregisters every slot and removes their labels from the
// scene. With clearFonts the font cache is dropped too. With autoRefresh the
// panel refreshes once at the end.
func (m *MagTag) RemoveAllText(autoRefresh, clearFonts bool) error {
	for i, slot := range m.slots {
		if slot.label != nil {
			m.renderer.Remove(i)
			slot.label = nil
		}
	}
	m.slots = nil
	if clearFonts {
		m.fonts.Clear()
	}
	if autoRefresh {
		return m.renderer.Refresh()
	}
	return nil
}

// Refresh pushes the current scene to the panel, waiting out a busy panel.
func (m *MagTag) Refresh() error {
	return m.renderer.Refresh()
}

const defaultGlyphs = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ!,. \"'?!"

// PreloadFont rasterizes glyphs for the slot at index ahead of the first
// draw, a default set of digits, letters and punctuation when glyphs is
// empty.
func (m *MagTag) PreloadFont(glyphs string, index int) error {
	if index < 0 || index >= len(m.slots) {
		return &SlotRangeError{Index: index, Count: len(m.slots)}
	}
	if glyphs == "" {
		glyphs = defaultGlyphs
	}
	m.slots[index].font.Preload(glyphs)
	return nil
}

// SetBackground replaces the scene background behind all text. It needs the
// default renderer.
func (m *MagTag) SetBackground(bg graphics.Background, at image.Point) error {
	if m.Graphics == nil {
		return fmt.Errorf("magtag: no graphics scene attached")
	}
	return m.Graphics.SetBackground(bg, at)
}

// QRCode draws a QR code above all text, in ink or black when nil. It needs
// the default renderer.
func (m *MagTag) QRCode(data []byte, scale int, at image.Point, ink color.Color) error {
	if m.Graphics == nil {
		return fmt.Errorf("magtag: no graphics scene attached")
	}
	return m.Graphics.QRCode(data, scale, at, ink)
}

// URL returns the default fetch endpoint.
func (m *MagTag) URL() string {
	return m.url
}

// SetURL replaces the default fetch endpoint.
func (m *MagTag) SetURL(url string) {
	m.url = url
}

// Headers returns the extra request headers.
func (m *MagTag) Headers() map[string]string {
	return m.headers
}

// SetHeaders replaces the extra request headers.
func (m *MagTag) SetHeaders(h map[string]string) {
	m.headers = h
}

// JSONPaths returns the configured JSON traversal paths.
func (m *MagTag) JSONPaths() []extract.Path {
	return m.jsonPaths
}

// SetJSONPaths replaces the JSON traversal paths.
func (m *MagTag) SetJSONPaths(paths ...extract.Path) {
	m.jsonPaths = paths
}

// RegexPaths returns the configured regex capture patterns.
func (m *MagTag) RegexPaths() []string {
	return m.regexPaths
}

// SetRegexPaths replaces the regex capture patterns.
func (m *MagTag) SetRegexPaths(patterns ...string) {
	m.regexPaths = patterns
}

// TextCount returns the number of registered slots.
func (m *MagTag) TextCount() int {
	return len(m.slots)
}

// Text returns the last committed string of the slot at index.
func (m *MagTag) Text(index int) (string, error) {
	if index < 0 || index >= len(m.slots) {
		return "", &SlotRangeError{Index: index, Count: len(m.slots)}
	}
	return m.slots[index].text, nil
}

func (m *MagTag) debugf(format string, args ...any) {
	if m.debug {
		log.Printf("magtag: "+format, args...)
	}
}
