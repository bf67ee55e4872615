// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
)

// Anchor maps a point of a label's bounding box onto its Position: {0, 0}
// pins the top-left corner, {1, 1} the bottom-right, {0, 0.5} the middle of
// the left edge. Components are fractions in [0, 1].
type Anchor struct {
	X, Y float64
}

// Label is a multi-line block of text. Lines are separated by '\n', stacked
// with the given spacing and left-aligned inside a bounding box that is
// placed by anchor and position.
type Label struct {
	Text string
	// Font used for rendering, the built-in fixed font when nil.
	Font *Font
	// Color of the glyphs, black when nil.
	Color color.Color
	// Scale is an integer glyph magnification, minimum 1.
	Scale int
	// LineSpacing is the line pitch in multiples of the font height. Values
	// at or below zero select 1.25.
	LineSpacing float64
	Anchor      Anchor
	Position    image.Point
}

// Draw renders the label onto dc. An empty Text draws nothing.
func (l *Label) Draw(dc *gg.Context) error {
	if l.Text == "" {
		return nil
	}
	f := l.Font
	if f == nil {
		f = Builtin()
	}
	scale := l.Scale
	if scale < 1 {
		scale = 1
	}
	spacing := l.LineSpacing
	if spacing <= 0 {
		spacing = 1.25
	}
	col := l.Color
	if col == nil {
		col = color.Black
	}

	face := f.Face()
	dc.SetFontFace(face)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	height := float64(m.Height) / 64

	lines := strings.Split(l.Text, "\n")
	boxW := 0.0
	for _, line := range lines {
		if w, _ := dc.MeasureString(line); w > boxW {
			boxW = w
		}
	}
	boxH := height + height*spacing*float64(len(lines)-1)

	// The glyphs are drawn in font units under a scaling transform, so the
	// anchored box origin is computed in panel pixels first and divided back.
	s := float64(scale)
	x0 := float64(l.Position.X) - l.Anchor.X*boxW*s
	y0 := float64(l.Position.Y) - l.Anchor.Y*boxH*s

	dc.Push()
	dc.Scale(s, s)
	dc.SetColor(col)
	for i, line := range lines {
		baseline := y0/s + ascent + height*spacing*float64(i)
		dc.DrawString(line, x0/s, baseline)
	}
	dc.Pop()
	return nil
}
