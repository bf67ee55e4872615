// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"image"
	"log"
	"time"

	"github.com/fogleman/gg"
	"periph.io/x/conn/v3/display"
)

// Display is what the scene renders onto: the periph.io drawer contract plus
// a busy probe. Both physical panels and simulators satisfy it.
type Display interface {
	display.Drawer
	// Busy reports whether the panel is still processing the previous frame
	// and would not accept a new one right now.
	Busy() bool
}

// Drawable is anything that can paint itself onto a drawing context.
type Drawable interface {
	Draw(dc *gg.Context) error
}

// Opts holds the scene configuration.
type Opts struct {
	// Background fills the bottom layer before anything else draws. The
	// zero value selects a plain white background.
	Background Background
	// AutoRefresh pushes a frame after every background or QR code change
	// instead of waiting for an explicit Refresh.
	AutoRefresh bool
	// Backoff is the pause between attempts while the panel reports busy.
	Backoff time.Duration
	// Debug logs scene operations.
	Debug bool
}

// DefaultOpts is the recommended configuration: white background, refresh on
// every change, 100ms busy backoff.
var DefaultOpts = Opts{
	AutoRefresh: true,
	Backoff:     100 * time.Millisecond,
}

type node struct {
	slot int
	d    Drawable
}

// Graphics composes a background, slotted drawables and an optional QR code
// into frames for a Display.
type Graphics struct {
	disp        Display
	autoRefresh bool
	backoff     time.Duration
	debug       bool
	sleep       func(time.Duration)

	background Background
	bgAt       image.Point
	nodes      []node
	qr         *qrNode
}

// New returns a scene rendering to disp. Passing nil opts selects
// DefaultOpts. The panel is not touched until the first refresh.
func New(disp Display, opts *Opts) *Graphics {
	if opts == nil {
		opts = &DefaultOpts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultOpts.Backoff
	}
	bg := opts.Background
	if bg.kind == bgNone {
		bg = ColorBackground(0xFFFFFF)
	}
	return &Graphics{
		disp:        disp,
		autoRefresh: opts.AutoRefresh,
		backoff:     backoff,
		debug:       opts.Debug,
		sleep:       time.Sleep,
		background:  bg,
	}
}

// Display returns the panel the scene renders onto.
func (g *Graphics) Display() Display {
	return g.disp
}

// Bounds returns the panel dimensions.
func (g *Graphics) Bounds() image.Rectangle {
	return g.disp.Bounds()
}

// Show places d in the given slot. A slot that was shown before keeps its
// stacking position and only swaps content, a new slot stacks on top of the
// existing ones. The panel is not refreshed.
func (g *Graphics) Show(slot int, d Drawable) {
	for i := range g.nodes {
		if g.nodes[i].slot == slot {
			g.nodes[i].d = d
			return
		}
	}
	g.nodes = append(g.nodes, node{slot: slot, d: d})
}

// Remove drops the drawable in the given slot. Removing a slot that shows
// nothing is a no-op. The panel is not refreshed.
func (g *Graphics) Remove(slot int) {
	for i := range g.nodes {
		if g.nodes[i].slot == slot {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// SetBackground replaces the bottom layer. The offset positions image
// backgrounds, a color background always covers the whole panel. The zero
// Background selects plain white.
func (g *Graphics) SetBackground(bg Background, at image.Point) error {
	if bg.kind == bgNone {
		bg = ColorBackground(0xFFFFFF)
	}
	g.background = bg
	g.bgAt = at
	if g.autoRefresh {
		return g.Refresh()
	}
	return nil
}

// Refresh renders the scene and pushes the frame to the panel. While the
// panel reports busy, the attempt is repeated after the configured backoff,
// for as long as it takes.
func (g *Graphics) Refresh() error {
	img, err := g.render()
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		if !g.disp.Busy() {
			g.debugf("refresh: pushing frame, attempt %d", attempt)
			if err := g.disp.Draw(g.disp.Bounds(), img, image.Point{}); err != nil {
				return &DisplayError{Err: err}
			}
			return nil
		}
		g.debugf("refresh: panel busy, retrying in %s", g.backoff)
		g.sleep(g.backoff)
	}
}

func (g *Graphics) render() (image.Image, error) {
	b := g.disp.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	if err := g.background.draw(dc, g.bgAt); err != nil {
		return nil, err
	}
	for _, n := range g.nodes {
		if err := n.d.Draw(dc); err != nil {
			return nil, err
		}
	}
	if g.qr != nil {
		if err := g.qr.Draw(dc); err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

func (g *Graphics) debugf(format string, args ...any) {
	if g.debug {
		log.Printf("graphics: "+format, args...)
	}
}
