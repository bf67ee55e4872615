// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdsim simulates an e-paper panel in software.
//
// Display implements the same drawing contract as a real panel driver,
// including the slow refresh: after a Draw the display reports Busy for a
// configurable time. Pixels snap to the shades an e-paper panel can produce,
// four gray levels by default or pure black and white.
//
// Display also implements an HTTP request handler streaming the panel
// content as a sequence of images over a "multipart/x-mixed-replace"
// response, the MJPEG technique used by IP cameras. Point a browser at the
// handler to watch the simulated panel live. Clients get an initial snapshot
// and an update on every refresh. The image format defaults to PNG; JPEG can
// be selected via Options.Format or the "format" URL parameter.
package epdsim

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"
)

// Options for the simulated panel.
type Options struct {
	// Width and Height of the simulated panel.
	Width, Height int

	// BW restricts the panel to pure black and white instead of four gray
	// levels.
	BW bool

	// RefreshTime is how long the panel stays busy after a Draw. Zero
	// makes refreshes instant.
	RefreshTime time.Duration

	// Format specifies the image format to send to streaming clients.
	Format ImageFormat
}

// Display is a simulated e-paper panel.
type Display struct {
	defaultFormat ImageFormat
	refreshTime   time.Duration
	bw            bool

	now func() time.Time

	mu       sync.Mutex
	buffer   *image.Gray
	readyAt  time.Time
	clients  map[*client]struct{}
	snapshot map[imageConfig][]byte
}

var _ display.Drawer = (*Display)(nil)
var _ http.Handler = (*Display)(nil)

// New creates a simulated panel. The initial content is white, like an
// e-paper panel that has been cleared.
func New(opt *Options) *Display {
	buffer := image.NewGray(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(buffer, buffer.Bounds(), image.White, image.Point{}, draw.Src)

	return &Display{
		defaultFormat: opt.Format,
		refreshTime:   opt.RefreshTime,
		bw:            opt.BW,
		now:           time.Now,
		buffer:        buffer,
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
	}
}

// String returns the name of the device.
func (d *Display) String() string {
	return fmt.Sprintf("epdsim.Display{%dx%d}", d.buffer.Rect.Dx(), d.buffer.Rect.Dy())
}

// Halt terminates all running client requests asynchronously.
func (d *Display) Halt() error {
	d.mu.Lock()
	d.terminateClientsLocked()
	d.mu.Unlock()

	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Draw implements display.Drawer. The drawn area is quantized to the
// simulated shades and the panel reports Busy for the configured refresh
// time.
func (d *Display) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	d.mu.Lock()
	draw.Draw(d.buffer, dstRect, src, srcPts, draw.Src)
	d.quantizeLocked(dstRect)
	d.readyAt = d.now().Add(d.refreshTime)
	d.bufferChangedLocked()
	d.mu.Unlock()

	return nil
}

// Busy reports whether the simulated refresh is still running.
func (d *Display) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.now().Before(d.readyAt)
}

// quantizeLocked snaps the given area to the shades the panel can produce.
func (d *Display) quantizeLocked(r image.Rectangle) {
	r = r.Intersect(d.buffer.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := d.buffer.PixOffset(x, y)
			d.buffer.Pix[i] = d.shade(d.buffer.Pix[i])
		}
	}
}

func (d *Display) shade(y uint8) uint8 {
	if d.bw {
		if y >= 0x80 {
			return 0xFF
		}
		return 0x00
	}
	return (y >> 6) * 0x55
}
