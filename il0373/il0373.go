// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package il0373

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands
const (
	panelSetting           byte = 0x00
	powerSetting           byte = 0x01
	powerOff               byte = 0x02
	powerOffSequence       byte = 0x03
	powerOn                byte = 0x04
	powerOnMeasure         byte = 0x05
	boosterSoftStart       byte = 0x06
	deepSleep              byte = 0x07
	dataStartTransmission1 byte = 0x10
	dataStop               byte = 0x11
	displayRefresh         byte = 0x12
	dataStartTransmission2 byte = 0x13
	vcomLUT                byte = 0x20
	w2wLUT                 byte = 0x21
	b2wLUT                 byte = 0x22
	w2bLUT                 byte = 0x23
	b2bLUT                 byte = 0x24
	pllControl             byte = 0x30
	temperatureCalibration byte = 0x40
	temperatureSelect      byte = 0x41
	temperatureWrite       byte = 0x42
	temperatureRead        byte = 0x43
	vcomDataInterval       byte = 0x50
	lowPowerDetection      byte = 0x51
	tconSetting            byte = 0x60
	resolutionSetting      byte = 0x61
	gateSourceStart        byte = 0x65
	revisionRead           byte = 0x70
	statusRead             byte = 0x71
	autoMeasureVcom        byte = 0x80
	vcomValueRead          byte = 0x81
	vcmDCSetting           byte = 0x82
	partialWindow          byte = 0x90
	partialIn              byte = 0x91
	partialOut             byte = 0x92
)

// Corner describes a corner on the physical panel and is used to define the
// origin for drawing operations.
type Corner uint8

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// Mode selects how many shades the panel is driven with.
type Mode uint8

const (
	// BW drives the panel with one bit per pixel.
	BW Mode = iota
	// Gray4 drives the panel with two bits per pixel, adding two gray
	// shades between black and white.
	Gray4
)

// Opts holds the panel configuration.
type Opts struct {
	// Width and Height of the panel in its native portrait orientation.
	Width  int
	Height int

	// Origin selects the physical corner that maps to the top left of the
	// drawing coordinates, rotating the panel in steps of 90 degrees.
	Origin Corner

	// Mode selects black and white or four level gray drive.
	Mode Mode

	// RefreshInterval is the minimum pause between two refreshes. Busy
	// reports true until it has passed. Zero disables the pause, leaving
	// only the busy line.
	RefreshInterval time.Duration
}

// EPD2in9 contains the display configuration for the 2.9 inch 296x128
// monochrome panel, rotated to landscape.
var EPD2in9 = Opts{
	Width:           128,
	Height:          296,
	Origin:          TopRight,
	Mode:            BW,
	RefreshInterval: 5 * time.Second,
}

// EPD2in9Gray contains the display configuration for the 2.9 inch 296x128
// four level gray panel, rotated to landscape.
var EPD2in9Gray = Opts{
	Width:           128,
	Height:          296,
	Origin:          TopRight,
	Mode:            Gray4,
	RefreshInterval: 5 * time.Second,
}

// EPD2in13Flexible contains the display configuration for the 2.13 inch
// 212x104 flexible monochrome panel in portrait.
var EPD2in13Flexible = Opts{
	Width:           104,
	Height:          212,
	Origin:          TopLeft,
	Mode:            BW,
	RefreshInterval: 5 * time.Second,
}

// Dev defines the handler which is used to access the display.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	bounds image.Rectangle
	buffer *image.Gray
	opts   *Opts

	// nextReady gates Busy after a refresh has been started.
	nextReady time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// flipPt returns a new image.Point with the X and Y coordinates exchanged.
func flipPt(pt image.Point) image.Point {
	return image.Point{X: pt.Y, Y: pt.X}
}

// New creates a handler for the panel connected to the given SPI port. The
// panel is reset and programmed, ready for a first Draw.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("il0373: invalid panel size %dx%d", opts.Width, opts.Height)
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}

	displaySize := image.Pt(opts.Width, opts.Height)

	switch opts.Origin {
	case TopLeft, BottomRight:
	case TopRight, BottomLeft:
		displaySize = flipPt(displaySize)
	default:
		return nil, fmt.Errorf("il0373: unknown corner %v", opts.Origin)
	}

	d := &Dev{
		c:      c,
		dc:     dc,
		cs:     cs,
		rst:    rst,
		busy:   busy,
		bounds: image.Rectangle{Max: displaySize},
		buffer: image.NewGray(image.Rectangle{Max: displaySize}),
		opts:   opts,
		now:    time.Now,
		sleep:  time.Sleep,
	}

	// Default color
	draw.Src.Draw(d.buffer, d.buffer.Bounds(), &image.Uniform{color.White}, image.Point{})

	if err := d.Init(); err != nil {
		return nil, err
	}

	return d, nil
}

// NewHat creates a handler for a panel wired to the common e-paper bonnet
// pin assignment of a Raspberry Pi.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// Init resets the panel and programs the drive mode. It is called by New and
// only needs to be called again to wake the panel after Sleep.
func (d *Dev) Init() error {
	if err := d.reset(); err != nil {
		return err
	}

	eh := errorHandler{d: d}

	if d.opts.Mode == Gray4 {
		initDisplayGray(&eh, d.opts)
	} else {
		initDisplay(&eh, d.opts)
	}

	return eh.err
}

// Draw uploads the image to the panel and starts a refresh. Only full frame
// draws are supported. Draw returns once the refresh has started; Busy
// reports true until the panel accepts the next frame.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	if dstRect != d.bounds {
		return fmt.Errorf("il0373: only full frame draws are supported, got %v, want %v", dstRect, d.bounds)
	}

	draw.Src.Draw(d.buffer, dstRect, src, srcPts)

	eh := errorHandler{d: d}

	eh.waitUntilIdle()
	sendFrame(&eh, d.buffer, d.opts)

	if eh.err != nil {
		return eh.err
	}

	d.nextReady = d.now().Add(d.opts.RefreshInterval)
	return nil
}

// Busy reports whether the panel is refreshing or still inside the minimum
// interval between two refreshes. Drawing while Busy reports true blocks
// until the controller accepts data again.
func (d *Dev) Busy() bool {
	if d.now().Before(d.nextReady) {
		return true
	}
	return d.busy.Read() == gpio.Low
}

// Clear fills the panel with the given color.
func (d *Dev) Clear(c color.Color) error {
	return d.Draw(d.bounds, &image.Uniform{C: c}, image.Point{})
}

// ColorModel returns the color model matching the configured Mode.
func (d *Dev) ColorModel() color.Model {
	if d.opts.Mode == Gray4 {
		return color.GrayModel
	}
	return image1bit.BitModel
}

// Bounds returns the bounds for the configured display.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Sleep puts the panel into deep sleep with the charge pumps off. The last
// frame stays visible. Call Init to wake the panel up again.
func (d *Dev) Sleep() error {
	eh := errorHandler{d: d}

	eh.waitUntilIdle()
	sleepDisplay(&eh)

	return eh.err
}

// Halt clears the display.
func (d *Dev) Halt() error {
	return d.Clear(color.White)
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("il0373.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.bounds.Dx(), d.bounds.Dy())
}

// reset pulses the hardware reset line.
func (d *Dev) reset() error {
	eh := errorHandler{d: d}

	eh.rstOut(gpio.High)
	d.sleep(20 * time.Millisecond)
	eh.rstOut(gpio.Low)
	d.sleep(2 * time.Millisecond)
	eh.rstOut(gpio.High)
	d.sleep(20 * time.Millisecond)

	return eh.err
}

var _ display.Drawer = &Dev{}
