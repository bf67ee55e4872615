// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package neopixel drives a short strip of WS2812 addressable LEDs.
//
// Dev talks to the real thing over SPI, encoding each data bit into three
// SPI bits so that an ordinary SPI port generates the timing the LEDs
// expect. Term emulates a strip on the terminal with ANSI colors, useful
// while developing without hardware.
//
// Both implement Strip and can serve as the fetch status light.
package neopixel

import (
	"fmt"
	"image/color"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Strip is a strip of individually addressable color LEDs.
type Strip interface {
	// Fill sets all pixels to the same color.
	Fill(c color.NRGBA) error
	// SetPixel sets a single pixel.
	SetPixel(i int, c color.NRGBA) error
	// Len returns the number of pixels.
	Len() int
	// Halt turns all pixels off.
	Halt() error
}

// Opts holds the strip configuration.
type Opts struct {
	// NumPixels is the number of LEDs on the strip.
	NumPixels int

	// Brightness scales all channels, 0 < Brightness <= 1.
	Brightness float64

	// Power is the strip's power gate, active low. Left nil the strip is
	// assumed to be permanently powered.
	Power gpio.PinOut
}

// DefaultOpts is the configuration of the four pixel strip fitted to badge
// style boards.
var DefaultOpts = Opts{
	NumPixels:  4,
	Brightness: 0.3,
}

// Dev is a WS2812 strip on an SPI port.
type Dev struct {
	c          conn.Conn
	brightness float64
	power      gpio.PinOut
	powered    bool
	pixels     []color.NRGBA
}

// New opens a strip on the given SPI port. Only the MOSI line is used; it
// must be wired to the data input of the first LED. A configured power gate
// is switched on here and off again by Halt.
func New(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.NumPixels <= 0 {
		return nil, fmt.Errorf("neopixel: invalid pixel count %d", opts.NumPixels)
	}
	brightness := opts.Brightness
	if brightness == 0 {
		brightness = 1
	}
	if brightness < 0 || brightness > 1 {
		return nil, fmt.Errorf("neopixel: invalid brightness %g", opts.Brightness)
	}

	// 2.4 MHz makes each SPI bit 416 ns, three of them approximate one
	// 1.25 µs WS2812 bit slot.
	c, err := p.Connect(2400*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	d := &Dev{
		c:          c,
		brightness: brightness,
		power:      opts.Power,
		pixels:     make([]color.NRGBA, opts.NumPixels),
	}
	if err := d.powerOn(); err != nil {
		return nil, err
	}
	return d, nil
}

// Fill sets all pixels to the same color.
func (d *Dev) Fill(c color.NRGBA) error {
	for i := range d.pixels {
		d.pixels[i] = c
	}
	return d.write()
}

// SetPixel sets a single pixel.
func (d *Dev) SetPixel(i int, c color.NRGBA) error {
	if i < 0 || i >= len(d.pixels) {
		return fmt.Errorf("neopixel: pixel %d out of range, strip has %d", i, len(d.pixels))
	}
	d.pixels[i] = c
	return d.write()
}

// Len returns the number of pixels.
func (d *Dev) Len() int {
	return len(d.pixels)
}

// Halt turns all pixels off and cuts the strip's power when a gate is
// configured. The next Fill or SetPixel powers the strip back up.
func (d *Dev) Halt() error {
	if err := d.Fill(color.NRGBA{}); err != nil {
		return err
	}
	if d.power != nil && d.powered {
		if err := d.power.Out(gpio.High); err != nil {
			return fmt.Errorf("neopixel: cutting strip power: %w", err)
		}
		d.powered = false
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("neopixel.Dev{%d}", len(d.pixels))
}

// latchBytes holds the data line low long enough for the strip to latch the
// frame, 100 µs at 2.4 MHz.
const latchBytes = 30

func (d *Dev) powerOn() error {
	if d.power == nil || d.powered {
		return nil
	}
	if err := d.power.Out(gpio.Low); err != nil {
		return fmt.Errorf("neopixel: powering strip: %w", err)
	}
	d.powered = true
	return nil
}

func (d *Dev) write() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	buf := make([]byte, 0, 9*len(d.pixels)+latchBytes)

	for _, px := range d.pixels {
		// WS2812 wants green first.
		for _, ch := range [3]uint8{px.G, px.R, px.B} {
			e := expandByte(uint8(float64(ch) * d.brightness))
			buf = append(buf, e[0], e[1], e[2])
		}
	}
	buf = append(buf, make([]byte, latchBytes)...)

	return d.c.Tx(buf, nil)
}

// expandByte turns one data byte into three SPI bytes, encoding a 0 bit as
// 100 and a 1 bit as 110, most significant bit first.
func expandByte(b uint8) [3]byte {
	var out uint32
	for i := 7; i >= 0; i-- {
		out <<= 3
		if b&(1<<uint(i)) != 0 {
			out |= 0b110
		} else {
			out |= 0b100
		}
	}
	return [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
}

var _ Strip = &Dev{}
