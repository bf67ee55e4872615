// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package neopixel

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// TermOpts holds the terminal emulator configuration.
type TermOpts struct {
	// NumPixels is the number of emulated LEDs.
	NumPixels int

	// Palette maps colors to terminal codes. Defaults to ansi256.Default.
	Palette *ansi256.Palette

	// Writer receives the ANSI output. Defaults to a color capable stdout.
	Writer io.Writer
}

// Term emulates a strip on the terminal, repainting a row of colored blocks
// in place on every change.
type Term struct {
	w       io.Writer
	palette ansi256.Palette
	pixels  []color.NRGBA
	buf     bytes.Buffer
}

// NewTerm returns a strip that displays at the console.
func NewTerm(opts *TermOpts) *Term {
	if opts == nil {
		opts = &TermOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	n := opts.NumPixels
	if n <= 0 {
		n = DefaultOpts.NumPixels
	}
	return &Term{
		w:       w,
		palette: *p,
		pixels:  make([]color.NRGBA, n),
	}
}

// Fill sets all pixels to the same color.
func (t *Term) Fill(c color.NRGBA) error {
	for i := range t.pixels {
		t.pixels[i] = c
	}
	return t.refresh()
}

// SetPixel sets a single pixel.
func (t *Term) SetPixel(i int, c color.NRGBA) error {
	if i < 0 || i >= len(t.pixels) {
		return fmt.Errorf("neopixel: pixel %d out of range, strip has %d", i, len(t.pixels))
	}
	t.pixels[i] = c
	return t.refresh()
}

// Len returns the number of pixels.
func (t *Term) Len() int {
	return len(t.pixels)
}

// Halt resets the terminal colors and moves to a fresh line.
func (t *Term) Halt() error {
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

func (t *Term) String() string {
	return "neopixel.Term"
}

func (t *Term) refresh() error {
	t.buf.Reset()
	_, _ = t.buf.WriteString("\r\033[0m")
	for _, px := range t.pixels {
		_, _ = io.WriteString(&t.buf, t.palette.Block(px))
	}
	_, _ = t.buf.WriteString("\033[0m ")
	_, err := t.buf.WriteTo(t.w)
	return err
}

var _ Strip = &Term{}
