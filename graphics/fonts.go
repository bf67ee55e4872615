// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is the pixel size TTF fonts are rasterized at before any
// per-label scaling.
const DefaultFontSize = 13

// Font is a rasterizable typeface at a fixed base size.
type Font struct {
	name string
	face font.Face
}

var builtin = &Font{name: "builtin", face: basicfont.Face7x13}

// Builtin returns the fixed 7x13 font compiled into the binary. It needs no
// file on disk and renders crisply on 1-bit panels.
func Builtin() *Font {
	return builtin
}

// Name returns the base name of the font file, or "builtin".
func (f *Font) Name() string {
	return f.name
}

// Face returns the glyph source for rendering.
func (f *Font) Face() font.Face {
	return f.face
}

// Preload rasterizes the given glyphs now so later draws render from cache.
func (f *Font) Preload(glyphs string) {
	for _, r := range glyphs {
		f.face.Glyph(fixed.Point26_6{}, r)
	}
}

// FontCache loads TTF files and hands out one Font per path.
type FontCache struct {
	size  float64
	fonts map[string]*Font
}

// NewFontCache returns a cache rasterizing fonts at the given pixel size, or
// DefaultFontSize when size is zero or negative.
func NewFontCache(size float64) *FontCache {
	if size <= 0 {
		size = DefaultFontSize
	}
	return &FontCache{size: size, fonts: map[string]*Font{}}
}

// Load parses the TTF file at path, or returns the Font from an earlier load
// of the same path.
func (c *FontCache) Load(path string) (*Font, error) {
	if f, ok := c.fonts[path]; ok {
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	ttf, err := truetype.Parse(raw)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f := &Font{
		name: filepath.Base(path),
		face: truetype.NewFace(ttf, &truetype.Options{Size: c.size, DPI: 72}),
	}
	c.fonts[path] = f
	return f, nil
}

// Clear drops every cached font.
func (c *FontCache) Clear() {
	c.fonts = map[string]*Font{}
}
