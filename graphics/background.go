// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

type backgroundKind int

const (
	bgNone backgroundKind = iota
	bgColor
	bgImage
)

// Background is the bottom layer of a scene: either a solid color or an
// image file loaded from disk.
type Background struct {
	kind backgroundKind
	c    color.NRGBA
	path string
}

// ColorBackground returns a solid background from a 24-bit 0xRRGGBB value.
func ColorBackground(rgb uint32) Background {
	return Background{
		kind: bgColor,
		c:    color.NRGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xFF},
	}
}

// ImageBackground returns a background read from the image file at path.
// BMP, PNG, JPEG, GIF and TIFF files work. The file is reopened on every
// render, so replacing it on disk takes effect on the next refresh.
func ImageBackground(path string) Background {
	return Background{kind: bgImage, path: path}
}

func (b Background) draw(dc *gg.Context, at image.Point) error {
	switch b.kind {
	case bgColor:
		dc.SetColor(b.c)
		dc.Clear()
	case bgImage:
		img, err := imaging.Open(b.path)
		if err != nil {
			return fmt.Errorf("graphics: background %q: %w", b.path, err)
		}
		dc.DrawImage(img, at.X, at.Y)
	}
	return nil
}
