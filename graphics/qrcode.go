// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
)

type qrNode struct {
	bitmap [][]bool
	scale  int
	at     image.Point
	ink    color.Color
}

// QRCode renders data as a QR code with its top-left corner at the given
// position, each module scale pixels square and drawn in ink, black when
// nil. A later call replaces the previous code. The code draws above every
// other layer.
func (g *Graphics) QRCode(data []byte, scale int, at image.Point, ink color.Color) error {
	code, err := qrcode.New(string(data), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("graphics: encoding qr code: %w", err)
	}
	if scale < 1 {
		scale = 1
	}
	if ink == nil {
		ink = color.Black
	}
	g.qr = &qrNode{bitmap: code.Bitmap(), scale: scale, at: at, ink: ink}
	if g.autoRefresh {
		return g.Refresh()
	}
	return nil
}

func (n *qrNode) Draw(dc *gg.Context) error {
	size := len(n.bitmap)
	// White backing under the modules keeps the code scannable on top of a
	// busy background. The bitmap already includes the quiet zone.
	dc.SetColor(color.White)
	dc.DrawRectangle(float64(n.at.X), float64(n.at.Y), float64(size*n.scale), float64(size*n.scale))
	dc.Fill()
	dc.SetColor(n.ink)
	for y, row := range n.bitmap {
		for x, set := range row {
			if !set {
				continue
			}
			dc.DrawRectangle(float64(n.at.X+x*n.scale), float64(n.at.Y+y*n.scale), float64(n.scale), float64(n.scale))
		}
	}
	dc.Fill()
	return nil
}
