// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"image"
	"image/color"
	"testing"

	"github.com/fogleman/gg"
)

func renderLabel(t *testing.T, w, h int, l *Label) image.Image {
	t.Helper()
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	if err := l.Draw(dc); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	return dc.Image()
}

// inkExtent returns the bounding box of all dark pixels.
func inkExtent(img image.Image) (image.Rectangle, bool) {
	var r image.Rectangle
	found := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 0x80 {
				px := image.Rect(x, y, x+1, y+1)
				if !found {
					r, found = px, true
				} else {
					r = r.Union(px)
				}
			}
		}
	}
	return r, found
}

func TestLabelTopLeftAnchor(t *testing.T) {
	img := renderLabel(t, 80, 40, &Label{Text: "Hi", Position: image.Pt(10, 8)})
	ink, ok := inkExtent(img)
	if !ok {
		t.Fatal("label drew no pixels")
	}
	// The 7x13 face advances 7 per glyph and spans ascent 11, descent 2.
	if ink.Min.X < 10 || ink.Max.X > 10+2*7 {
		t.Errorf("ink x range [%d, %d), want within [10, 24)", ink.Min.X, ink.Max.X)
	}
	if ink.Min.Y < 8 || ink.Max.Y > 8+13 {
		t.Errorf("ink y range [%d, %d), want within [8, 21)", ink.Min.Y, ink.Max.Y)
	}
}

func TestLabelAnchorRightEdge(t *testing.T) {
	img := renderLabel(t, 80, 40, &Label{Text: "Hi", Anchor: Anchor{X: 1, Y: 0}, Position: image.Pt(50, 4)})
	ink, ok := inkExtent(img)
	if !ok {
		t.Fatal("label drew no pixels")
	}
	if ink.Max.X > 50 {
		t.Errorf("ink extends to x=%d, want <= 50", ink.Max.X)
	}
	if ink.Max.X < 40 {
		t.Errorf("ink ends at x=%d, want close to the anchor at 50", ink.Max.X)
	}
}

func TestLabelScaleDoublesInk(t *testing.T) {
	one, ok1 := inkExtent(renderLabel(t, 120, 60, &Label{Text: "H", Position: image.Pt(2, 2)}))
	two, ok2 := inkExtent(renderLabel(t, 120, 60, &Label{Text: "H", Position: image.Pt(2, 2), Scale: 2}))
	if !ok1 || !ok2 {
		t.Fatal("label drew no pixels")
	}
	if got, want := two.Dx(), 2*one.Dx(); got < want-2 || got > want+2 {
		t.Errorf("scaled ink width = %d, want about %d", got, want)
	}
	if got, want := two.Dy(), 2*one.Dy(); got < want-2 || got > want+2 {
		t.Errorf("scaled ink height = %d, want about %d", got, want)
	}
}

func TestLabelMultilineStacksLines(t *testing.T) {
	single, ok1 := inkExtent(renderLabel(t, 80, 80, &Label{Text: "aa", Position: image.Pt(2, 2)}))
	double, ok2 := inkExtent(renderLabel(t, 80, 80, &Label{Text: "aa\naa", Position: image.Pt(2, 2), LineSpacing: 1.0}))
	if !ok1 || !ok2 {
		t.Fatal("label drew no pixels")
	}
	// With spacing 1.0 the second line repeats exactly one font height below.
	if got, want := double.Dy(), single.Dy()+13; got != want {
		t.Errorf("two line ink height = %d, want %d", got, want)
	}
}

func TestLabelEmptyTextDrawsNothing(t *testing.T) {
	if _, ok := inkExtent(renderLabel(t, 40, 20, &Label{})); ok {
		t.Error("empty label drew pixels")
	}
}

func TestLabelColor(t *testing.T) {
	img := renderLabel(t, 60, 30, &Label{
		Text:     "X",
		Color:    color.NRGBA{R: 0xFF, A: 0xFF},
		Position: image.Pt(4, 4),
	})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r0, g0, b0, _ := img.At(x, y).RGBA()
			if r0>>8 > 0xC0 && g0>>8 < 0x40 && b0>>8 < 0x40 {
				return
			}
		}
	}
	t.Error("no red pixels found, label color not applied")
}
