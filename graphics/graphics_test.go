// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
)

type fakePanel struct {
	bounds    image.Rectangle
	busySeq   []bool
	busyCalls int
	draws     int
	last      image.Image
	failDraw  error
}

func (p *fakePanel) String() string {
	return "fakePanel"
}

func (p *fakePanel) Halt() error {
	return nil
}

func (p *fakePanel) ColorModel() color.Model {
	return color.GrayModel
}

func (p *fakePanel) Bounds() image.Rectangle {
	return p.bounds
}

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.draws++
	p.last = src
	return p.failDraw
}

func (p *fakePanel) Busy() bool {
	p.busyCalls++
	if len(p.busySeq) == 0 {
		return false
	}
	b := p.busySeq[0]
	p.busySeq = p.busySeq[1:]
	return b
}

func newTestScene(p *fakePanel) (*Graphics, *[]time.Duration) {
	g := New(p, &Opts{Backoff: 42 * time.Millisecond})
	sleeps := &[]time.Duration{}
	g.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return g, sleeps
}

func TestRefreshWaitsOutBusyPanel(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 32, 16), busySeq: []bool{true, true}}
	g, sleeps := newTestScene(p)
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p.busyCalls != 3 {
		t.Errorf("busy probes = %d, want 3", p.busyCalls)
	}
	if p.draws != 1 {
		t.Errorf("frames pushed = %d, want 1", p.draws)
	}
	want := []time.Duration{42 * time.Millisecond, 42 * time.Millisecond}
	if diff := cmp.Diff(*sleeps, want); diff != "" {
		t.Errorf("backoff sleeps difference (-got +want):\n%s", diff)
	}
}

func slotOrder(g *Graphics) []int {
	order := make([]int, 0, len(g.nodes))
	for _, n := range g.nodes {
		order = append(order, n.slot)
	}
	return order
}

func TestShowKeepsStackingOrder(t *testing.T) {
	g, _ := newTestScene(&fakePanel{bounds: image.Rect(0, 0, 32, 16)})
	first := &Label{Text: "first"}
	second := &Label{Text: "second"}
	replacement := &Label{Text: "replacement"}
	g.Show(0, first)
	g.Show(1, second)
	g.Show(0, replacement)
	if diff := cmp.Diff(slotOrder(g), []int{0, 1}); diff != "" {
		t.Errorf("slot order difference (-got +want):\n%s", diff)
	}
	if g.nodes[0].d != Drawable(replacement) {
		t.Error("slot 0 does not show the replacement label")
	}
	g.Remove(0)
	if diff := cmp.Diff(slotOrder(g), []int{1}); diff != "" {
		t.Errorf("slot order after Remove difference (-got +want):\n%s", diff)
	}
	g.Remove(7)
	if len(g.nodes) != 1 {
		t.Error("Remove of an empty slot changed the scene")
	}
}

func TestAutoRefreshOnBackgroundAndQRCode(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 32, 16)}
	g := New(p, &Opts{AutoRefresh: true})
	g.sleep = func(time.Duration) {}
	if err := g.SetBackground(ColorBackground(0x000000), image.Point{}); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if err := g.QRCode([]byte("https://example.org"), 1, image.Point{}, nil); err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if p.draws != 2 {
		t.Errorf("frames pushed = %d, want 2", p.draws)
	}
}

func TestNoRefreshWithoutAutoRefresh(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 32, 16)}
	g, _ := newTestScene(p)
	if err := g.SetBackground(ColorBackground(0x000000), image.Point{}); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if err := g.QRCode([]byte("x"), 1, image.Point{}, nil); err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	g.Show(0, &Label{Text: "x"})
	g.Remove(0)
	if p.draws != 0 {
		t.Errorf("frames pushed = %d, want 0", p.draws)
	}
}

func TestRefreshRendersScene(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 64, 32)}
	g, _ := newTestScene(p)
	g.Show(0, &Label{Text: "Hi", Position: image.Pt(4, 16), Anchor: Anchor{0, 0.5}})
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p.last == nil {
		t.Fatal("no frame pushed")
	}
	if _, ok := inkExtent(p.last); !ok {
		t.Error("frame has no dark pixels, label not rendered")
	}
	if c := color.GrayModel.Convert(p.last.At(0, 0)).(color.Gray); c.Y < 0xF0 {
		t.Errorf("background pixel (0,0) = %d, want near white", c.Y)
	}
}

func TestRefreshReportsDrawError(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 8, 8), failDraw: errors.New("boom")}
	g, _ := newTestScene(p)
	err := g.Refresh()
	var dispErr *DisplayError
	if !errors.As(err, &dispErr) {
		t.Fatalf("Refresh error = %v, want DisplayError", err)
	}
}

func TestImageBackground(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	if err := imaging.Save(imaging.New(4, 4, color.NRGBA{R: 0xFF, A: 0xFF}), path); err != nil {
		t.Fatal(err)
	}
	p := &fakePanel{bounds: image.Rect(0, 0, 16, 16)}
	g, _ := newTestScene(p)
	if err := g.SetBackground(ImageBackground(path), image.Pt(6, 6)); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	r0, g0, b0, _ := p.last.At(7, 7).RGBA()
	if r0>>8 != 0xFF || g0>>8 != 0 || b0>>8 != 0 {
		t.Errorf("pixel inside background image = #%02X%02X%02X, want red", r0>>8, g0>>8, b0>>8)
	}
	if c := color.GrayModel.Convert(p.last.At(1, 1)).(color.Gray); c.Y < 0xF0 {
		t.Errorf("pixel outside background image = %d, want white", c.Y)
	}
}

func TestImageBackgroundMissingFile(t *testing.T) {
	g, _ := newTestScene(&fakePanel{bounds: image.Rect(0, 0, 8, 8)})
	if err := g.SetBackground(ImageBackground(filepath.Join(t.TempDir(), "missing.png")), image.Point{}); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if err := g.Refresh(); err == nil {
		t.Error("Refresh with a missing background image: expected error")
	}
}

func TestQRCodeDrawsFinderPattern(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 64, 64)}
	g, _ := newTestScene(p)
	if err := g.QRCode([]byte("https://example.org"), 1, image.Pt(0, 0), nil); err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c := color.GrayModel.Convert(p.last.At(1, 1)).(color.Gray); c.Y < 0xF0 {
		t.Errorf("quiet zone pixel = %d, want white", c.Y)
	}
	if c := color.GrayModel.Convert(p.last.At(6, 6)).(color.Gray); c.Y > 0x40 {
		t.Errorf("finder pattern pixel = %d, want black", c.Y)
	}
}

func TestQRCodeInk(t *testing.T) {
	p := &fakePanel{bounds: image.Rect(0, 0, 64, 64)}
	g, _ := newTestScene(p)
	if err := g.QRCode([]byte("https://example.org"), 1, image.Pt(0, 0), color.NRGBA{R: 0xFF, A: 0xFF}); err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	r0, g0, b0, _ := p.last.At(6, 6).RGBA()
	if r0>>8 != 0xFF || g0>>8 != 0 || b0>>8 != 0 {
		t.Errorf("finder pattern pixel = #%02X%02X%02X, want red", r0>>8, g0>>8, b0>>8)
	}
}
