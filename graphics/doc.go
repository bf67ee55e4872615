// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package graphics composes labels, a background and an optional QR code
// into frames for an e-paper panel.
//
// The scene holds drawables in indexed slots whose stacking order is the
// order slots were first shown in. Refresh rasterizes the scene with
// github.com/fogleman/gg and pushes the frame through a display.Drawer,
// retrying with a fixed backoff for as long as the panel reports busy.
package graphics
