// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package il0373 controls e-paper panels driven by the IL0373 controller.
//
// Datasheet:
// https://cdn-learn.adafruit.com/assets/assets/000/092/748/original/IL0373.pdf
//
// Product pages:
// 2.9 inch flexible monochrome: https://www.adafruit.com/product/4262
// 2.9 inch grayscale: https://www.adafruit.com/product/4800
//
// The controller is driven over 4-wire SPI plus a data/command line, a reset
// line and a busy line. Its RAM holds two planes of one bit per pixel. In
// black and white mode both planes carry the same frame; in four level gray
// mode the planes combine into a two bit shade per pixel, driven by waveform
// tables programmed into the controller registers.
//
// A refresh takes a few seconds. Draw starts the refresh and returns, Busy
// reports whether the panel is ready for the next frame.
package il0373
