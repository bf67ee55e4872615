// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package magtag drives an e-paper badge board: a registry of indexed text
// slots laid out on the panel, committed by hand or filled from fetched
// JSON or regex values, with every change coalesced into a single panel
// refresh.
//
// The scene behind the slots lives in package graphics, payload retrieval
// in package network, value extraction in package extract. The il0373 and
// epdsim packages provide a physical and a simulated panel, neopixel and
// peripherals the rest of the board.
package magtag
