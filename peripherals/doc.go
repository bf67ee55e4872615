// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package peripherals drives the small hardware around the e-paper panel:
// the front buttons, the LC709203F battery fuel gauge, an ambient light
// reading through an MCP3008 analog to digital converter and the speaker
// amplifier.
//
// Every part is independent. Open only what the board actually has wired.
package peripherals
