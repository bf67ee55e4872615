// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import "fmt"

// CRCError is returned when a fuel gauge reply fails the SMBus packet
// error check.
type CRCError struct {
	// Register is the register that was being read.
	Register byte
	// Got is the checksum byte the gauge sent.
	Got byte
	// Want is the checksum computed over the transfer.
	Want byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("peripherals: checksum mismatch reading register %#02x: got %#02x, want %#02x", e.Register, e.Got, e.Want)
}
