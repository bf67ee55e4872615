// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import "fmt"

// An InvalidArgumentError reports a parameter outside its documented range,
// such as an anchor component beyond [0, 1].
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "magtag: invalid " + e.Name + ": " + e.Reason
}

// A SlotRangeError reports a text slot index that does not exist in the
// registry.
type SlotRangeError struct {
	Index int
	Count int
}

func (e *SlotRangeError) Error() string {
	return fmt.Sprintf("magtag: text slot %d out of range, %d slot(s) registered", e.Index, e.Count)
}
