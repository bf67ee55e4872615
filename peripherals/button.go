// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Button is one of the front buttons. The switch shorts the line to ground,
// so the pin reads low while the button is held down.
type Button struct {
	pin gpio.PinIn
}

// NewButton configures pin as a button input with the internal pull up
// enabled and edge detection armed for presses.
func NewButton(pin gpio.PinIn) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("peripherals: configuring button %s: %w", pin, err)
	}
	return &Button{pin: pin}, nil
}

// Pressed reports whether the button is currently held down.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// WaitForPress blocks until the button is pressed or the timeout expires
// and reports whether a press was seen. A negative timeout blocks
// indefinitely.
func (b *Button) WaitForPress(timeout time.Duration) bool {
	return b.pin.WaitForEdge(timeout)
}

func (b *Button) String() string {
	return fmt.Sprintf("peripherals.Button{%s}", b.pin)
}
