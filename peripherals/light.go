// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// LightSensor reads the ambient light level through one channel of an
// MCP3008 analog to digital converter.
type LightSensor struct {
	c       conn.Conn
	channel int
}

// NewLightSensor opens the converter on the SPI port and samples the given
// channel, 0 through 7.
func NewLightSensor(p spi.Port, channel int) (*LightSensor, error) {
	if channel < 0 || channel > 7 {
		return nil, fmt.Errorf("peripherals: ADC channel %d out of range 0..7", channel)
	}
	c, err := p.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("peripherals: connecting to ADC: %w", err)
	}
	return &LightSensor{c: c, channel: channel}, nil
}

// Read returns the current light level, 0 for darkness up to 1023 for the
// brightest reading the 10 bit converter can make.
func (l *LightSensor) Read() (int, error) {
	// Start bit, then single-ended conversion of the channel.
	w := []byte{0x01, byte(0x80 | l.channel<<4), 0x00}
	r := make([]byte, 3)
	if err := l.c.Tx(w, r); err != nil {
		return 0, err
	}
	return int(r[1]&0x03)<<8 | int(r[2]), nil
}

func (l *LightSensor) String() string {
	return fmt.Sprintf("peripherals.LightSensor{%s, ch%d}", l.c, l.channel)
}
