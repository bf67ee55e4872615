// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// LC709203F battery fuel gauge. It speaks SMBus and protects every word
// with a packet error check byte.
const (
	gaugeAddress = 0x0B

	regCellVoltage   = 0x09
	regCurrentMode   = 0x15
	regStateOfCharge = 0x0F
)

// operationalMode keeps the gauge measuring instead of sleeping.
const operationalMode = 0x0001

// Battery reads the fuel gauge that monitors the LiPo cell.
type Battery struct {
	d *i2c.Dev
}

// NewBattery opens the fuel gauge on the bus and switches it into
// operational mode.
func NewBattery(b i2c.Bus) (*Battery, error) {
	dev := &Battery{d: &i2c.Dev{Bus: b, Addr: gaugeAddress}}
	if err := dev.writeWord(regCurrentMode, operationalMode); err != nil {
		return nil, fmt.Errorf("peripherals: waking fuel gauge: %w", err)
	}
	return dev, nil
}

// Voltage returns the cell voltage.
func (b *Battery) Voltage() (physic.ElectricPotential, error) {
	mv, err := b.readWord(regCellVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(mv) * physic.MilliVolt, nil
}

// StateOfCharge returns the remaining charge as a percentage of a full
// cell.
func (b *Battery) StateOfCharge() (int, error) {
	soc, err := b.readWord(regStateOfCharge)
	if err != nil {
		return 0, err
	}
	return int(soc), nil
}

func (b *Battery) String() string {
	return fmt.Sprintf("peripherals.Battery{%s}", b.d)
}

// readWord reads a 16 bit little endian register and validates the packet
// error check byte that follows it.
func (b *Battery) readWord(reg byte) (uint16, error) {
	var buf [3]byte
	if err := b.d.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	want := crc8PEC([]byte{gaugeAddress << 1, reg, gaugeAddress<<1 | 1, buf[0], buf[1]})
	if buf[2] != want {
		return 0, &CRCError{Register: reg, Got: buf[2], Want: want}
	}
	return uint16(buf[1])<<8 | uint16(buf[0]), nil
}

// writeWord writes a 16 bit little endian register with a trailing packet
// error check byte.
func (b *Battery) writeWord(reg byte, value uint16) error {
	lsb := byte(value)
	msb := byte(value >> 8)
	pec := crc8PEC([]byte{gaugeAddress << 1, reg, lsb, msb})
	return b.d.Tx([]byte{reg, lsb, msb, pec}, nil)
}

// crc8PEC computes the SMBus packet error check, a CRC-8 with polynomial
// x^8 + x^2 + x + 1 and a zero start value.
func crc8PEC(data []byte) byte {
	var crc byte
	for _, val := range data {
		crc ^= val
		for i := 0; i < 8; i++ {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = crc<<1 ^ 0x07
			}
		}
	}
	return crc
}
