// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package il0373

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	sendByte(byte)
	waitUntilIdle()
}

// initDisplay powers the panel on using the waveforms factory programmed
// into the controller.
func initDisplay(ctrl controller, opts *Opts) {
	ctrl.sendCommand(powerSetting)
	ctrl.sendData([]byte{0x03, 0x00, 0x2B, 0x2B, 0x09})

	ctrl.sendCommand(boosterSoftStart)
	ctrl.sendData([]byte{0x17, 0x17, 0x17})

	ctrl.sendCommand(powerOn)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(panelSetting)
	ctrl.sendData([]byte{0xCF, 0x08})

	ctrl.sendCommand(pllControl)
	// 150 Hz frame rate
	ctrl.sendByte(0x29)

	ctrl.sendCommand(resolutionSetting)
	ctrl.sendData([]byte{byte(opts.Width), byte(opts.Height >> 8), byte(opts.Height)})

	ctrl.sendCommand(vcmDCSetting)
	ctrl.sendByte(0x0A)

	ctrl.sendCommand(vcomDataInterval)
	ctrl.sendByte(0x37)
}

// initDisplayGray powers the panel on with register based waveforms that add
// two intermediate gray shades.
func initDisplayGray(ctrl controller, opts *Opts) {
	ctrl.sendCommand(powerSetting)
	ctrl.sendData([]byte{0x03, 0x00, 0x2B, 0x2B, 0x13})

	ctrl.sendCommand(boosterSoftStart)
	ctrl.sendData([]byte{0x17, 0x17, 0x17})

	ctrl.sendCommand(powerOn)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(panelSetting)
	// Black and white mode with the LUT taken from registers 0x20..0x24.
	ctrl.sendByte(0x3F)

	ctrl.sendCommand(pllControl)
	// 50 Hz frame rate
	ctrl.sendByte(0x3C)

	ctrl.sendCommand(resolutionSetting)
	ctrl.sendData([]byte{byte(opts.Width), byte(opts.Height >> 8), byte(opts.Height)})

	ctrl.sendCommand(vcmDCSetting)
	ctrl.sendByte(0x12)

	ctrl.sendCommand(vcomDataInterval)
	ctrl.sendByte(0x97)

	setGrayLUT(ctrl)
}

// sleepDisplay floats the border, powers the source drivers off and enters
// deep sleep. A hardware reset is required to wake the controller.
func sleepDisplay(ctrl controller) {
	ctrl.sendCommand(vcomDataInterval)
	ctrl.sendByte(0x17)

	ctrl.sendCommand(vcmDCSetting)
	ctrl.sendByte(0x00)

	ctrl.sendCommand(powerOff)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(deepSleep)
	ctrl.sendByte(0xA5)
}

// refreshDisplay starts a refresh from RAM. The controller pulls the busy
// line low until the refresh is done.
func refreshDisplay(ctrl controller) {
	ctrl.sendCommand(displayRefresh)
}

// setGrayLUT programs the waveform tables for four gray levels. The VCOM
// table is 44 bytes, the four source tables 42 bytes each.
func setGrayLUT(ctrl controller) {
	ctrl.sendCommand(vcomLUT)
	ctrl.sendData(lutVcomGray)

	ctrl.sendCommand(w2wLUT)
	ctrl.sendData(lutW2WGray)

	ctrl.sendCommand(b2wLUT)
	ctrl.sendData(lutB2WGray)

	ctrl.sendCommand(w2bLUT)
	ctrl.sendData(lutW2BGray)

	ctrl.sendCommand(b2bLUT)
	ctrl.sendData(lutB2BGray)
}

var (
	lutVcomGray = []byte{
		0x00, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x60, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x13, 0x0A, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}

	lutW2WGray = []byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x10, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0xA0, 0x13, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	lutB2WGray = []byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x99, 0x0C, 0x01, 0x03, 0x04, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	lutW2BGray = []byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x99, 0x0B, 0x04, 0x04, 0x01, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	lutB2BGray = []byte{
		0x80, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x20, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x50, 0x13, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)
