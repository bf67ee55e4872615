// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package il0373

import "image"

// sendFrame uploads both RAM planes of the buffered frame followed by a
// refresh start.
func sendFrame(ctrl controller, buf *image.Gray, opts *Opts) {
	ctrl.sendCommand(dataStartTransmission1)
	ctrl.sendData(packPlane(buf, opts, 1))

	ctrl.sendCommand(dataStartTransmission2)
	ctrl.sendData(packPlane(buf, opts, 0))

	refreshDisplay(ctrl)
}

// grayLevel quantizes a luminance value to the two bit level the waveforms
// distinguish, with 0 full black and 3 full white. In black and white mode
// only the extremes are produced so that both planes carry the same frame.
func grayLevel(y uint8, mode Mode) uint8 {
	if mode == Gray4 {
		return y >> 6
	}
	if y >= 0x80 {
		return 3
	}
	return 0
}

// nativeAt returns the luminance of the buffer pixel shown at the native
// portrait coordinates (nx, ny), undoing the Origin rotation.
func nativeAt(buf *image.Gray, opts *Opts, nx, ny int) uint8 {
	switch opts.Origin {
	case TopRight:
		return buf.GrayAt(ny, opts.Width-1-nx).Y
	case BottomRight:
		return buf.GrayAt(opts.Width-1-nx, opts.Height-1-ny).Y
	case BottomLeft:
		return buf.GrayAt(opts.Height-1-ny, nx).Y
	default:
		return buf.GrayAt(nx, ny).Y
	}
}

// packPlane serializes one bit plane of the native portrait frame, one bit
// per pixel with the leftmost pixel in the most significant bit.
func packPlane(buf *image.Gray, opts *Opts, bit uint) []byte {
	stride := (opts.Width + 7) / 8
	out := make([]byte, stride*opts.Height)

	for ny := 0; ny < opts.Height; ny++ {
		row := out[ny*stride:]
		for nx := 0; nx < opts.Width; nx++ {
			if grayLevel(nativeAt(buf, opts, nx, ny), opts.Mode)&(1<<bit) != 0 {
				row[nx/8] |= 0x80 >> (nx % 8)
			}
		}
	}

	return out
}
