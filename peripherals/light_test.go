// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import (
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestLightSensorRead(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				// Channel 2, reading 0x29A out of the conversion.
				{W: []byte{0x01, 0xA0, 0x00}, R: []byte{0x00, 0x02, 0x9A}},
			},
		},
	}
	ls, err := NewLightSensor(pb, 2)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ls.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x29A {
		t.Fatalf("Read() = %d, want %d", got, 0x29A)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLightSensorClampsToTenBits(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				// Only the low two bits of the second byte count.
				{W: []byte{0x01, 0x80, 0x00}, R: []byte{0xFF, 0xFF, 0xFF}},
			},
		},
	}
	ls, err := NewLightSensor(pb, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ls.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1023 {
		t.Fatalf("Read() = %d, want 1023", got)
	}
}

func TestNewLightSensorRejectsChannel(t *testing.T) {
	for _, ch := range []int{-1, 8} {
		if _, err := NewLightSensor(&spitest.Playback{}, ch); err == nil {
			t.Fatalf("NewLightSensor(ch=%d) did not fail", ch)
		}
	}
}
