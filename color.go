// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB color in 0xRRGGBB form, the convention used for text,
// background and LED color parameters throughout this package.
type Color uint32

// Black and White are the two colors every supported panel can show.
const (
	Black Color = 0x000000
	White Color = 0xFFFFFF
)

// NRGBA returns the equivalent fully opaque image/color value.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
}

// RGB returns the three 8-bit channels of c.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// ParseColor converts v into a Color. Accepted forms are a Color, any signed
// or unsigned integer holding a 24-bit value, an image/color value, or a
// string in "#RRGGBB", "RRGGBB", "#RGB" or "0xRRGGBB" form.
func ParseColor(v any) (Color, error) {
	switch c := v.(type) {
	case Color:
		return c & 0xFFFFFF, nil
	case int:
		return intColor(int64(c))
	case int32:
		return intColor(int64(c))
	case int64:
		return intColor(c)
	case uint32:
		return Color(c) & 0xFFFFFF, nil
	case uint64:
		return intColor(int64(c))
	case color.Color:
		r, g, b, _ := c.RGBA()
		return Color(r>>8)<<16 | Color(g>>8)<<8 | Color(b>>8), nil
	case string:
		return parseColorString(c)
	default:
		return 0, &InvalidArgumentError{Name: "color", Reason: fmt.Sprintf("cannot convert %T", v)}
	}
}

func intColor(v int64) (Color, error) {
	if v < 0 || v > 0xFFFFFF {
		return 0, &InvalidArgumentError{Name: "color", Reason: fmt.Sprintf("%#x outside 24-bit range", v)}
	}
	return Color(v), nil
}

func parseColorString(s string) (Color, error) {
	orig := s
	s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(s) == 3 {
		// Expand the #RGB shorthand by doubling each nibble.
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, &InvalidArgumentError{Name: "color", Reason: fmt.Sprintf("%q is not a hex color", orig)}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, &InvalidArgumentError{Name: "color", Reason: fmt.Sprintf("%q is not a hex color", orig)}
	}
	return Color(v), nil
}
