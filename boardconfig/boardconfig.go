// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package boardconfig loads the TOML settings file the demo commands run
// from: which display to drive and over which pins, where to fetch data,
// and how the text slots are laid out.
package boardconfig

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/portalbase/magtag"
	"github.com/portalbase/magtag/extract"
	"github.com/portalbase/magtag/graphics"
)

// Duration accepts TOML strings like "10s" or "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Display selects and wires the panel.
type Display struct {
	// Driver is "il0373" for hardware or "sim" for the HTTP simulator.
	Driver string `toml:"driver"`
	// Profile picks the panel variant: "2in9", "2in9-gray" or
	// "2in13-flexible".
	Profile string `toml:"profile"`
	// SPI is the port name, the first available port when empty.
	SPI string `toml:"spi"`
	// DC, CS, Reset and Busy name the control pins. Empty names select the
	// Raspberry Pi header defaults.
	DC    string `toml:"dc"`
	CS    string `toml:"cs"`
	Reset string `toml:"reset"`
	Busy  string `toml:"busy"`
	// Listen is the simulator's HTTP address.
	Listen string `toml:"listen"`
}

// Strip configures the status LED strip.
type Strip struct {
	Enabled bool `toml:"enabled"`
	// Pixels is the strip length.
	Pixels int `toml:"pixels"`
	// Brightness scales all channels, 0 through 1.
	Brightness float64 `toml:"brightness"`
	// SPI is the port driving the strip.
	SPI string `toml:"spi"`
	// Power names the strip's active low power gate pin, none when empty.
	Power string `toml:"power"`
	// Terminal renders the strip as ANSI blocks on stdout instead.
	Terminal bool `toml:"terminal"`
}

// Source describes the feed the ticker polls.
type Source struct {
	URL string `toml:"url"`
	// Timeout bounds one fetch.
	Timeout Duration `toml:"timeout"`
	// Interval is the pause between polls.
	Interval Duration `toml:"interval"`
	// Headers are added to every request.
	Headers map[string]string `toml:"headers"`
	// JSONPaths are key and index sequences into the JSON payload, one per
	// slot, like [["feed", 0, "title"]].
	JSONPaths [][]any `toml:"json_paths"`
	// RegexPaths are capture group patterns, used when JSONPaths is empty.
	RegexPaths []string `toml:"regex_paths"`
}

// Slot lays out one text slot.
type Slot struct {
	X int `toml:"x"`
	Y int `toml:"y"`
	// Font is a TTF path, the built-in fixed font when empty.
	Font string `toml:"font"`
	// Color is "#RRGGBB", "RRGGBB" or a 24-bit integer.
	Color any `toml:"color"`
	// Anchor is the [ax, ay] point of the text box pinned at X, Y.
	Anchor      []float64 `toml:"anchor"`
	Scale       float64   `toml:"scale"`
	Wrap        int       `toml:"wrap"`
	MaxLength   int       `toml:"max_length"`
	LineSpacing float64   `toml:"line_spacing"`
	Static      bool      `toml:"static"`
}

// Config is the root of the settings file.
type Config struct {
	Display Display `toml:"display"`
	Strip   Strip   `toml:"strip"`
	Source  Source  `toml:"source"`
	Slots   []Slot  `toml:"slot"`
}

// Default returns the settings a bare board runs with: the grayscale 2.9"
// panel on the Raspberry Pi header pins and a 4 pixel strip.
func Default() Config {
	return Config{
		Display: Display{
			Driver:  "il0373",
			Profile: "2in9-gray",
			Listen:  ":8080",
		},
		Strip: Strip{
			Enabled:    true,
			Pixels:     4,
			Brightness: 0.3,
		},
		Source: Source{
			Timeout:  Duration(10 * time.Second),
			Interval: Duration(5 * time.Minute),
		},
	}
}

// Load reads the TOML file at path on top of Default and validates the
// result. Unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg := Default()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("boardconfig: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("boardconfig: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Display.Driver {
	case "il0373", "sim":
	default:
		return fmt.Errorf("unknown display driver %q", c.Display.Driver)
	}
	switch c.Display.Profile {
	case "2in9", "2in9-gray", "2in13-flexible":
	default:
		return fmt.Errorf("unknown display profile %q", c.Display.Profile)
	}
	if c.Strip.Enabled && c.Strip.Pixels <= 0 {
		return fmt.Errorf("strip needs at least one pixel, have %d", c.Strip.Pixels)
	}
	if c.Strip.Brightness < 0 || c.Strip.Brightness > 1 {
		return fmt.Errorf("strip brightness %g out of range 0..1", c.Strip.Brightness)
	}
	for i, s := range c.Slots {
		if _, err := s.TextOptions(); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}

// Paths converts the configured JSON paths.
func (s *Source) Paths() []extract.Path {
	if len(s.JSONPaths) == 0 {
		return nil
	}
	paths := make([]extract.Path, len(s.JSONPaths))
	for i, p := range s.JSONPaths {
		paths[i] = extract.Path(p)
	}
	return paths
}

// TextOptions converts the slot layout into board options.
func (s *Slot) TextOptions() (magtag.TextOptions, error) {
	opts := magtag.TextOptions{
		Position:    image.Pt(s.X, s.Y),
		Font:        s.Font,
		Scale:       s.Scale,
		Wrap:        s.Wrap,
		MaxLength:   s.MaxLength,
		LineSpacing: s.LineSpacing,
		Static:      s.Static,
	}
	if s.Color != nil {
		c, err := magtag.ParseColor(s.Color)
		if err != nil {
			return magtag.TextOptions{}, err
		}
		opts.Color = c
	}
	switch len(s.Anchor) {
	case 0:
	case 2:
		opts.Anchor = &graphics.Anchor{X: s.Anchor[0], Y: s.Anchor[1]}
	default:
		return magtag.TextOptions{}, fmt.Errorf("anchor needs two components, have %d", len(s.Anchor))
	}
	return opts, nil
}
