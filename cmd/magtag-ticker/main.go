// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command magtag-ticker polls a feed and renders the extracted values into
// the text slots of an e-paper board. A TOML settings file picks the panel,
// the feed and the slot layout; see the boardconfig package.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/portalbase/magtag"
	"github.com/portalbase/magtag/boardconfig"
	"github.com/portalbase/magtag/epdsim"
	"github.com/portalbase/magtag/graphics"
	"github.com/portalbase/magtag/il0373"
	"github.com/portalbase/magtag/neopixel"
	"github.com/portalbase/magtag/network"
)

func main() {
	configPath := flag.String("config", "magtag.toml", "path of the settings file")
	once := flag.Bool("once", false, "fetch a single time and exit")
	debug := flag.Bool("debug", false, "log every operation")
	flag.Parse()

	cfg, err := boardconfig.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Source.URL == "" {
		log.Fatal("the settings file configures no source URL")
	}

	disp, err := openDisplay(&cfg.Display)
	if err != nil {
		log.Fatal(err)
	}
	strip, err := openStrip(&cfg.Strip)
	if err != nil {
		log.Fatal(err)
	}

	client := &network.Client{Debug: *debug}
	if strip != nil {
		client.Status = strip
		defer strip.Halt()
	}

	board, err := magtag.New(magtag.Options{
		Display:    disp,
		Source:     client,
		URL:        cfg.Source.URL,
		Headers:    cfg.Source.Headers,
		JSONPaths:  cfg.Source.Paths(),
		RegexPaths: cfg.Source.RegexPaths,
		Debug:      *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	for i, slot := range cfg.Slots {
		opts, err := slot.TextOptions()
		if err != nil {
			log.Fatal(err)
		}
		if _, err := board.AddText(opts); err != nil {
			log.Fatalf("adding slot %d: %v", i, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timeout := time.Duration(cfg.Source.Timeout)
	interval := time.Duration(cfg.Source.Interval)
	for {
		values, err := board.Fetch(ctx, &magtag.FetchOptions{Timeout: timeout})
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			log.Printf("fetch failed: %v", err)
		default:
			log.Printf("showing %v", values)
		}
		if *once {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// openDisplay builds the configured panel. For the simulator this also
// starts the HTTP server that streams the panel content.
func openDisplay(cfg *boardconfig.Display) (graphics.Display, error) {
	if cfg.Driver == "sim" {
		opts := simOptions(cfg.Profile)
		d := epdsim.New(&opts)
		go func() {
			log.Printf("simulated panel on http://localhost%s", cfg.Listen)
			if err := http.ListenAndServe(cfg.Listen, d); err != nil {
				log.Fatal(err)
			}
		}()
		return d, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, err
	}
	opts := panelOptions(cfg.Profile)
	if cfg.DC == "" {
		return il0373.NewHat(port, opts)
	}
	dc := gpioreg.ByName(cfg.DC)
	cs := gpioreg.ByName(cfg.CS)
	rst := gpioreg.ByName(cfg.Reset)
	busy := gpioreg.ByName(cfg.Busy)
	if dc == nil || cs == nil || rst == nil || busy == nil {
		return nil, fmt.Errorf("unknown pin among dc=%q cs=%q reset=%q busy=%q",
			cfg.DC, cfg.CS, cfg.Reset, cfg.Busy)
	}
	return il0373.New(port, dc, cs, rst, busy, opts)
}

func panelOptions(profile string) *il0373.Opts {
	switch profile {
	case "2in9":
		return &il0373.EPD2in9
	case "2in13-flexible":
		return &il0373.EPD2in13Flexible
	default:
		return &il0373.EPD2in9Gray
	}
}

// simOptions mirrors the logical bounds of the hardware profiles.
func simOptions(profile string) epdsim.Options {
	switch profile {
	case "2in9":
		return epdsim.Options{Width: 296, Height: 128, BW: true, RefreshTime: 2 * time.Second}
	case "2in13-flexible":
		return epdsim.Options{Width: 104, Height: 212, BW: true, RefreshTime: 2 * time.Second}
	default:
		return epdsim.Options{Width: 296, Height: 128, RefreshTime: 2 * time.Second}
	}
}

// openStrip builds the status strip, nil when disabled.
func openStrip(cfg *boardconfig.Strip) (neopixel.Strip, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Terminal {
		return neopixel.NewTerm(&neopixel.TermOpts{NumPixels: cfg.Pixels}), nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, err
	}
	opts := neopixel.Opts{
		NumPixels:  cfg.Pixels,
		Brightness: cfg.Brightness,
	}
	if cfg.Power != "" {
		if opts.Power = gpioreg.ByName(cfg.Power); opts.Power == nil {
			return nil, fmt.Errorf("unknown strip power pin %q", cfg.Power)
		}
	}
	return neopixel.New(port, &opts)
}
