// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command magtag-hello is the board self test: it shows a greeting on the
// panel and wires the four front buttons to LED colors and tones. While a
// button is held the strip lights up in that button's color; released, the
// strip powers down. With -sim the panel renders into the HTTP simulator
// instead of hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/portalbase/magtag"
	"github.com/portalbase/magtag/epdsim"
	"github.com/portalbase/magtag/graphics"
	"github.com/portalbase/magtag/il0373"
	"github.com/portalbase/magtag/neopixel"
	"github.com/portalbase/magtag/peripherals"
)

// One color and one tone per front button, A through D.
var (
	buttonColors = []color.NRGBA{
		{R: 0xFF, A: 0xFF},
		{R: 0xFF, G: 0x96, A: 0xFF},
		{G: 0xFF, B: 0xFF, A: 0xFF},
		{R: 0xB4, B: 0xFF, A: 0xFF},
	}
	buttonTones = []float64{1047, 1318, 1568, 2093}
)

func main() {
	sim := flag.Bool("sim", false, "render to the HTTP simulator instead of hardware")
	listen := flag.String("listen", ":8080", "simulator address")
	bw := flag.Bool("bw", false, "drive the panel in pure black and white")
	buttonPins := flag.String("buttons", "GPIO5,GPIO6,GPIO16,GPIO24",
		"comma separated front button pins, empty disables them")
	speakerPin := flag.String("speaker", "", "amplifier enable pin, empty disables tones")
	battery := flag.Bool("battery", false, "report the fuel gauge at startup")
	adc := flag.String("adc-spi", "", "SPI port of the light sensor ADC, empty disables it")
	flag.Parse()

	disp, err := openDisplay(*sim, *listen, *bw)
	if err != nil {
		log.Fatal(err)
	}

	board, err := magtag.New(magtag.Options{Display: disp})
	if err != nil {
		log.Fatal(err)
	}
	b := board.Graphics.Bounds()
	slot, err := board.AddText(magtag.TextOptions{
		Position: image.Pt(50, b.Dy()/2-1),
		Scale:    3,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := board.SetText("Hello World", slot, true); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *sim {
		// Nothing to press. Keep serving until interrupted.
		<-ctx.Done()
		return
	}

	reportSensors(*battery, *adc)

	strip := openStrip()
	defer strip.Halt()

	var spk *peripherals.Speaker
	if *speakerPin != "" {
		pin := gpioreg.ByName(*speakerPin)
		if pin == nil {
			log.Fatalf("unknown speaker pin %q", *speakerPin)
		}
		if spk, err = peripherals.NewSpeaker(pin); err != nil {
			log.Fatal(err)
		}
	}

	buttons, err := openButtons(*buttonPins)
	if err != nil {
		log.Fatal(err)
	}
	if len(buttons) == 0 {
		<-ctx.Done()
		return
	}

	log.Printf("watching %d front buttons", len(buttons))
	held := -1
	for ctx.Err() == nil {
		hit := -1
		for i, btn := range buttons {
			if btn.Pressed() {
				hit = i
				break
			}
		}
		switch {
		case hit >= 0:
			if hit != held {
				log.Printf("button %c pressed", 'A'+hit)
			}
			if err := strip.Fill(buttonColors[hit%len(buttonColors)]); err != nil {
				log.Printf("strip: %v", err)
			}
			if spk != nil {
				if err := spk.Tone(buttonTones[hit%len(buttonTones)], 250*time.Millisecond); err != nil {
					log.Printf("tone: %v", err)
				}
			}
		case held >= 0:
			strip.Halt()
		}
		held = hit
		time.Sleep(10 * time.Millisecond)
	}
}

func openDisplay(sim bool, listen string, bw bool) (graphics.Display, error) {
	if sim {
		d := epdsim.New(&epdsim.Options{
			Width:       296,
			Height:      128,
			BW:          bw,
			RefreshTime: 2 * time.Second,
		})
		go func() {
			log.Printf("simulated panel on http://localhost%s", listen)
			if err := http.ListenAndServe(listen, d); err != nil {
				log.Fatal(err)
			}
		}()
		return d, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open("")
	if err != nil {
		return nil, err
	}
	opts := &il0373.EPD2in9Gray
	if bw {
		opts = &il0373.EPD2in9
	}
	return il0373.NewHat(port, opts)
}

// openStrip returns the hardware strip when one is reachable, the terminal
// strip otherwise.
func openStrip() neopixel.Strip {
	port, err := spireg.Open("SPI1.0")
	if err != nil {
		return neopixel.NewTerm(nil)
	}
	strip, err := neopixel.New(port, nil)
	if err != nil {
		return neopixel.NewTerm(nil)
	}
	return strip
}

func openButtons(pins string) ([]*peripherals.Button, error) {
	if pins == "" {
		return nil, nil
	}
	var buttons []*peripherals.Button
	for _, name := range strings.Split(pins, ",") {
		pin := gpioreg.ByName(strings.TrimSpace(name))
		if pin == nil {
			return nil, fmt.Errorf("unknown button pin %q", name)
		}
		btn, err := peripherals.NewButton(pin)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, btn)
	}
	return buttons, nil
}

// reportSensors logs one reading from the optional sensors.
func reportSensors(battery bool, adcPort string) {
	if battery {
		bus, err := i2creg.Open("")
		if err != nil {
			log.Printf("battery: %v", err)
		} else {
			defer bus.Close()
			if gauge, err := peripherals.NewBattery(bus); err != nil {
				log.Printf("battery: %v", err)
			} else if v, err := gauge.Voltage(); err != nil {
				log.Printf("battery: %v", err)
			} else if soc, err := gauge.StateOfCharge(); err != nil {
				log.Printf("battery: %v", err)
			} else {
				log.Printf("battery: %s, %d%% full", v, soc)
			}
		}
	}
	if adcPort != "" {
		port, err := spireg.Open(adcPort)
		if err != nil {
			log.Printf("light: %v", err)
			return
		}
		ls, err := peripherals.NewLightSensor(port, 0)
		if err != nil {
			log.Printf("light: %v", err)
			return
		}
		if level, err := ls.Read(); err != nil {
			log.Printf("light: %v", err)
		} else {
			log.Printf("light level: %d of 1023", level)
		}
	}
}
