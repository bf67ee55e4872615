// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package peripherals

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"periph.io/x/conn/v3/gpio"
)

// player abstracts the audio backend so tests can intercept playback.
type player interface {
	init(sr beep.SampleRate, bufferSize int) error
	play(s ...beep.Streamer)
}

// beepPlayer sends audio to the default output device.
type beepPlayer struct{}

func (beepPlayer) init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (beepPlayer) play(s ...beep.Streamer) {
	speaker.Play(s...)
}

// Speaker plays tones and WAV clips through the onboard amplifier. The
// amplifier draws current whenever it is enabled, so it is only switched
// on for the duration of a clip.
type Speaker struct {
	enable gpio.PinOut
	rate   beep.SampleRate
	p      player
}

// NewSpeaker opens the audio output and keeps the amplifier behind the
// enable pin switched off until something plays.
func NewSpeaker(enable gpio.PinOut) (*Speaker, error) {
	s := &Speaker{enable: enable, rate: 44100, p: beepPlayer{}}
	if err := s.p.init(s.rate, int(s.rate)/10); err != nil {
		return nil, fmt.Errorf("peripherals: opening audio output: %w", err)
	}
	if err := enable.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("peripherals: disabling amplifier: %w", err)
	}
	return s, nil
}

// Tone plays a sine wave at the given frequency and blocks until it ends.
func (s *Speaker) Tone(freq float64, d time.Duration) error {
	if freq <= 0 || d <= 0 {
		return fmt.Errorf("peripherals: cannot play %gHz for %s", freq, d)
	}
	tone, err := generators.SinTone(s.rate, int(freq))
	if err != nil {
		return err
	}
	return s.play(beep.Take(s.rate.N(d), tone))
}

// PlayWAV plays a WAV file from disk and blocks until it ends.
func (s *Speaker) PlayWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("peripherals: decoding %s: %w", path, err)
	}
	defer streamer.Close()
	var str beep.Streamer = streamer
	if format.SampleRate != s.rate {
		str = beep.Resample(4, format.SampleRate, s.rate, streamer)
	}
	return s.play(str)
}

func (s *Speaker) String() string {
	return fmt.Sprintf("peripherals.Speaker{%s}", s.enable)
}

// play runs the streamer with the amplifier enabled and blocks until the
// stream drains.
func (s *Speaker) play(streamer beep.Streamer) error {
	if err := s.enable.Out(gpio.High); err != nil {
		return err
	}
	done := make(chan struct{})
	s.p.play(beep.Seq(streamer, beep.Callback(func() { close(done) })))
	<-done
	return s.enable.Out(gpio.Low)
}
