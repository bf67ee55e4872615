// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdsim

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// ImageFormat selects the encoding used for streamed frames.
type ImageFormat int

const (
	PNG ImageFormat = iota
	JPEG

	// DefaultFormat is the format used when not set explicitly in options
	// or as a URL parameter.
	DefaultFormat = PNG
)

func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	default:
		return fmt.Sprint(int(f))
	}
}

func (f ImageFormat) mimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func parseImageFormat(value string) (ImageFormat, error) {
	switch value {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}

	return DefaultFormat, fmt.Errorf("unrecognized image format %q", value)
}

// pngEncoder trades compression for encoding speed. Panel frames are tiny
// and mostly flat areas anyway.
var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

var jpegOptions = jpeg.Options{Quality: 90}

type imageConfig struct {
	format ImageFormat
}

func (d *Display) configFromQuery(values url.Values) (imageConfig, error) {
	cfg := imageConfig{
		format: d.defaultFormat,
	}

	if value := values.Get("format"); value != "" {
		format, err := parseImageFormat(value)
		if err != nil {
			return imageConfig{}, err
		}
		cfg.format = format
	}

	return cfg, nil
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// bufferChangedLocked drops cached snapshots and wakes all streaming
// clients.
func (d *Display) bufferChangedLocked() {
	for cfg := range d.snapshot {
		delete(d.snapshot, cfg)
	}

	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (d *Display) terminateClientsLocked() {
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

func (d *Display) encodeBufferLocked(format ImageFormat) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case PNG:
		if err := pngEncoder.Encode(&buf, d.buffer); err != nil {
			return nil, err
		}

	case JPEG:
		if err := jpeg.Encode(&buf, d.buffer, &jpegOptions); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unhandled image format %s", format)
	}

	return buf.Bytes(), nil
}

// grabSnapshot returns the current frame in encoded form, reusing the cached
// encoding when the buffer has not changed since. The returned slice must be
// treated as read only.
func (d *Display) grabSnapshot(cfg imageConfig) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	encoded, ok := d.snapshot[cfg]
	if !ok {
		var err error

		encoded, err = d.encodeBufferLocked(cfg.format)
		if err != nil {
			return nil, err
		}
		d.snapshot[cfg] = encoded
	}

	return encoded, nil
}

// ServeHTTP handles GET requests with a never ending stream of frames, one
// part per refresh. Clients can override the configured image format with
// the "format" parameter ("?format=png", "?format=jpeg").
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := d.configFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stream := newFrameStream(w, cfg.format)
	w.Header().Set("Content-Type", stream.contentType())

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}

	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
	}()

	for {
		payload, err := d.grabSnapshot(cfg)
		if err != nil {
			// Mid-stream there is no way to deliver an error message to
			// the client anymore.
			return
		}

		if err := stream.writeFrame(payload); err != nil {
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// frameStream emits encoded panel frames as the parts of a never ending
// multipart/x-mixed-replace entity. Every part carries the same image
// Content-Type and is terminated as soon as its body is out, so the viewer
// repaints on the frame it just received instead of waiting for the next
// one. The "mime/multipart".Writer closes an entity exactly once and cannot
// produce that shape.
type frameStream struct {
	w        io.Writer
	boundary string
	mimeType string
	started  bool
}

func newFrameStream(w io.Writer, format ImageFormat) *frameStream {
	// RFC 2046 section 5.1.1 caps the boundary at 70 characters.
	var b [16]byte
	rand.Read(b[:]) // never fails
	return &frameStream{
		w:        w,
		boundary: fmt.Sprintf("epdsim%x", b[:]),
		mimeType: format.mimeType(),
	}
}

// contentType returns the value for the response level Content-Type header.
func (s *frameStream) contentType() string {
	return mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
		"boundary": s.boundary,
	})
}

// writeFrame sends one frame, fully terminated by the time it returns. The
// whole part goes out as a single write so a slow client never observes a
// half announced frame.
func (s *frameStream) writeFrame(frame []byte) error {
	var buf bytes.Buffer
	if !s.started {
		fmt.Fprintf(&buf, "--%s\r\n", s.boundary)
		s.started = true
	}
	fmt.Fprintf(&buf, "Content-Type: %s\r\nContent-Length: %d\r\n\r\n", s.mimeType, len(frame))
	buf.Write(frame)
	fmt.Fprintf(&buf, "\r\n--%s\r\n", s.boundary)
	_, err := buf.WriteTo(s.w)
	return err
}
