// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package network fetches payloads for the display pipeline over HTTP, with
// an optional status light mirroring progress, plus a file-backed source for
// development without connectivity.
package network

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds a fetch when the caller does not say otherwise.
const DefaultTimeout = 10 * time.Second

// Fetch progress colors for the status light.
var (
	StatusFetching     = color.NRGBA{R: 200, G: 100, A: 0xFF}
	StatusDataReceived = color.NRGBA{B: 100, A: 0xFF}
	StatusHTTPError    = color.NRGBA{R: 100, A: 0xFF}
	StatusOff          = color.NRGBA{A: 0xFF}
)

// StatusLight is an RGB indicator mirroring fetch progress, usually the
// board's LED strip.
type StatusLight interface {
	Fill(c color.NRGBA) error
}

// A RequestError reports a fetch that failed or answered with a status other
// than 200.
type RequestError struct {
	URL    string
	Status int // HTTP status code, 0 when the request never completed
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("network: fetching %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("network: fetching %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// A TimeoutError reports a fetch that got no response in time.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("network: fetching %s: no response within %s", e.URL, e.Timeout)
}

// Client fetches payloads over HTTP.
type Client struct {
	// HTTP is the underlying client, http.DefaultClient when nil.
	HTTP *http.Client
	// Status, when set, mirrors fetch progress as colors.
	Status StatusLight
	// Debug logs requests.
	Debug bool
}

// Fetch retrieves url with the given extra headers and returns the response
// body. The request is bounded by timeout, DefaultTimeout when zero, on top
// of any deadline ctx already carries.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.setStatus(StatusFetching)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.setStatus(StatusHTTPError)
		return nil, &RequestError{URL: url, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.debugf("GET %s", url)
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		c.setStatus(StatusHTTPError)
		if isTimeout(err) {
			return nil, &TimeoutError{URL: url, Timeout: timeout}
		}
		return nil, &RequestError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.setStatus(StatusHTTPError)
		return nil, &RequestError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.setStatus(StatusHTTPError)
		if isTimeout(err) {
			return nil, &TimeoutError{URL: url, Timeout: timeout}
		}
		return nil, &RequestError{URL: url, Err: err}
	}
	c.debugf("GET %s: %d bytes", url, len(body))
	c.setStatus(StatusDataReceived)
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func (c *Client) setStatus(col color.NRGBA) {
	if c.Status == nil {
		return
	}
	if err := c.Status.Fill(col); err != nil {
		c.debugf("status light: %v", err)
	}
}

func (c *Client) debugf(format string, args ...any) {
	if c.Debug {
		log.Printf("network: "+format, args...)
	}
}

// Local serves fetches from a file on disk, standing in for Client during
// development. The requested URL, headers and timeout are ignored.
type Local struct {
	Path string
}

// Fetch returns the current contents of the backing file.
func (l *Local) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	body, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	return body, nil
}
