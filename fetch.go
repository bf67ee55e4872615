// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/portalbase/magtag/extract"
)

// DefaultFetchTimeout bounds a Fetch when FetchOptions does not say
// otherwise.
const DefaultFetchTimeout = 10 * time.Second

// FetchOptions adjusts one Fetch call. The zero value fetches the configured
// URL with DefaultFetchTimeout and refreshes the panel at the end.
type FetchOptions struct {
	// URL overrides the configured fetch endpoint.
	URL string
	// Timeout bounds the request, DefaultFetchTimeout when zero.
	Timeout time.Duration
	// NoRefresh leaves the panel untouched after committing the values.
	NoRefresh bool
}

// Fetch retrieves the endpoint, extracts one value per configured path,
// formats each and commits them to the non-static slots in registration
// order, then refreshes the panel exactly once. Formatting applies the
// slot's Transform when set, renders integral values with thousands
// separators otherwise, and wraps the result to the slot's line width.
//
// The raw extracted values are returned untouched by formatting, as a single
// value when there is exactly one, as a []any otherwise. Passing nil opts is
// the same as passing the zero value.
func (m *MagTag) Fetch(ctx context.Context, opts *FetchOptions) (any, error) {
	if opts == nil {
		opts = &FetchOptions{}
	}
	url := opts.URL
	if url == "" {
		url = m.url
	}
	if url == "" {
		return nil, &InvalidArgumentError{Name: "url", Reason: "no fetch endpoint configured"}
	}
	if m.source == nil {
		return nil, &InvalidArgumentError{Name: "source", Reason: "no data source configured"}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	m.debugf("fetching %s", url)
	body, err := m.source.Fetch(ctx, url, m.headers, timeout)
	if err != nil {
		return nil, err
	}
	values, err := extract.Extract(body, m.jsonPaths, m.regexPaths)
	if err != nil {
		return nil, err
	}
	if err := m.commitValues(values); err != nil {
		return nil, err
	}
	if !opts.NoRefresh {
		if err := m.renderer.Refresh(); err != nil {
			return nil, err
		}
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// commitValues assigns values to the non-static slots in registration order.
// Slots beyond the available values keep their text, values beyond the
// slots are dropped.
func (m *MagTag) commitValues(values []any) error {
	vi := 0
	for i, slot := range m.slots {
		if slot.static {
			continue
		}
		if vi >= len(values) {
			break
		}
		text := m.formatValue(slot, values[vi])
		vi++
		if err := m.setText(text, i); err != nil {
			return err
		}
	}
	return nil
}

func (m *MagTag) formatValue(slot *textSlot, v any) string {
	var text string
	if slot.transform != nil {
		text = slot.transform(v)
	} else {
		text = defaultFormat(v)
	}
	if slot.wrap > 0 {
		text = strings.Join(WrapNicely(text, slot.wrap), "\n")
	}
	return text
}

// defaultFormat renders integral values with thousands separators and
// everything else verbatim.
func defaultFormat(v any) string {
	if n, ok := intValue(v); ok {
		return comma(n)
	}
	return stringify(v)
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// comma formats n in decimal with a separator every three digits.
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
