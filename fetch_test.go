// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/portalbase/magtag/extract"
)

type fakeSource struct {
	body     []byte
	err      error
	urls     []string
	headers  []map[string]string
	timeouts []time.Duration
}

func (s *fakeSource) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	s.urls = append(s.urls, url)
	s.headers = append(s.headers, headers)
	s.timeouts = append(s.timeouts, timeout)
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func TestFetchSingleValue(t *testing.T) {
	src := &fakeSource{body: []byte(`{"a": {"b": 42}}`)}
	m, r := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		Headers:   map[string]string{"X-Api-Key": "secret"},
		JSONPaths: []extract.Path{{"a", "b"}},
	})
	if _, err := m.AddText(TextOptions{}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// A single configured path returns the bare value, not a one-element
	// slice.
	if got != any(float64(42)) {
		t.Errorf("Fetch() = %v (%T), want 42", got, got)
	}
	if text, _ := m.Text(0); text != "42" {
		t.Errorf("Text(0) = %q, want %q", text, "42")
	}
	if r.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", r.refreshes)
	}
	if diff := cmp.Diff(src.urls, []string{"https://api.example/data"}); diff != "" {
		t.Errorf("fetched urls difference (-got +want):\n%s", diff)
	}
	if src.headers[0]["X-Api-Key"] != "secret" {
		t.Errorf("headers = %v, want configured headers forwarded", src.headers[0])
	}
	if src.timeouts[0] != DefaultFetchTimeout {
		t.Errorf("timeout = %s, want %s", src.timeouts[0], DefaultFetchTimeout)
	}
}

func TestFetchManySlotsSingleRefresh(t *testing.T) {
	src := &fakeSource{body: []byte(`{"x": 1, "y": 2, "z": 3}`)}
	m, r := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		JSONPaths: []extract.Path{{"x"}, {"y"}, {"z"}},
	})
	for i := 0; i < 3; i++ {
		if _, err := m.AddText(TextOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := m.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if diff := cmp.Diff(got, []any{float64(1), float64(2), float64(3)}); diff != "" {
		t.Errorf("Fetch() difference (-got +want):\n%s", diff)
	}
	for i, want := range []string{"1", "2", "3"} {
		if text, _ := m.Text(i); text != want {
			t.Errorf("Text(%d) = %q, want %q", i, text, want)
		}
	}
	if r.refreshes != 1 {
		t.Errorf("refreshes = %d, want exactly 1 for the whole commit", r.refreshes)
	}
}

func TestFetchThousandsFormatting(t *testing.T) {
	for _, tc := range []struct {
		body string
		want string
	}{
		{`{"n": 1234567}`, "1,234,567"},
		{`{"n": -1234567}`, "-1,234,567"},
		{`{"n": 999}`, "999"},
		{`{"n": "1234"}`, "1,234"},
		{`{"n": 42.9}`, "42"},
		{`{"n": "19.99"}`, "19.99"},
		{`{"n": "sold out"}`, "sold out"},
	} {
		src := &fakeSource{body: []byte(tc.body)}
		m, _ := newTestBoard(t, Options{
			Source:    src,
			URL:       "https://api.example/data",
			JSONPaths: []extract.Path{{"n"}},
		})
		if _, err := m.AddText(TextOptions{}); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Fetch(context.Background(), nil); err != nil {
			t.Fatalf("Fetch(%s): %v", tc.body, err)
		}
		if text, _ := m.Text(0); text != tc.want {
			t.Errorf("Text(0) for %s = %q, want %q", tc.body, text, tc.want)
		}
	}
}

func TestFetchTransform(t *testing.T) {
	src := &fakeSource{body: []byte(`{"n": 1234567}`)}
	m, _ := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		JSONPaths: []extract.Path{{"n"}},
	})
	_, err := m.AddText(TextOptions{
		Transform: func(v any) string { return fmt.Sprintf("$%.0f", v) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Fetch(context.Background(), nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text, _ := m.Text(0); text != "$1234567" {
		t.Errorf("Text(0) = %q, want the transform output without separators", text)
	}
}

func TestFetchWrapsCommittedText(t *testing.T) {
	src := &fakeSource{body: []byte(`{"s": "the quick brown fox jumps"}`)}
	m, _ := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		JSONPaths: []extract.Path{{"s"}},
	})
	if _, err := m.AddText(TextOptions{Wrap: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Fetch(context.Background(), nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text, _ := m.Text(0); text != "the quick\nbrown fox\njumps" {
		t.Errorf("Text(0) = %q, want wrapped lines", text)
	}
}

func TestFetchSkipsStaticSlots(t *testing.T) {
	src := &fakeSource{body: []byte(`{"v": 7}`)}
	m, _ := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		JSONPaths: []extract.Path{{"v"}},
	})
	if _, err := m.AddText(TextOptions{Static: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddText(TextOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetText("Subscribers:", 0, false); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Fetch(context.Background(), nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text, _ := m.Text(0); text != "Subscribers:" {
		t.Errorf("static slot text = %q, want untouched", text)
	}
	if text, _ := m.Text(1); text != "7" {
		t.Errorf("data slot text = %q, want %q", text, "7")
	}
}

func TestFetchMoreSlotsThanValues(t *testing.T) {
	src := &fakeSource{body: []byte(`{"v": 7}`)}
	m, _ := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://api.example/data",
		JSONPaths: []extract.Path{{"v"}},
	})
	for i := 0; i < 2; i++ {
		if _, err := m.AddText(TextOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.Fetch(context.Background(), nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text, _ := m.Text(0); text != "7" {
		t.Errorf("Text(0) = %q, want %q", text, "7")
	}
	if text, _ := m.Text(1); text != "" {
		t.Errorf("Text(1) = %q, want untouched", text)
	}
}

func TestFetchRegexValues(t *testing.T) {
	src := &fakeSource{body: []byte("uptime 1337 days")}
	m, _ := newTestBoard(t, Options{
		Source:     src,
		URL:        "https://status.example",
		RegexPaths: []string{`uptime ([0-9]+)`},
	})
	if _, err := m.AddText(TextOptions{}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != any("1337") {
		t.Errorf("Fetch() = %v, want %q", got, "1337")
	}
	if text, _ := m.Text(0); text != "1,337" {
		t.Errorf("Text(0) = %q, want %q", text, "1,337")
	}
}

func TestFetchOptions(t *testing.T) {
	src := &fakeSource{body: []byte(`{"v": 1}`)}
	m, r := newTestBoard(t, Options{
		Source:    src,
		URL:       "https://configured.example",
		JSONPaths: []extract.Path{{"v"}},
	})
	if _, err := m.AddText(TextOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := m.Fetch(context.Background(), &FetchOptions{
		URL:       "https://override.example",
		Timeout:   3 * time.Second,
		NoRefresh: true,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if diff := cmp.Diff(src.urls, []string{"https://override.example"}); diff != "" {
		t.Errorf("fetched urls difference (-got +want):\n%s", diff)
	}
	if src.timeouts[0] != 3*time.Second {
		t.Errorf("timeout = %s, want 3s", src.timeouts[0])
	}
	if r.refreshes != 0 {
		t.Errorf("refreshes = %d, want 0 with NoRefresh", r.refreshes)
	}
}

func TestFetchConfigErrors(t *testing.T) {
	var argErr *InvalidArgumentError

	m, _ := newTestBoard(t, Options{Source: &fakeSource{}})
	if _, err := m.Fetch(context.Background(), nil); !errors.As(err, &argErr) {
		t.Errorf("Fetch without url: got %v, want InvalidArgumentError", err)
	}

	m2, _ := newTestBoard(t, Options{URL: "https://api.example"})
	if _, err := m2.Fetch(context.Background(), nil); !errors.As(err, &argErr) {
		t.Errorf("Fetch without source: got %v, want InvalidArgumentError", err)
	}
}

func TestFetchPropagatesErrors(t *testing.T) {
	srcErr := errors.New("connection reset")
	m, r := newTestBoard(t, Options{
		Source: &fakeSource{err: srcErr},
		URL:    "https://api.example",
	})
	if _, err := m.Fetch(context.Background(), nil); !errors.Is(err, srcErr) {
		t.Errorf("Fetch error = %v, want the source error", err)
	}

	m2, _ := newTestBoard(t, Options{
		Source:    &fakeSource{body: []byte("{bad json")},
		URL:       "https://api.example",
		JSONPaths: []extract.Path{{"a"}},
	})
	var parseErr *extract.ParseError
	if _, err := m2.Fetch(context.Background(), nil); !errors.As(err, &parseErr) {
		t.Errorf("Fetch with bad payload: got %v, want extract.ParseError", err)
	}
	if r.refreshes != 0 {
		t.Errorf("refreshes = %d after failed fetches, want 0", r.refreshes)
	}
}
