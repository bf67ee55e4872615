// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package extract pulls values out of fetched payloads, either by walking a
// decoded JSON document along traversal paths or by applying regular
// expression capture groups to the raw text.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// A ParseError reports a payload or pattern that could not be parsed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "extract: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A PathNotFoundError reports a traversal path or pattern with no match in
// the payload.
type PathNotFoundError struct {
	Path    string
	Segment string
}

func (e *PathNotFoundError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("extract: no match for %q", e.Path)
	}
	return fmt.Sprintf("extract: path %q has no segment %q", e.Path, e.Segment)
}

// Path is a single JSON traversal path, applied root to leaf. String
// segments index objects, integer segments index arrays.
type Path []any

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = fmt.Sprintf("%v", seg)
	}
	return strings.Join(parts, "/")
}

// Extract pulls one value per configured path out of body. JSON paths take
// precedence: when any are present, body is decoded as JSON and each path is
// traversed in order. Otherwise each regex pattern contributes its first
// capture group matched against the body. With no paths at all, the whole
// body is returned as a single string value.
func Extract(body []byte, jsonPaths []Path, regexPaths []string) ([]any, error) {
	switch {
	case len(jsonPaths) > 0:
		return extractJSON(body, jsonPaths)
	case len(regexPaths) > 0:
		return extractRegex(body, regexPaths)
	default:
		return []any{string(body)}, nil
	}
}

func extractJSON(body []byte, paths []Path) ([]any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	values := make([]any, 0, len(paths))
	for _, p := range paths {
		v, err := p.traverse(doc)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (p Path) traverse(doc any) (any, error) {
	cur := doc
	for _, seg := range p {
		switch node := cur.(type) {
		case map[string]any:
			key, ok := seg.(string)
			if !ok {
				return nil, &PathNotFoundError{Path: p.String(), Segment: segString(seg)}
			}
			v, ok := node[key]
			if !ok {
				return nil, &PathNotFoundError{Path: p.String(), Segment: key}
			}
			cur = v
		case []any:
			i, ok := segIndex(seg)
			if !ok || i < 0 || i >= len(node) {
				return nil, &PathNotFoundError{Path: p.String(), Segment: segString(seg)}
			}
			cur = node[i]
		default:
			return nil, &PathNotFoundError{Path: p.String(), Segment: segString(seg)}
		}
	}
	return cur, nil
}

func segIndex(seg any) (int, bool) {
	switch v := seg.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func segString(seg any) string {
	return fmt.Sprintf("%v", seg)
}

func extractRegex(body []byte, patterns []string) ([]any, error) {
	text := string(body)
	values := make([]any, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			return nil, &PathNotFoundError{Path: pat}
		}
		values = append(values, m[1])
	}
	return values, nil
}
