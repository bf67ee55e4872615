// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"strings"
	"unicode/utf8"
)

// WrapNicely splits text into greedily filled lines of at most maxChars
// characters each, breaking on spaces only. Line breaks already present in
// text are stripped before wrapping. A single word longer than maxChars gets
// a line of its own rather than being split mid-word. The result always
// contains at least one line.
func WrapNicely(text string, maxChars int) []string {
	text = strings.ReplaceAll(text, "\n", "")
	text = strings.ReplaceAll(text, "\r", "")
	var lines []string
	line := ""
	for _, word := range strings.Split(text, " ") {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= maxChars {
			line += " " + word
		} else {
			if line != "" {
				lines = append(lines, line)
			}
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	// Lines built through the accumulator carry the separator that joined
	// their first word.
	if lines[0][0] == ' ' {
		lines[0] = lines[0][1:]
	}
	return lines
}
