// Copyright 2025 The MagTag Go Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graphics

import "fmt"

// A DisplayError reports a panel that rejected a frame.
type DisplayError struct {
	Err error
}

func (e *DisplayError) Error() string {
	return "graphics: display: " + e.Err.Error()
}

func (e *DisplayError) Unwrap() error {
	return e.Err
}

// A FontLoadError reports a font file that could not be loaded or parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("graphics: loading font %q: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}
