// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// Fuzz is a go-fuzz entry point exercising Bind against arbitrary bytes. It
// never panics: every malformed input returns an error from Bind rather
// than crashing, which is the property this harness is meant to catch
// regressions in.
func Fuzz(data []byte) int {
	img, err := Bind(data, 0, false, 0)
	if err != nil {
		return 0
	}

	img.hasExport("")
	img.hasImport("", "")
	img.languageMatch(0)
	return 1
}
