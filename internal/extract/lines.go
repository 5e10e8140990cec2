package extract

import "strings"

// Lines returns the 1-based inclusive slice [start, end] of fileText's
// lines joined by newlines. Bounds clamp to the file rather than erroring:
// start below 1 becomes 1, end past the last line becomes the last line,
// and an empty overlap yields "".
func Lines(fileText string, start, end int) string {
	lines := strings.Split(fileText, "\n")
	// A trailing newline is file formatting, not an extra empty line.
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
