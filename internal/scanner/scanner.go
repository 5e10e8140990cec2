// Package scanner splits a markdown document into directive-eligible text
// and code regions. Fenced blocks and inline code spans are never eligible.
package scanner

import "strings"

// Range is a half-open [Start, End) byte interval of document text that
// lies outside every fenced code block and inline code span.
type Range struct {
	Start int
	End   int
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Fence records one fenced code block.
type Fence struct {
	Start     int    // offset of the opening fence line
	End       int    // offset one past the closing fence line (len(text) if unclosed)
	Info      string // trimmed info string after the opening marker, e.g. "go"
	Body      string // raw text between the opening and closing fence lines
	BodyStart int    // offset of Body within the document
}

// Scan returns the ordered, non-overlapping safe ranges of text.
// An empty document yields nil; a document that is one big fenced block
// yields nil; pure prose yields a single range covering everything.
func Scan(text string) []Range {
	code, _ := scan(text)

	var ranges []Range
	prev := 0
	for _, iv := range code {
		if iv.Start > prev {
			ranges = append(ranges, Range{Start: prev, End: iv.Start})
		}
		prev = iv.End
	}
	if prev < len(text) {
		ranges = append(ranges, Range{Start: prev, End: len(text)})
	}
	return ranges
}

// Fences returns every fenced code block in document order. Both Fences and
// Scan come from the same line walk, so their view of fence geometry agrees.
func Fences(text string) []Fence {
	_, fences := scan(text)
	return fences
}

// InSafeRange reports whether offset falls inside any of ranges.
func InSafeRange(ranges []Range, offset int) bool {
	for _, r := range ranges {
		if r.Contains(offset) {
			return true
		}
		if r.Start > offset {
			break
		}
	}
	return false
}

type interval struct {
	Start int
	End   int
}

// scan walks the document line by line. Fence detection is line-based;
// inline code spans are found afterwards in the text between fences.
func scan(text string) ([]interval, []Fence) {
	var code []interval
	var fences []Fence

	inFence := false
	var marker byte
	var markerLen int
	var open Fence

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		var next int
		var line string
		if lineEnd < 0 {
			line = text[lineStart:]
			next = len(text) + 1
		} else {
			line = text[lineStart : lineStart+lineEnd]
			next = lineStart + lineEnd + 1
		}

		trimmed := strings.TrimLeft(line, " \t")
		if !inFence {
			if ch, n, info, ok := fenceOpen(trimmed); ok {
				inFence = true
				marker, markerLen = ch, n
				open = Fence{Start: lineStart, Info: info, BodyStart: next}
			}
		} else if fenceClose(trimmed, marker, markerLen) {
			inFence = false
			open.End = next
			if open.End > len(text) {
				open.End = len(text)
			}
			open.Body = text[open.BodyStart:lineStart]
			code = append(code, interval{Start: open.Start, End: open.End})
			fences = append(fences, open)
		}

		if next > len(text) {
			break
		}
		lineStart = next
	}

	// An unclosed fence consumes the remainder of the document.
	if inFence {
		open.End = len(text)
		if open.BodyStart > len(text) {
			open.BodyStart = len(text)
		}
		open.Body = text[open.BodyStart:]
		code = append(code, interval{Start: open.Start, End: open.End})
		fences = append(fences, open)
	}

	// Inline code spans only exist between fences.
	var all []interval
	prev := 0
	for _, iv := range code {
		all = append(all, inlineSpans(text, prev, iv.Start)...)
		all = append(all, iv)
		prev = iv.End
	}
	all = append(all, inlineSpans(text, prev, len(text))...)

	return all, fences
}

// fenceOpen reports whether a trimmed line opens a fence: three or more
// backticks or tildes, optionally followed by an info string.
func fenceOpen(trimmed string) (marker byte, n int, info string, ok bool) {
	if trimmed == "" {
		return 0, 0, "", false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return 0, 0, "", false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == ch {
		count++
	}
	if count < 3 {
		return 0, 0, "", false
	}
	rest := strings.TrimSpace(trimmed[count:])
	// An info string containing the fence character is not a fence opener
	// (e.g. an inline run of backticks mid-prose).
	if strings.ContainsRune(rest, rune(ch)) {
		return 0, 0, "", false
	}
	return ch, count, rest, true
}

// fenceClose reports whether a trimmed line closes a fence opened with
// markerLen repetitions of marker. The run must be the only content on the
// line; a mid-line run never closes a block.
func fenceClose(trimmed string, marker byte, markerLen int) bool {
	count := 0
	for count < len(trimmed) && trimmed[count] == marker {
		count++
	}
	if count < markerLen {
		return false
	}
	return strings.TrimSpace(trimmed[count:]) == ""
}

// inlineSpans finds inline code spans in text[from:to]. A span opens with a
// run of N backticks and closes at the next run of exactly N backticks; a
// longer or shorter run does not close it. An unmatched opener is literal.
func inlineSpans(text string, from, to int) []interval {
	var spans []interval
	i := from
	for i < to {
		if text[i] != '`' {
			i++
			continue
		}
		n := runLen(text, i, to)
		closer := findRun(text, i+n, to, n)
		if closer < 0 {
			i += n
			continue
		}
		spans = append(spans, interval{Start: i, End: closer + n})
		i = closer + n
	}
	return spans
}

func runLen(text string, i, to int) int {
	n := 0
	for i+n < to && text[i+n] == '`' {
		n++
	}
	return n
}

// findRun returns the offset of the next run of exactly n backticks in
// text[from:to], or -1.
func findRun(text string, from, to, n int) int {
	i := from
	for i < to {
		if text[i] != '`' {
			i++
			continue
		}
		l := runLen(text, i, to)
		if l == n {
			return i
		}
		i += l
	}
	return -1
}
