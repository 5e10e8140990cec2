package directive

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/weave-dev/weave/internal/scanner"
)

// Pattern families. A path must begin with ".", "/" or "~" so that tokens
// like user@domain.tld are never mistaken for imports; a path token stops
// at the first whitespace. Two directives with no separating whitespace
// (@./a.md@./b.md) therefore parse as one path token; resolution then
// fails loudly on the combined name rather than guessing a split point.
var (
	pathPattern    = regexp.MustCompile(`@([~./][^\s]*)`)
	urlPattern     = regexp.MustCompile(`@(https?://[^\s]+)`)
	commandPattern = regexp.MustCompile("!`([^`\n]+)`")

	rangeSuffix  = regexp.MustCompile(`^(.+):(\d+)-(\d+)$`)
	symbolSuffix = regexp.MustCompile(`^(.+)#([A-Za-z_$][A-Za-z0-9_$]*)$`)

	// Cheap existence probe for a fenced block whose first code line is a
	// shebang; Parse uses real fence geometry instead.
	fenceShebang = regexp.MustCompile("(?m)^[ \t]*(`{3,}|~{3,})[^\n]*\n#!")
)

// HasDirectives reports whether text contains anything that looks like a
// directive. It runs the raw patterns without code-span filtering, so it
// can report true for directive-shaped text inside a code block; callers
// use it only to skip expansion entirely when nothing could match.
func HasDirectives(text string) bool {
	return pathPattern.MatchString(text) ||
		urlPattern.MatchString(text) ||
		commandPattern.MatchString(text) ||
		fenceShebang.MatchString(text)
}

// Parse returns every directive in text in ascending Index order. The @
// and !` families match only when their start offset falls inside a safe
// range; executable-fence directives are, by nature, fenced blocks and are
// recognized from fence geometry directly.
func Parse(text string) []Directive {
	safe := scanner.Scan(text)

	var out []Directive
	urlSpans := urlPattern.FindAllStringSubmatchIndex(text, -1)
	for _, m := range urlSpans {
		if !scanner.InSafeRange(safe, m[0]) {
			continue
		}
		out = append(out, Directive{
			Kind:     KindURL,
			Original: text[m[0]:m[1]],
			Index:    m[0],
			URL:      text[m[2]:m[3]],
		})
	}

	for _, m := range pathPattern.FindAllStringSubmatchIndex(text, -1) {
		if !scanner.InSafeRange(safe, m[0]) {
			continue
		}
		// An @ inside a URL's own token is part of the URL, not a new
		// directive.
		if insideAny(urlSpans, m[0]) {
			continue
		}
		out = append(out, classifyPath(text[m[0]:m[1]], m[0], text[m[2]:m[3]]))
	}

	for _, m := range commandPattern.FindAllStringSubmatchIndex(text, -1) {
		if !scanner.InSafeRange(safe, m[0]) {
			continue
		}
		out = append(out, Directive{
			Kind:     KindCommand,
			Original: text[m[0]:m[1]],
			Index:    m[0],
			Command:  text[m[2]:m[3]],
		})
	}

	for _, f := range scanner.Fences(text) {
		shebang, ok := fenceShebangLine(f.Body)
		if !ok {
			continue
		}
		// The replacement stands in for the block, not for the line break
		// after it.
		original := text[f.Start:f.End]
		original = strings.TrimSuffix(original, "\n")
		out = append(out, Directive{
			Kind:     KindCodeFence,
			Original: original,
			Index:    f.Start,
			Shebang:  shebang,
			Language: f.Info,
			Code:     f.Body,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// insideAny reports whether off falls strictly inside one of the match
// spans (each spans[i][0]:spans[i][1] pair).
func insideAny(spans [][]int, off int) bool {
	for _, m := range spans {
		if off > m[0] && off < m[1] {
			return true
		}
	}
	return false
}

// classifyPath decomposes a matched @path token into its line-range,
// symbol, glob, or plain-file sub-form.
func classifyPath(original string, index int, path string) Directive {
	d := Directive{Original: original, Index: index}

	if m := rangeSuffix.FindStringSubmatch(path); m != nil {
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[3])
		d.Kind = KindFile
		d.Path = m[1]
		d.Range = &LineRange{Start: start, End: end}
		return d
	}
	if m := symbolSuffix.FindStringSubmatch(path); m != nil {
		d.Kind = KindSymbol
		d.Path = m[1]
		d.Symbol = m[2]
		return d
	}
	if strings.ContainsAny(path, "*?[") {
		d.Kind = KindGlob
		d.Pattern = path
		return d
	}
	d.Kind = KindFile
	d.Path = path
	return d
}

// fenceShebangLine returns the shebang when the first code line of a fence
// body starts with "#!". A shebang anywhere else leaves the fence as prose.
func fenceShebangLine(body string) (string, bool) {
	line := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}
	return line, true
}
