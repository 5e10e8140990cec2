// Package extract pulls snippets out of source files: named declarations
// located by depth-balanced scanning, and 1-based line slices.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// SymbolNotFoundError reports that no declaration form matched the name.
type SymbolNotFoundError struct {
	Symbol string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found", e.Symbol)
}

// Declaration-start forms, tried in order. %s is the quoted symbol name.
// Deliberately shallow: these anchor a text scan, they do not parse the
// language.
var declForms = []string{
	`(?m)^[ \t]*(?:export\s+)?(?:declare\s+)?interface\s+%s\b`,
	`(?m)^[ \t]*(?:export\s+)?type\s+%s\b`,
	`(?m)^[ \t]*(?:export\s+)?(?:async\s+)?function\s*\*?\s*%s\b`,
	`(?m)^[ \t]*(?:export\s+)?(?:abstract\s+)?class\s+%s\b`,
	`(?m)^[ \t]*(?:export\s+)?(?:const\s+)?enum\s+%s\b`,
	`(?m)^[ \t]*(?:export\s+)?(?:const|let|var)\s+%s\b`,
}

// Symbol returns the full span of the declaration named name within
// fileText. The span starts at the matched declaration line and ends once
// brace and paren depth both return to zero on a line that terminates the
// declaration. If depth never rebalances, everything from the start line
// to end of file is returned rather than failing.
func Symbol(fileText, name string) (string, error) {
	quoted := regexp.QuoteMeta(name)
	for _, form := range declForms {
		re := regexp.MustCompile(fmt.Sprintf(form, quoted))
		loc := re.FindStringIndex(fileText)
		if loc == nil {
			continue
		}
		return scanDeclaration(fileText, loc[0]), nil
	}
	return "", &SymbolNotFoundError{Symbol: name}
}

// scanDeclaration walks forward from start, tracking brace and paren depth
// and skipping string and template literals (with escape handling). The
// declaration is complete at the end of a line where both depths are zero
// and the line terminates (ends with ";" or "}", or the following line
// does not continue a member chain with ".").
func scanDeclaration(text string, start int) string {
	braces, parens := 0, 0
	var quote byte
	lineStart := start

	for i := start; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			parens++
		case ')':
			parens--
		case '\n':
			if braces == 0 && parens == 0 && declarationEnds(text, lineStart, i) {
				return text[start:i]
			}
			lineStart = i + 1
		}
	}

	// Open depth at end of file: best-effort, return the rest.
	return text[start:]
}

// declarationEnds decides whether the line [lineStart, lineEnd) closes the
// declaration at balanced depth.
func declarationEnds(text string, lineStart, lineEnd int) bool {
	line := strings.TrimRight(text[lineStart:lineEnd], " \t\r")
	if line == "" {
		return false
	}
	if strings.HasSuffix(line, ";") || strings.HasSuffix(line, "}") {
		return true
	}
	next := strings.TrimLeft(text[lineEnd+1:], " \t")
	return !strings.HasPrefix(next, ".")
}
