// Package diag holds source-position and diagnostic-formatting helpers
// shared by the reader and the codegen core.
package diag

import (
	"fmt"
	"strings"
)

// Position names a single point in a source file. The reader stamps one
// onto every sexpr.Node it produces; the zero value means "unknown."
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) IsKnown() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsKnown() {
		return ""
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// CodeError is a single accumulated diagnostic: a message plus enough
// context to locate it back in source text.
type CodeError struct {
	Message string
	Context string
	Pos     Position
}

// LocateContext finds the line/column of a context snippet inside source,
// falling back to a substring search when an exact (whitespace-normalized)
// line match isn't found. Kept for diagnostics that only carry a printed
// node instead of a stamped Position.
func LocateContext(source string, context string) (line int, col int, ok bool) {
	ctx := strings.TrimSpace(context)
	if ctx == "" {
		return 0, 0, false
	}
	lines := strings.Split(source, "\n")
	normalize := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, "\t", "")
		return s
	}
	normalizedCtx := normalize(strings.Trim(ctx, "`"))

	matchLine := -1
	for i, ln := range lines {
		if normalize(ln) == normalizedCtx {
			if matchLine != -1 {
				matchLine = -2
				break
			}
			matchLine = i
		}
	}
	if matchLine >= 0 {
		ln := lines[matchLine]
		col := strings.Index(ln, strings.TrimSpace(strings.Trim(ctx, "`")))
		if col < 0 {
			col = 0
		}
		return matchLine + 1, col + 1, true
	}

	candidates := []string{ctx, strings.Trim(ctx, "`")}
	bestLine := -1
	bestCol := -1
	for i, ln := range lines {
		for _, c := range candidates {
			if c == "" {
				continue
			}
			if idx := strings.Index(ln, c); idx >= 0 {
				if bestLine != -1 {
					return 0, 0, false
				}
				bestLine = i + 1
				bestCol = idx + 1
			}
		}
	}
	if bestLine != -1 {
		return bestLine, bestCol, true
	}
	return 0, 0, false
}
