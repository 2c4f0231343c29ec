// Package script turns a raw text script into display lines.
package script

import (
	"strings"
	"unicode/utf8"
)

// Budget is the maximum number of characters a display line may carry.
// A single word longer than the budget stands on its own line.
const Budget = 42

// FallbackLine is substituted when the script contains no usable text,
// so the renderer always has at least one line.
const FallbackLine = "Your story starts here"

// Segment splits a script into display lines: first on line breaks,
// then on sentence boundaries, then greedy word wrapping at Budget.
// Output order matches input order. Never returns an empty slice.
func Segment(script string) []string {
	var lines []string

	for _, raw := range strings.Split(script, "\n") {
		for _, sentence := range splitSentences(raw) {
			unit := strings.TrimSpace(sentence)
			if unit == "" {
				continue
			}
			lines = append(lines, wrapUnit(unit)...)
		}
	}

	if len(lines) == 0 {
		return []string{FallbackLine}
	}
	return lines
}

// splitSentences cuts a line at '.', '!' or '?' followed by whitespace.
// The terminator stays with its sentence.
func splitSentences(line string) []string {
	var out []string
	start := 0
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && isSpace(runes[i+1]) {
				out = append(out, string(runes[start:i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// wrapUnit packs whitespace-delimited words into sub-lines of at most
// Budget characters, counted in runes so multi-byte scripts get the
// same line length as ASCII. A word exceeding the budget stands alone.
func wrapUnit(unit string) []string {
	if utf8.RuneCountInString(unit) <= Budget {
		return []string{unit}
	}

	var out []string
	var cur strings.Builder
	curRunes := 0

	for _, word := range strings.Fields(unit) {
		wordRunes := utf8.RuneCountInString(word)
		switch {
		case curRunes == 0:
			cur.WriteString(word)
			curRunes = wordRunes
		case curRunes+1+wordRunes <= Budget:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curRunes += 1 + wordRunes
		default:
			out = append(out, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curRunes = wordRunes
		}
	}
	if curRunes > 0 {
		out = append(out, cur.String())
	}
	return out
}
