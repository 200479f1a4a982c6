package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/claimhound/internal/types"
)

// Align locates every span's text in source and sets its interval and status.
// Offsets count runes. Each search starts after the previous match so repeated
// phrases are assigned in order; when nothing is found past the cursor the
// whole text is searched again.
func Align(source string, spans []Span) []Span {
	out := make([]Span, len(spans))
	folded := foldText(source)
	cursor := 0

	for i, span := range spans {
		out[i] = span
		out[i].Interval = nil
		out[i].Status = types.AlignmentUnmatched

		if strings.TrimSpace(span.Text) == "" {
			continue
		}

		if start, end, ok := exactMatch(source, span.Text, cursor); ok {
			out[i].Interval = &types.CharInterval{Start: start, End: end}
			out[i].Status = types.AlignmentExact
			cursor = end
			continue
		}

		if start, end, ok := folded.match(span.Text, cursor); ok {
			out[i].Interval = &types.CharInterval{Start: start, End: end}
			out[i].Status = types.AlignmentFuzzy
			cursor = end
		}
	}
	return out
}

// exactMatch finds needle in source at or after the rune offset from,
// falling back to the first occurrence anywhere.
func exactMatch(source, needle string, from int) (int, int, bool) {
	byteFrom := byteOffset(source, from)
	if idx := strings.Index(source[byteFrom:], needle); idx >= 0 {
		start := from + utf8.RuneCountInString(source[byteFrom:byteFrom+idx])
		return start, start + utf8.RuneCountInString(needle), true
	}
	if from == 0 {
		return 0, 0, false
	}
	if idx := strings.Index(source, needle); idx >= 0 {
		start := utf8.RuneCountInString(source[:idx])
		return start, start + utf8.RuneCountInString(needle), true
	}
	return 0, 0, false
}

func byteOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}

// foldedText is source lowercased with whitespace runs collapsed to one space.
// positions maps each folded rune back to its rune offset in the source.
type foldedText struct {
	runes     []rune
	positions []int
}

func foldText(s string) foldedText {
	var f foldedText
	pos := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			if len(f.runes) > 0 && f.runes[len(f.runes)-1] != ' ' {
				f.runes = append(f.runes, ' ')
				f.positions = append(f.positions, pos)
			}
		} else {
			f.runes = append(f.runes, unicode.ToLower(r))
			f.positions = append(f.positions, pos)
		}
		pos++
	}
	return f
}

func foldNeedle(s string) []rune {
	f := foldText(strings.TrimSpace(s))
	return f.runes
}

func (f foldedText) match(needle string, from int) (int, int, bool) {
	n := foldNeedle(needle)
	if len(n) == 0 || len(n) > len(f.runes) {
		return 0, 0, false
	}

	idx := f.index(n, func(i int) bool { return f.positions[i] >= from })
	if idx < 0 && from > 0 {
		idx = f.index(n, func(int) bool { return true })
	}
	if idx < 0 {
		return 0, 0, false
	}
	return f.positions[idx], f.positions[idx+len(n)-1] + 1, true
}

func (f foldedText) index(needle []rune, accept func(int) bool) int {
	for i := 0; i+len(needle) <= len(f.runes); i++ {
		if !accept(i) {
			continue
		}
		if runesEqual(f.runes[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
