package runner

import (
	"unicode"

	"github.com/coregx/btre/internal/charclass"
)

func (r *Runner) pushTrack(vals ...int32) {
	r.track = append(r.track, vals...)
}

func (r *Runner) popVal() int32 {
	n := len(r.track) - 1
	v := r.track[n]
	r.track = r.track[:n]
	return v
}

func charclassDecode(blob string) (*charclass.Class, error) {
	return charclass.Decode(blob)
}

// orderedSpan turns two text positions into a (start, length) pair with
// start <= start+length, regardless of which position is numerically
// larger. A right-to-left match closes a capture (or the whole match)
// with its mark/entry position to the right of the current textPos,
// since RTL consumption moves textPos backward; a span built from the
// raw (entryPos, textPos) pair in that order would carry a negative
// Length.
func orderedSpan(a, b int) (start, length int) {
	if a <= b {
		return a, b - a
	}
	return b, a - b
}

func lowerFold(ch rune) rune { return unicode.ToLower(ch) }
func upperFold(ch rune) rune { return unicode.ToUpper(ch) }

// isWordChar matches spec.md §4.1's word-boundary definition: letters,
// digits, underscore and, for the ECMAScript ("non-Unicode") boundary
// flavor, nothing beyond ASCII.
func isWordChar(ch rune, unicodeAware bool) bool {
	if ch == '_' {
		return true
	}
	if !unicodeAware {
		return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}
