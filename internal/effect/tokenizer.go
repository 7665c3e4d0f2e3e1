package effect

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// ExtractTopLevel returns every outermost [...] span in text. Nested brackets
// stay inside their span, stray closers are ignored and an unterminated span
// is dropped.
func ExtractTopLevel(text string) []string {
	var (
		spans []string
		depth int
		start = -1
	)
	for i, r := range text {
		switch r {
		case '[':
			depth++
			if depth == 1 {
				start = i
			}
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				spans = append(spans, text[start:i+1])
				start = -1
			}
		}
	}
	return spans
}

// RepairSpan splits a span that glued several statements together with
// semicolons, a common generation mistake, back into bracketed spans.
// Spans with at most one semicolon are returned unchanged.
func RepairSpan(span string) []string {
	if strings.Count(span, ";") <= 1 {
		return []string{span}
	}
	segs := strings.Split(span, ";")
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		seg = strings.TrimSpace(seg)
		if !strings.HasSuffix(seg, "]") {
			seg += "]"
		}
		if !strings.HasPrefix(seg, "[") {
			seg = "[" + seg
		}
		out = append(out, seg)
	}
	logging.Info("repaired malformed effect span", logging.Fields{
		constants.LogFieldSpan: span,
		"fragments":            out,
	})
	return out
}

// Spans extracts and repairs every effect span in text.
func Spans(text string) []string {
	var out []string
	for _, s := range ExtractTopLevel(text) {
		out = append(out, RepairSpan(s)...)
	}
	return out
}

// tokens is a span split at depth zero: the part before the first ':' and
// the '|' separated clauses after it.
type tokens struct {
	body    string
	head    string
	hasHead bool
	clauses []string
}

// depthScanner tracks nesting over [] and <card literals>. A '<' only opens
// when followed by a letter so comparisons inside rules stay flat.
type depthScanner struct {
	square int
	angle  int
}

func (d *depthScanner) step(s string, i int) {
	switch s[i] {
	case '[':
		d.square++
	case ']':
		if d.square > 0 {
			d.square--
		}
	case '<':
		if i+1 < len(s) && unicode.IsLetter(rune(s[i+1])) {
			d.angle++
		}
	case '>':
		if d.angle > 0 {
			d.angle--
		}
	}
}

func (d *depthScanner) top() bool { return d.square == 0 && d.angle == 0 }

func tokenize(span string) (tokens, error) {
	span = strings.TrimSpace(span)
	if len(span) < 2 || span[0] != '[' || span[len(span)-1] != ']' {
		return tokens{}, fmt.Errorf("%w: %q", ErrMalformedSpan, span)
	}
	body := span[1 : len(span)-1]

	var (
		t     = tokens{body: body}
		d     depthScanner
		start int
	)
	for i := 0; i < len(body); i++ {
		if d.top() {
			switch {
			case body[i] == ':' && !t.hasHead && len(t.clauses) == 0:
				t.head = strings.TrimSpace(body[:i])
				t.hasHead = true
				start = i + 1
				continue
			case body[i] == '|':
				t.clauses = appendClause(t.clauses, body[start:i])
				start = i + 1
				continue
			}
		}
		d.step(body, i)
	}
	t.clauses = appendClause(t.clauses, body[start:])
	return t, nil
}

func appendClause(clauses []string, c string) []string {
	if c = strings.TrimSpace(c); c != "" {
		return append(clauses, c)
	}
	return clauses
}
