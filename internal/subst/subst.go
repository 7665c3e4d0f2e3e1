// Package subst implements text rewrite rules of the form
//
//	pattern [if condition] -> template;
//
// Patterns use parse-style fields ({}, {:d}, {name:w}); templates interpolate
// {{ expr }} holes. Expressions see the captures as m[0], m[1], ... and named
// captures as m.name.
package subst

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
)

var (
	ErrNoMatch       = errors.New("pattern did not match")
	ErrMalformedRule = errors.New("malformed substitution rule")
)

type Subst struct {
	Pattern     string
	Replacement string
	Condition   string
}

// Parse reads "pattern [if cond] -> template;". The trailing semicolon is
// optional. The arrow and the if keyword are only recognised outside
// brackets and braces.
func Parse(rule string) (Subst, error) {
	rule = strings.TrimSpace(rule)
	rule = strings.TrimSpace(strings.TrimSuffix(rule, ";"))
	arrow := indexTopLevel(rule, "->")
	if arrow < 0 {
		return Subst{}, fmt.Errorf("%w: missing '->' in %q", ErrMalformedRule, rule)
	}
	lhs := strings.TrimSpace(rule[:arrow])
	s := Subst{Replacement: strings.TrimSpace(rule[arrow+2:])}
	if ix := indexTopLevel(lhs, " if "); ix >= 0 {
		s.Pattern = strings.TrimSpace(lhs[:ix])
		s.Condition = strings.TrimSpace(lhs[ix+4:])
	} else {
		s.Pattern = lhs
	}
	if _, err := compilePattern(s.Pattern); err != nil {
		return Subst{}, err
	}
	return s, nil
}

func indexTopLevel(s, needle string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && strings.HasPrefix(s[i:], needle) {
			return i
		}
	}
	return -1
}

func (s Subst) String() string {
	if s.Condition != "" {
		return fmt.Sprintf("%s if %s -> %s;", s.Pattern, s.Condition, s.Replacement)
	}
	return fmt.Sprintf("%s -> %s;", s.Pattern, s.Replacement)
}

// Bind returns a copy with every whole-word occurrence of old (any case)
// replaced by replacement. Statuses use it to tie "me" to their owner.
func (s Subst) Bind(old, replacement string) Subst {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(old) + `\b`)
	return Subst{
		Pattern:     re.ReplaceAllLiteralString(s.Pattern, replacement),
		Replacement: re.ReplaceAllLiteralString(s.Replacement, replacement),
		Condition:   re.ReplaceAllLiteralString(s.Condition, replacement),
	}
}

// Apply rewrites every non-overlapping match in text, left to right. Each
// match is checked against the condition and rendered on its own; rendered
// text is never scanned again. It returns how many matches were replaced.
// When the pattern occurs nowhere, ErrNoMatch is returned unless allowZero.
func (s Subst) Apply(text string, extra map[string]interface{}, allowZero bool) (int, string, error) {
	c, err := compilePattern(s.Pattern)
	if err != nil {
		return 0, text, err
	}
	var (
		ev      *evaluator
		out     strings.Builder
		found   int
		applied int
		rest    = text
	)
	for {
		loc := c.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		found++
		start, end := loc[0], loc[1]
		out.WriteString(rest[:start])
		matched := rest[start:end]
		if ev == nil {
			if ev, err = newEvaluator(); err != nil {
				return 0, text, err
			}
		}
		ev.bind(captures(c, rest, loc, extra))
		if rendered, ok := s.rewrite(ev); ok {
			out.WriteString(rendered)
			applied++
		} else {
			out.WriteString(matched)
		}
		if end == start {
			if start >= len(rest) {
				rest = ""
				break
			}
			_, size := utf8.DecodeRuneInString(rest[start:])
			out.WriteString(rest[start : start+size])
			end = start + size
		}
		rest = rest[end:]
	}
	out.WriteString(rest)
	if found == 0 && !allowZero {
		return 0, text, fmt.Errorf("%w: %q in %q", ErrNoMatch, s.Pattern, text)
	}
	return applied, out.String(), nil
}

// rewrite evaluates the condition and renders the template for the match
// currently bound to ev. Evaluation failures leave the match untouched.
func (s Subst) rewrite(ev *evaluator) (string, bool) {
	if s.Condition != "" {
		v, err := ev.eval(s.Condition)
		if err != nil {
			logging.Warn("substitution condition failed", logging.Fields{
				constants.LogFieldRule: s.String(),
				"error":                err.Error(),
			})
			return "", false
		}
		if !truthy(v) {
			return "", false
		}
	}
	rendered, err := render(s.Replacement, ev)
	if err != nil {
		logging.Warn("substitution template failed", logging.Fields{
			constants.LogFieldRule: s.String(),
			"error":                err.Error(),
		})
		return "", false
	}
	return rendered, true
}

func captures(c *compiled, text string, loc []int, extra map[string]interface{}) scope {
	sc := scope{named: map[string]interface{}{}, extra: extra}
	for i, cp := range c.caps {
		a, b := loc[2+2*i], loc[3+2*i]
		if a < 0 {
			continue
		}
		raw := text[a:b]
		var v interface{} = raw
		switch cp.conv {
		case convInt:
			if n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
				v = n
			}
		case convFloat:
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				v = n
			}
		}
		if cp.name != "" {
			sc.named[cp.name] = v
			continue
		}
		sc.positional = append(sc.positional, v)
	}
	return sc
}

// render fills the {{ expr }} holes of a template.
func render(template string, ev *evaluator) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		closing := strings.Index(rest[open+2:], "}}")
		if closing < 0 {
			return "", fmt.Errorf("%w: unterminated '{{' in %q", ErrMalformedRule, template)
		}
		b.WriteString(rest[:open])
		v, err := ev.eval(strings.TrimSpace(rest[open+2 : open+2+closing]))
		if err != nil {
			return "", err
		}
		b.WriteString(format(v))
		rest = rest[open+2+closing+2:]
	}
}
