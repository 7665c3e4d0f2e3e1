package subst

import (
	"fmt"
	"strings"
	"unicode"
)

type tokKind int

const (
	tokAtom tokKind = iota
	tokOpen
	tokClose
	tokOp
)

type tok struct {
	text string
	kind tokKind
}

// lexLua splits an already translated expression into atoms (names, numbers,
// strings), brackets and operators.
func lexLua(expr string) ([]tok, error) {
	var out []tok
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("unterminated string in %q", expr)
			}
			out = append(out, tok{string(rs[i : j+1]), tokAtom})
			i = j + 1
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			for j < len(rs) {
				c := rs[j]
				exp := (c == '-' || c == '+') && (rs[j-1] == 'e' || rs[j-1] == 'E')
				dot := c == '.' && !(j+1 < len(rs) && rs[j+1] == '.')
				if !unicode.IsDigit(c) && !unicode.IsLetter(c) && !dot && !exp {
					break
				}
				j++
			}
			out = append(out, tok{string(rs[i:j]), tokAtom})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			word := string(rs[i:j])
			kind := tokAtom
			if word == "and" || word == "or" || word == "not" {
				kind = tokOp
			}
			out = append(out, tok{word, kind})
			i = j
		case r == '(' || r == '[' || r == '{':
			out = append(out, tok{string(r), tokOpen})
			i++
		case r == ')' || r == ']' || r == '}':
			out = append(out, tok{string(r), tokClose})
			i++
		default:
			if i+1 < len(rs) {
				switch pair := string(rs[i : i+2]); pair {
				case "//", "==", "~=", "<=", ">=", "..":
					out = append(out, tok{pair, tokOp})
					i += 2
					continue
				}
			}
			out = append(out, tok{string(r), tokOp})
			i++
		}
	}
	return out, nil
}

// rewriteFloorDiv turns every "a // b" into "math.floor((a) / (b))". The left
// operand extends over the "* / %" chain it belongs to, the right one is a
// single unary term with its "^" powers, matching Python precedence.
func rewriteFloorDiv(expr string) (string, error) {
	if !strings.Contains(expr, "//") {
		return expr, nil
	}
	toks, err := lexLua(expr)
	if err != nil {
		return "", err
	}
	for {
		k := -1
		for i, t := range toks {
			if t.kind == tokOp && t.text == "//" {
				k = i
				break
			}
		}
		if k < 0 {
			break
		}
		start := leftOperand(toks, k)
		end := rightOperand(toks, k)
		if start < 0 || end < 0 {
			return "", fmt.Errorf("malformed floor division in %q", expr)
		}
		merged := tok{
			text: "math.floor((" + joinToks(toks[start:k]) + ") / (" + joinToks(toks[k+1:end+1]) + "))",
			kind: tokAtom,
		}
		rest := append([]tok{merged}, toks[end+1:]...)
		toks = append(toks[:start], rest...)
	}
	return joinToks(toks), nil
}

func joinToks(toks []tok) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

func isOp(toks []tok, i int, ops ...string) bool {
	if i < 0 || i >= len(toks) || toks[i].kind != tokOp {
		return false
	}
	for _, op := range ops {
		if toks[i].text == op {
			return true
		}
	}
	return false
}

// matching returns the index of the bracket pairing with toks[i], scanning
// in dir (+1 forward from an opener, -1 backward from a closer).
func matching(toks []tok, i, dir int) int {
	depth := 0
	for j := i; j >= 0 && j < len(toks); j += dir {
		switch toks[j].kind {
		case tokOpen:
			depth += dir
		case tokClose:
			depth -= dir
		}
		if depth == 0 {
			return j
		}
	}
	return -1
}

// termBefore returns the first index of the primary ending at j, including
// its call, index and field chain.
func termBefore(toks []tok, j int) int {
	if j < 0 {
		return -1
	}
	switch toks[j].kind {
	case tokClose:
		o := matching(toks, j, -1)
		if o < 0 {
			return -1
		}
		if o > 0 && (toks[o-1].kind == tokAtom || toks[o-1].kind == tokClose) {
			return termBefore(toks, o-1)
		}
		return o
	case tokAtom:
		if isOp(toks, j-1, ".", ":") {
			return termBefore(toks, j-2)
		}
		return j
	}
	return -1
}

func leftOperand(toks []tok, k int) int {
	s := termBefore(toks, k-1)
	for s >= 0 {
		for isOp(toks, s-1, "-", "not", "#") && (s-2 < 0 || toks[s-2].kind == tokOp || toks[s-2].kind == tokOpen) {
			s--
		}
		if !isOp(toks, s-1, "*", "/", "%", "^") {
			break
		}
		s = termBefore(toks, s-2)
	}
	return s
}

// termAfter returns the last index of the primary starting at i.
func termAfter(toks []tok, i int) int {
	if i >= len(toks) {
		return -1
	}
	var e int
	switch toks[i].kind {
	case tokOpen:
		if e = matching(toks, i, 1); e < 0 {
			return -1
		}
	case tokAtom:
		e = i
	default:
		return -1
	}
	for {
		switch {
		case e+1 < len(toks) && toks[e+1].kind == tokOpen && toks[e+1].text != "{":
			c := matching(toks, e+1, 1)
			if c < 0 {
				return -1
			}
			e = c
		case isOp(toks, e+1, ".", ":") && e+2 < len(toks) && toks[e+2].kind == tokAtom:
			e += 2
		default:
			return e
		}
	}
}

func rightOperand(toks []tok, k int) int {
	i := k + 1
	for isOp(toks, i, "-", "not", "#") {
		i++
	}
	e := termAfter(toks, i)
	for e >= 0 && isOp(toks, e+1, "^") {
		i = e + 2
		for isOp(toks, i, "-") {
			i++
		}
		e = termAfter(toks, i)
	}
	return e
}
