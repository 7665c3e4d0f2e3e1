package subst

import (
	"fmt"
	"regexp"
	"strings"
)

// conversion of a captured value before it reaches the expression scope.
type conversion int

const (
	convString conversion = iota
	convInt
	convFloat
)

type capture struct {
	name string
	conv conversion
}

// compiled is a pattern translated to a regexp, one group per field.
type compiled struct {
	re   *regexp.Regexp
	caps []capture
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// formats maps a field format spec to its regexp and conversion.
var formats = map[string]struct {
	expr string
	conv conversion
}{
	"":  {`.+?`, convString},
	"d": {`[-+]?\d+`, convInt},
	"f": {`[-+]?(?:\d+(?:\.\d*)?|\.\d+)`, convFloat},
	"g": {`[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`, convFloat},
	"n": {`[-+]?\d{1,3}(?:,\d{3})*`, convInt},
	"w": {`\w+`, convString},
	"W": {`\W+`, convString},
	"l": {`[A-Za-z]+`, convString},
	"s": {`\s+`, convString},
	"S": {`\S+`, convString},
}

// compilePattern turns a parse-style pattern ("[foo: {:d}]", "{name:w} hits")
// into a case-insensitive regexp. "{{" and "}}" stand for literal braces.
func compilePattern(pattern string) (*compiled, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrMalformedRule)
	}
	var (
		b    strings.Builder
		caps []capture
	)
	b.WriteString("(?is)")
	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "{{"):
			b.WriteString(`\{`)
			i += 2
		case strings.HasPrefix(pattern[i:], "}}"):
			b.WriteString(`\}`)
			i += 2
		case pattern[i] == '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated field in %q", ErrMalformedRule, pattern)
			}
			spec := pattern[i+1 : i+end]
			name, format, _ := strings.Cut(spec, ":")
			name = strings.TrimSpace(name)
			if name != "" && !fieldName.MatchString(name) {
				return nil, fmt.Errorf("%w: bad field name %q", ErrMalformedRule, name)
			}
			f, ok := formats[strings.TrimSpace(format)]
			if !ok {
				return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedRule, format)
			}
			b.WriteString("(" + f.expr + ")")
			caps = append(caps, capture{name: name, conv: f.conv})
			i += end + 1
		default:
			next := strings.IndexAny(pattern[i:], "{}")
			if next < 0 {
				next = len(pattern) - i
			} else if next == 0 {
				// lone '}'
				next = 1
			}
			b.WriteString(regexp.QuoteMeta(pattern[i : i+next]))
			i += next
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return &compiled{re: re, caps: caps}, nil
}
