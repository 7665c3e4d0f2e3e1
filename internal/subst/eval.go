package subst

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Shopify/go-lua"
)

// prelude gives expressions the helpers status rules are written with and
// removes everything that can reach the filesystem.
const prelude = `
function int(x) local n = tonumber(x) or 0 if n >= 0 then return math.floor(n) end return math.ceil(n) end
function round(x, p)
  local n = tonumber(x) or 0
  local k = 10 ^ (p or 0)
  if n >= 0 then return math.floor(n * k + 0.5) / k end
  return -math.floor(-n * k + 0.5) / k
end
float = tonumber
str = tostring
abs = math.abs
max = math.max
min = math.min
dofile, loadfile, load, require, collectgarbage = nil, nil, nil, nil, nil
`

// filters usable as "expr | name" inside template holes.
var filters = map[string]string{
	"int":    "int",
	"round":  "round",
	"abs":    "abs",
	"float":  "float",
	"string": "str",
}

var forbiddenWords = map[string]bool{
	"function": true, "while": true, "repeat": true, "for": true, "goto": true, "until": true,
}

type scope struct {
	positional []interface{}
	named      map[string]interface{}
	extra      map[string]interface{}
}

// evaluator runs template and condition expressions in a sandboxed Lua state.
// Captures are exposed as the table m, 0-indexed; extra context values become
// globals of the same name.
type evaluator struct {
	l *lua.State
}

func newEvaluator() (*evaluator, error) {
	l := lua.NewState()
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)
	lua.Require(l, "string", lua.StringOpen, true)
	l.Pop(1)
	if err := lua.DoString(l, prelude); err != nil {
		return nil, fmt.Errorf("lua prelude: %w", err)
	}
	return &evaluator{l: l}, nil
}

func pushValue(l *lua.State, v interface{}) {
	switch x := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(x)
	case int:
		l.PushInteger(x)
	case int64:
		l.PushNumber(float64(x))
	case float64:
		l.PushNumber(x)
	case string:
		l.PushString(x)
	default:
		l.PushString(fmt.Sprint(x))
	}
}

func (e *evaluator) bind(s scope) {
	l := e.l
	l.SetTop(0)
	l.NewTable()
	for i, v := range s.positional {
		pushValue(l, v)
		l.RawSetInt(-2, i)
	}
	for k, v := range s.named {
		pushValue(l, v)
		l.SetField(-2, k)
	}
	l.SetGlobal("m")
	for k, v := range s.extra {
		if !fieldName.MatchString(k) {
			continue
		}
		pushValue(l, v)
		l.SetGlobal(k)
	}
}

func (e *evaluator) eval(expr string) (interface{}, error) {
	code, err := translate(expr)
	if err != nil {
		return nil, err
	}
	l := e.l
	l.SetTop(0)
	if err := lua.LoadString(l, "return "+code); err != nil {
		l.SetTop(0)
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		l.SetTop(0)
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	defer l.SetTop(0)
	switch l.TypeOf(-1) {
	case lua.TypeNil:
		return nil, nil
	case lua.TypeBoolean:
		return l.ToBoolean(-1), nil
	case lua.TypeNumber:
		n, _ := l.ToNumber(-1)
		return n, nil
	case lua.TypeString:
		s, _ := l.ToString(-1)
		return s, nil
	default:
		return nil, fmt.Errorf("evaluate %q: unsupported result type %s", expr, lua.TypeNameOf(l, -1))
	}
}

// truthy follows Python rules: zero and the empty string are false.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func format(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// translate rewrites the Python flavoured spellings rules are authored in
// (True, None, !=, **, //, "x | int") into Lua.
func translate(expr string) (string, error) {
	parts, err := splitFilters(expr)
	if err != nil {
		return "", err
	}
	var out string
	for i, part := range parts {
		if i == 0 {
			code, err := translateTokens(part)
			if err != nil {
				return "", err
			}
			out = "(" + code + ")"
			continue
		}
		name, args, _ := strings.Cut(strings.TrimSpace(part), "(")
		fn, ok := filters[strings.TrimSpace(name)]
		if !ok {
			return "", fmt.Errorf("unknown filter %q", strings.TrimSpace(name))
		}
		if args = strings.TrimSuffix(strings.TrimSpace(args), ")"); strings.TrimSpace(args) != "" {
			code, err := translateTokens(args)
			if err != nil {
				return "", err
			}
			out = fn + "(" + out + ", " + code + ")"
		} else {
			out = fn + "(" + out + ")"
		}
	}
	return out, nil
}

// splitFilters splits on '|' outside string literals and brackets.
func splitFilters(expr string) ([]string, error) {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == '|' && depth == 0:
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in %q", expr)
	}
	return append(parts, expr[start:]), nil
}

func translateTokens(expr string) (string, error) {
	var b strings.Builder
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j >= len(rs) {
				return "", fmt.Errorf("unterminated string in %q", expr)
			}
			b.WriteString(string(rs[i : j+1]))
			i = j + 1
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			word := string(rs[i:j])
			if forbiddenWords[word] {
				return "", fmt.Errorf("%q is not allowed in expressions", word)
			}
			switch word {
			case "True":
				word = "true"
			case "False":
				word = "false"
			case "None":
				word = "nil"
			}
			b.WriteString(word)
			i = j
		case r == '!' && i+1 < len(rs) && rs[i+1] == '=':
			b.WriteString("~=")
			i += 2
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			b.WriteString("^")
			i += 2
		default:
			b.WriteRune(r)
			i++
		}
	}
	return rewriteFloorDiv(b.String())
}
