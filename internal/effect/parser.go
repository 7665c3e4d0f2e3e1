package effect

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/subst"
)

var (
	ErrMalformedSpan = errors.New("malformed effect span")
	ErrUnknownGlobal = errors.New("unknown global effect")
	errBadArgument   = errors.New("bad clause argument")
)

// CardResolver finds the card a global effect refers to.
type CardResolver interface {
	SeekCard(expr string) (*card.Card, error)
}

type clauseKind int

const (
	clauseNone clauseKind = iota
	clauseStatus
	clausePierce
	clauseDrain
	clauseShield
	clauseDamaged
	clauseHealed
	clauseCrit
	clauseAcc
	clauseDelay
)

// keywords in match priority order.
var keywords = []struct {
	word string
	kind clauseKind
}{
	{"pierce", clausePierce},
	{"drain", clauseDrain},
	{"shield", clauseShield},
	{"damaged", clauseDamaged},
	{"healed", clauseHealed},
	{"crit", clauseCrit},
	{"acc", clauseAcc},
	{"delay", clauseDelay},
}

var (
	numberRe = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d*)?|\.\d+)`)
	statusRe = regexp.MustCompile(`(?is)^\+\s*([^\[]+?)\s*\[\s*(\d+)\s*(turns?|times?)\s*\]\s*(.+)$`)
)

// classify picks the clause kind, trying the leading word before falling
// back to a keyword anywhere in the clause. It returns the text following
// the keyword.
func classify(clause string) (clauseKind, string) {
	if len(clause) > 1 && clause[0] == '+' && unicode.IsLetter(rune(clause[1])) {
		return clauseStatus, clause
	}
	lower := strings.ToLower(clause)
	lead := lower
	if fields := strings.Fields(lower); len(fields) > 0 {
		lead = fields[0]
	}
	for _, kw := range keywords {
		if strings.HasPrefix(lead, kw.word) {
			return kw.kind, clause[len(lead):]
		}
	}
	for _, kw := range keywords {
		if ix := strings.Index(lower, kw.word); ix >= 0 {
			return kw.kind, clause[ix+len(kw.word):]
		}
	}
	return clauseNone, ""
}

func firstNumber(s string) (float64, error) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w: no number in %q", errBadArgument, s)
	}
	return strconv.ParseFloat(m, 64)
}

// roundInt rounds half away from zero; status templates emit values like 6.25.
func roundInt(s string) (int, error) {
	f, err := firstNumber(s)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

func unitFloat(s string) (float64, error) {
	f, err := firstNumber(s)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, f)), nil
}

// ParseStatus reads "+name [N turns|times] <rule>".
func ParseStatus(clause string) (*StatusGrant, error) {
	m := statusRe.FindStringSubmatch(strings.TrimSpace(clause))
	if m == nil {
		return nil, fmt.Errorf("%w: status clause %q", errBadArgument, clause)
	}
	counter, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: status counter %q", errBadArgument, m[2])
	}
	rule, err := subst.Parse(m[4])
	if err != nil {
		return nil, err
	}
	ct := CounterTurns
	if strings.HasPrefix(strings.ToLower(m[3]), "time") {
		ct = CounterTimes
	}
	return &StatusGrant{
		Defn:    StatusDefinition{Name: strings.TrimSpace(m[1]), Rule: rule, CounterType: ct},
		Counter: counter,
	}, nil
}

func applyClause(e *SinglePoint, clause string) (bool, error) {
	kind, arg := classify(clause)
	switch kind {
	case clauseNone:
		return false, nil
	case clauseStatus:
		grant, err := ParseStatus(clause)
		if err != nil {
			return false, err
		}
		e.AddStatus = grant
	case clausePierce:
		e.Pierce = true
	case clauseDrain:
		e.Drain = true
	case clauseCrit, clauseAcc:
		f, err := unitFloat(arg)
		if err != nil {
			return false, err
		}
		if kind == clauseCrit {
			e.CritChance = f
		} else {
			e.Accuracy = f
		}
	default:
		n, err := roundInt(arg)
		if err != nil {
			return false, err
		}
		switch kind {
		case clauseShield:
			e.DeltaShield = n
		case clauseDamaged:
			e.DeltaHP = -n
		case clauseHealed:
			e.DeltaHP = n
		case clauseDelay:
			e.Delay = max(n, 0)
		}
	}
	return true, nil
}

// ParseTargeted parses "[entity: clause | clause ...]". Clauses that match
// no keyword are ignored; a keyword clause with an unusable argument is
// dropped with a warning. Without any meaningful clause the effect is Noop.
func ParseTargeted(span string) (string, *SinglePoint, error) {
	t, err := tokenize(span)
	if err != nil {
		return "", nil, err
	}
	if !t.hasHead || t.head == "" {
		return "", nil, fmt.Errorf("%w: missing target in %q", ErrMalformedSpan, span)
	}
	e := NewSinglePoint()
	meaningful := false
	for _, c := range t.clauses {
		ok, err := applyClause(e, c)
		if err != nil {
			logging.Warn("dropped effect clause", logging.Fields{
				constants.LogFieldSpan:   span,
				constants.LogFieldClause: c,
				"error":                  err.Error(),
			})
			continue
		}
		meaningful = meaningful || ok
	}
	e.Noop = !meaningful
	return t.head, e, nil
}

// Parse parses a span as a global effect when its leading word is a global
// keyword, otherwise as a targeted effect.
func Parse(span string, resolver CardResolver) (Parsed, error) {
	t, err := tokenize(span)
	if err != nil {
		return Parsed{}, err
	}
	if word, args, ok := globalHead(t); ok {
		g, err := parseGlobal(word, args, resolver)
		if err != nil {
			return Parsed{}, fmt.Errorf("span %q: %w", span, err)
		}
		return Parsed{Effect: g}, nil
	}
	if !t.hasHead {
		first := ""
		if len(t.clauses) > 0 {
			first = t.clauses[0]
		}
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnknownGlobal, first)
	}
	target, e, err := ParseTargeted(span)
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Target: target, Effect: e}, nil
}
