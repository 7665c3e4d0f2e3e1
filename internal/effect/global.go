package effect

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ericogr/chimera-battle/internal/card"
)

const (
	globalDraw      = "draw"
	globalDiscard   = "discard"
	globalCreate    = "create"
	globalDuplicate = "duplicate"
	globalTransform = "transform"
	globalDestroy   = "destroy"
)

var globalWords = map[string]bool{
	globalDraw: true, globalDiscard: true, globalCreate: true,
	globalDuplicate: true, globalTransform: true, globalDestroy: true,
}

// globalOptions are the "| delay N", "| to hand", "| copies N" clauses every
// global effect may carry.
type globalOptions struct {
	delay  int
	where  card.Zone
	copies int
}

// globalHead reports whether the span body opens with a global keyword and
// returns the keyword with the clauses that follow it.
func globalHead(t tokens) (string, []string, bool) {
	body := strings.TrimSpace(t.body)
	end := strings.IndexFunc(body, func(r rune) bool { return unicode.IsSpace(r) || r == ':' || r == '|' })
	word := body
	if end >= 0 {
		word = body[:end]
	}
	word = strings.ToLower(word)
	// "[Draw Golem: damaged 5]" targets a battler
	if !globalWords[word] || (t.hasHead && !strings.EqualFold(t.head, word)) {
		return "", nil, false
	}
	rest := strings.TrimSpace(body[len(word):])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	return word, splitTopLevel(rest, '|'), true
}

func parseGlobal(word string, args []string, resolver CardResolver) (Effect, error) {
	opts := globalOptions{where: card.ZoneHand, copies: 1}
	var subjects []string
	for _, a := range args {
		a = trimClause(a)
		ok, err := opts.apply(a)
		if err != nil {
			return nil, err
		}
		if !ok {
			subjects = append(subjects, a)
		}
	}
	subject := strings.TrimSpace(strings.Join(subjects, ", "))

	switch word {
	case globalDraw:
		n := 1
		if subject != "" {
			var err error
			if n, err = roundInt(subject); err != nil {
				return nil, err
			}
		}
		return &DrawCards{Count: max(n, 0), Delay: opts.delay}, nil

	case globalDiscard:
		if n, err := roundInt(subject); err == nil && isNumeric(subject) {
			return &DiscardCards{Count: max(n, 0), Delay: opts.delay}, nil
		}
		cards, err := resolveAll(subject, resolver)
		if err != nil {
			return nil, err
		}
		return &DiscardCards{Specific: cards, Delay: opts.delay}, nil

	case globalCreate:
		literal, copies := splitCopies(subject, opts.copies)
		c, err := cardLiteral(literal)
		if err != nil {
			return nil, err
		}
		return &CreateCard{Card: c, Copies: copies, Where: opts.where, Delay: opts.delay}, nil

	case globalDuplicate:
		ref, copies := splitCopies(subject, opts.copies)
		c, err := resolve(ref, resolver)
		if err != nil {
			return nil, err
		}
		return &DuplicateCard{Card: c, Copies: copies, Where: opts.where, Delay: opts.delay}, nil

	case globalTransform:
		ix := lastTopLevelIndex(subject, " to ")
		if ix < 0 {
			return nil, fmt.Errorf("%w: transform needs '<card> to <card>', got %q", ErrMalformedSpan, subject)
		}
		from, err := resolve(subject[:ix], resolver)
		if err != nil {
			return nil, err
		}
		to, err := cardLiteral(subject[ix+len(" to "):])
		if err != nil {
			return nil, err
		}
		return &TransformCard{From: from, To: to, Delay: opts.delay}, nil

	case globalDestroy:
		if rest, ok := cutPrefixFold(subject, "rule"); ok && isNumeric(strings.TrimPrefix(strings.ToUpper(rest), "R")) {
			rest = strings.TrimPrefix(strings.ToUpper(rest), "R")
			id, err := roundInt(rest)
			if err != nil {
				return nil, err
			}
			return &DestroyRule{RuleID: id, Delay: opts.delay}, nil
		}
		cards, err := resolveAll(subject, resolver)
		if err != nil {
			return nil, err
		}
		return &DestroyCards{Cards: cards, Delay: opts.delay}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGlobal, word)
}

// trimClause drops surrounding space and a statement-closing ';'.
func trimClause(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
}

// apply consumes an option clause and reports whether it was one.
func (o *globalOptions) apply(clause string) (bool, error) {
	if rest, ok := cutPrefixFold(clause, "delay"); ok {
		n, err := roundInt(rest)
		if err != nil {
			return false, err
		}
		o.delay = max(n, 0)
		return true, nil
	}
	if rest, ok := cutPrefixFold(clause, "copies"); ok {
		n, err := roundInt(rest)
		if err != nil {
			return false, err
		}
		o.copies = max(n, 1)
		return true, nil
	}
	for _, prefix := range []string{"to ", "into "} {
		if rest, ok := cutPrefixFold(clause, prefix); ok {
			z, err := parseZone(rest)
			if err != nil {
				return false, err
			}
			o.where = z
			return true, nil
		}
	}
	return false, nil
}

func parseZone(s string) (card.Zone, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), "_"))
	key = strings.TrimPrefix(key, "the_")
	switch key {
	case "deck_top", "top_of_deck", "top_of_the_deck", "top":
		return card.ZoneDeckTop, nil
	case "deck":
		return card.ZoneDeck, nil
	case "hand":
		return card.ZoneHand, nil
	case "graveyard", "discard_pile":
		return card.ZoneGraveyard, nil
	}
	return card.ZoneNone, fmt.Errorf("%w: unknown destination %q", errBadArgument, s)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

func isNumeric(s string) bool {
	return numberRe.FindString(s) == strings.TrimSpace(s)
}

// splitCopies reads "<card> * N"; def is used when no multiplier is given.
func splitCopies(subject string, def int) (string, int) {
	ix := lastTopLevelIndex(subject, "*")
	if ix < 0 {
		return subject, def
	}
	n, err := roundInt(subject[ix+1:])
	if err != nil {
		return subject, def
	}
	return strings.TrimSpace(subject[:ix]), max(n, 1)
}

// cardLiteral builds a new card from "<Name: desc>" or a bare name.
func cardLiteral(s string) (*card.Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") {
		return card.Parse(s)
	}
	if s == "" {
		return nil, fmt.Errorf("%w: missing card", ErrMalformedSpan)
	}
	return card.New(s, ""), nil
}

func resolve(ref string, resolver CardResolver) (*card.Card, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: no card resolver for %q", card.ErrNotFound, ref)
	}
	return resolver.SeekCard(strings.TrimSpace(ref))
}

func resolveAll(subject string, resolver CardResolver) ([]*card.Card, error) {
	refs := splitTopLevel(subject, ',')
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no cards named", ErrMalformedSpan)
	}
	out := make([]*card.Card, 0, len(refs))
	for _, ref := range refs {
		c, err := resolve(ref, resolver)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// splitTopLevel splits s on sep outside brackets and card literals,
// dropping empty parts.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		d     depthScanner
		start int
	)
	for i := 0; i < len(s); i++ {
		if d.top() && s[i] == sep {
			parts = appendClause(parts, s[start:i])
			start = i + 1
			continue
		}
		d.step(s, i)
	}
	return appendClause(parts, s[start:])
}

// lastTopLevelIndex finds the last case-insensitive occurrence of needle
// outside brackets and card literals.
func lastTopLevelIndex(s, needle string) int {
	var d depthScanner
	found := -1
	for i := 0; i < len(s); i++ {
		if d.top() && len(s)-i >= len(needle) && strings.EqualFold(s[i:i+len(needle)], needle) {
			found = i
		}
		d.step(s, i)
	}
	return found
}
