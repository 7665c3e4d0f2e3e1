package card

import (
	"fmt"
	"strconv"
	"strings"
)

// DeckEntry is one line of a deck definition: "Fireball*2 # Deal 3 damage."
// An optional "[art]" suffix on the name selects different artwork.
type DeckEntry struct {
	Name        string
	Description string
	ArtName     string
	Copies      int
}

func ParseDeckEntry(line string) (DeckEntry, error) {
	main, desc, _ := strings.Cut(line, "#")
	main = strings.TrimSpace(main)
	e := DeckEntry{Description: strings.TrimSpace(desc), Copies: 1}
	if name, copies, ok := strings.Cut(main, "*"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(copies))
		if err != nil || n < 1 {
			return DeckEntry{}, fmt.Errorf("deck entry %q: invalid copy count", line)
		}
		main = strings.TrimSpace(name)
		e.Copies = n
	}
	if open := strings.Index(main, "["); open >= 0 && strings.HasSuffix(main, "]") {
		e.ArtName = strings.TrimSpace(main[open+1 : len(main)-1])
		main = strings.TrimSpace(main[:open])
	}
	if main == "" {
		return DeckEntry{}, fmt.Errorf("deck entry %q: missing name", line)
	}
	e.Name = main
	return e, nil
}

// NewDeck expands deck lines into distinct cards, one per copy.
func NewDeck(lines []string) ([]*Card, error) {
	deck := make([]*Card, 0, len(lines))
	for _, line := range lines {
		e, err := ParseDeckEntry(line)
		if err != nil {
			return nil, err
		}
		for i := 0; i < e.Copies; i++ {
			c := New(e.Name, e.Description)
			c.ArtName = e.ArtName
			deck = append(deck, c)
		}
	}
	return deck, nil
}
