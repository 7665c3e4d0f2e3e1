package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/keys"
)

var (
	ErrDuplicateKey = errors.New("duplicate content key")
	ErrUnknownKey   = errors.New("unknown content key")
)

const (
	sectionPlayers = "players"
	sectionEnemies = "enemies"
	sectionDecks   = "decks"
)

type rawCatalog struct {
	Players map[string]game.PlayerProfile `yaml:"players"`
	Enemies map[string]game.EnemyProfile  `yaml:"enemies"`
	Decks   map[string][]string           `yaml:"decks"`
	Rules   []string                      `yaml:"rules"`
	Prelude string                        `yaml:"prelude"`
	Seed    int64                         `yaml:"seed"`
}

// Catalog is the loaded battle content. Lookups take full keys such as
// "enemies.slime"; keys are normalised with keys.ContentKey.
type Catalog struct {
	players map[string]game.PlayerProfile
	enemies map[string]game.EnemyProfile
	decks   map[string][]string
	rules   []string
	prelude string
	seed    int64
}

// LoadCatalog reads and validates the YAML content file at path.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file %s: %w", path, err)
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("content file %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes YAML content. Keys that collide after normalisation
// are rejected, as are entries missing a name or hit points and decks whose
// entries do not parse.
func ParseCatalog(data []byte) (*Catalog, error) {
	var rc rawCatalog
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	c := &Catalog{
		players: map[string]game.PlayerProfile{},
		enemies: map[string]game.EnemyProfile{},
		decks:   map[string][]string{},
		rules:   rc.Rules,
		prelude: strings.TrimSpace(rc.Prelude),
		seed:    rc.Seed,
	}

	for k, p := range rc.Players {
		key, err := register(c.players, sectionPlayers, k, p)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(p.Name) == "" || p.HitPoints <= 0 {
			return nil, fmt.Errorf("player %s: name and positive hit_points are required", key)
		}
	}
	for k, e := range rc.Enemies {
		key, err := register(c.enemies, sectionEnemies, k, e)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(e.Name) == "" || e.HitPoints <= 0 {
			return nil, fmt.Errorf("enemy %s: name and positive hit_points are required", key)
		}
	}
	for k, d := range rc.Decks {
		key, err := register(c.decks, sectionDecks, k, d)
		if err != nil {
			return nil, err
		}
		if _, err := card.NewDeck(d); err != nil {
			return nil, fmt.Errorf("deck %s: %w", key, err)
		}
	}
	if len(c.players) == 0 || len(c.enemies) == 0 || len(c.decks) == 0 {
		return nil, fmt.Errorf("content needs at least one player, one enemy and one deck")
	}
	return c, nil
}

func register[T any](m map[string]T, section, name string, v T) (string, error) {
	key := keys.ContentKey(section + "." + name)
	if _, exists := m[key]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	m[key] = v
	return key, nil
}

func lookup[T any](m map[string]T, section, key string) (T, error) {
	k := keys.ContentKey(key)
	if keys.Section(k) != section {
		k = keys.ContentKey(section + "." + key)
	}
	v, ok := m[k]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// Player accepts "players.celine" or the bare "celine".
func (c *Catalog) Player(key string) (game.PlayerProfile, error) {
	return lookup(c.players, sectionPlayers, key)
}

func (c *Catalog) Enemy(key string) (game.EnemyProfile, error) {
	return lookup(c.enemies, sectionEnemies, key)
}

func (c *Catalog) Deck(key string) ([]string, error) {
	d, err := lookup(c.decks, sectionDecks, key)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d...), nil
}

func (c *Catalog) Rules() []string { return append([]string(nil), c.rules...) }

func (c *Catalog) Prelude() string { return c.prelude }

// Seed is the content file's rng seed, 0 when unset.
func (c *Catalog) Seed() int64 { return c.seed }
