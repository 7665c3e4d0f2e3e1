package game

import (
	"strings"

	"gorm.io/gorm"
)

// PlayerProfile is the static content a player battler is built from. It is
// loaded from the content catalogue and never persisted.
type PlayerProfile struct {
	Name      string `json:"name" yaml:"name"`
	HitPoints int    `json:"hit_points" yaml:"hit_points"`
	// Profile is the player's backstory, handed to the judge.
	Profile string `json:"profile" yaml:"profile"`
	MP      int    `json:"mp" yaml:"mp"`
}

// EnemyProfile is the static content of one enemy kind. Pattern is the
// repeating list of intents the enemy announces, one per turn.
type EnemyProfile struct {
	Name        string   `json:"name" yaml:"name"`
	HitPoints   int      `json:"hit_points" yaml:"hit_points"`
	Description string   `json:"description" yaml:"description"`
	Pattern     []string `json:"pattern" yaml:"pattern"`
	Chara       string   `json:"chara,omitempty" yaml:"chara"`
}

// EncounterStatus mirrors the battle outcome for persisted encounters.
type EncounterStatus string

const (
	EncounterOngoing EncounterStatus = "ongoing"
	EncounterVictory EncounterStatus = "victory"
	EncounterDefeat  EncounterStatus = "defeat"
)

// Encounter is the persisted summary of one battle. The live state stays in
// memory; this row lets clients list and inspect encounters across restarts.
type Encounter struct {
	gorm.Model
	EncounterUUID string          `json:"encounter_uuid" gorm:"uniqueIndex"`
	DeckKey       string          `json:"deck_key"`
	PlayerKey     string          `json:"player_key"`
	EnemyKeys     string          `json:"enemy_keys"` // comma separated
	Seed          int64           `json:"seed"`
	TurnCounter   int             `json:"turn_counter"`
	Status        EncounterStatus `json:"status"`
	PlayerName    string          `json:"player_name"`
	PlayerHP      int             `json:"player_hp"`
	PlayerMaxHP   int             `json:"player_max_hp"`
	EnemiesLeft   int             `json:"enemies_left"`
	LastRarity    int             `json:"last_rarity"`
	LastResults   string          `json:"last_results"`
}

// EnemyKeyList splits EnemyKeys back into the catalogue keys.
func (e *Encounter) EnemyKeyList() []string {
	if e.EnemyKeys == "" {
		return nil
	}
	return strings.Split(e.EnemyKeys, ",")
}

func (Encounter) TableName() string { return "encounters" }

// BattleLogEntry is one human readable line of an encounter's battle log.
type BattleLogEntry struct {
	gorm.Model
	EncounterUUID string `json:"encounter_uuid" gorm:"index"`
	Seq           int    `json:"seq"`
	Line          string `json:"line"`
}

func (BattleLogEntry) TableName() string { return "battle_logs" }

// StatusDescription caches the one sentence explanation of a status rule,
// keyed by the canonical status key so the same rule is only described once.
type StatusDescription struct {
	gorm.Model
	StatusKey   string `json:"status_key" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Rule        string `json:"rule"`
	Description string `json:"description"`
}

func (StatusDescription) TableName() string { return "status_descriptions" }
