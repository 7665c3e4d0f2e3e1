package storage

import (
	"github.com/ericogr/chimera-battle/internal/game"
)

type Repository interface {
	// SaveEncounter inserts the encounter or updates the row with the same
	// EncounterUUID.
	SaveEncounter(e *game.Encounter) error
	GetEncounterByUUID(uuid string) (*game.Encounter, error)
	// ListEncounters returns the most recently updated encounters first.
	ListEncounters(limit int) ([]game.Encounter, error)

	// AppendBattleLogs stores lines with consecutive sequence numbers
	// starting at firstSeq. Lines already stored are left untouched.
	AppendBattleLogs(encounterUUID string, firstSeq int, lines []string) error
	ListBattleLogs(encounterUUID string) ([]game.BattleLogEntry, error)

	// Status description cache (lookup by keys.StatusKey)
	GetStatusDescription(key string) (*game.StatusDescription, error)
	SaveStatusDescription(d *game.StatusDescription) error
}
