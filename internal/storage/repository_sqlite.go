package storage

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ericogr/chimera-battle/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveEncounter(e *game.Encounter) error {
	if e.ID != 0 {
		return r.db.Save(e).Error
	}
	// upsert keyed by encounter_uuid
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "encounter_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "turn_counter", "status", "player_hp",
			"enemies_left", "last_rarity", "last_results",
		}),
	}).Create(e).Error
}

func (r *sqliteRepository) GetEncounterByUUID(uuid string) (*game.Encounter, error) {
	var e game.Encounter
	if err := r.db.Where("encounter_uuid = ?", uuid).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *sqliteRepository) ListEncounters(limit int) ([]game.Encounter, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []game.Encounter
	if err := r.db.Order("updated_at DESC").Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqliteRepository) AppendBattleLogs(encounterUUID string, firstSeq int, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]game.BattleLogEntry, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, game.BattleLogEntry{EncounterUUID: encounterUUID, Seq: firstSeq + i, Line: l})
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "encounter_uuid"}, {Name: "seq"}},
		DoNothing: true,
	}).Create(&rows).Error
}

func (r *sqliteRepository) ListBattleLogs(encounterUUID string) ([]game.BattleLogEntry, error) {
	var out []game.BattleLogEntry
	if err := r.db.Where("encounter_uuid = ?", encounterUUID).Order("seq ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqliteRepository) GetStatusDescription(key string) (*game.StatusDescription, error) {
	var d game.StatusDescription
	if err := r.db.Where("status_key = ?", key).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *sqliteRepository) SaveStatusDescription(d *game.StatusDescription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "status_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "name", "rule", "description"}),
	}).Create(d).Error
}
