package storage

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ericogr/chimera-battle/internal/game"
)

// OpenAndMigrate opens the sqlite database at dataSourceName and brings the
// schema up to date. ":memory:" and "file:" DSNs are passed through as is;
// for plain paths the parent directory is created.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	if dataSourceName != ":memory:" && !strings.HasPrefix(dataSourceName, "file:") {
		if err := os.MkdirAll(filepath.Dir(dataSourceName), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.Encounter{}, &game.BattleLogEntry{}, &game.StatusDescription{}); err != nil {
		return nil, err
	}
	// one row per (encounter, seq) so a retried append cannot double a line
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_battle_logs_encounter_seq ON battle_logs(encounter_uuid, seq);").Error; err != nil {
		return nil, err
	}
	return db, nil
}
