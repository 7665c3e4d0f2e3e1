package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ericogr/chimera-battle/internal/game"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "nested", "battle.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewSQLiteRepository(db)
}

func TestSaveEncounter_Upsert(t *testing.T) {
	repo := newTestRepo(t)
	e := &game.Encounter{
		EncounterUUID: "enc-1", DeckKey: "decks.starter", PlayerKey: "players.celine",
		EnemyKeys: "enemies.slime,enemies.slime", Status: game.EncounterOngoing,
		PlayerName: "Celine", PlayerHP: 30, PlayerMaxHP: 30, EnemiesLeft: 2,
	}
	require.NoError(t, repo.SaveEncounter(e))
	require.NotZero(t, e.ID)

	e.TurnCounter = 3
	e.PlayerHP = 21
	require.NoError(t, repo.SaveEncounter(e))

	// a detached copy with the same uuid updates the existing row
	dup := &game.Encounter{EncounterUUID: "enc-1", Status: game.EncounterVictory, TurnCounter: 4, PlayerHP: 20}
	require.NoError(t, repo.SaveEncounter(dup))

	got, err := repo.GetEncounterByUUID("enc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TurnCounter)
	assert.Equal(t, game.EncounterVictory, got.Status)
	assert.Equal(t, "Celine", got.PlayerName, "identity columns are not overwritten")
	assert.Equal(t, []string{"enemies.slime", "enemies.slime"}, got.EnemyKeyList())

	list, err := repo.ListEncounters(0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetEncounterByUUID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBattleLogs(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AppendBattleLogs("enc-1", 0, []string{"Turn 0: Slime A received damage 5", "Turn 0: Draw 1 cards"}))
	require.NoError(t, repo.AppendBattleLogs("enc-1", 1, []string{"Turn 0: Draw 1 cards", "Turn 1: Slime A has fallen."}))
	require.NoError(t, repo.AppendBattleLogs("enc-2", 0, []string{"Turn 0: Bat A received damage 1"}))
	require.NoError(t, repo.AppendBattleLogs("enc-2", 1, nil))

	logs, err := repo.ListBattleLogs("enc-1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Turn 1: Slime A has fallen.", logs[2].Line)
	assert.Equal(t, 2, logs[2].Seq)
}

func TestStatusDescriptions(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetStatusDescription("vulnerable_1234abcd")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.SaveStatusDescription(&game.StatusDescription{StatusKey: "vulnerable_1234abcd", Name: "vulnerable", Description: "takes more damage."}))
	require.NoError(t, repo.SaveStatusDescription(&game.StatusDescription{StatusKey: "vulnerable_1234abcd", Name: "vulnerable", Description: "takes 25% more damage."}))

	d, err := repo.GetStatusDescription("vulnerable_1234abcd")
	require.NoError(t, err)
	assert.Equal(t, "takes 25% more damage.", d.Description)
}
