package main

import (
	"github.com/ericogr/chimera-battle/internal/config"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/judge"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/storage"
)

func loadSettingsOrExit() *config.Settings {
	s, err := config.LoadSettings()
	if err != nil {
		logging.Fatal("Missing or invalid settings", err, nil)
	}
	return s
}

func loadCatalogOrExit(path string) *config.Catalog {
	c, err := config.LoadCatalog(path)
	if err != nil {
		logging.Fatal("Missing or invalid battle content", err, logging.Fields{
			constants.LogFieldPath: path,
			"hint":                 "create a battle_content.yaml with players, enemies and decks sections",
		})
	}
	return c
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{constants.LogFieldPath: dbPath})
	}
	return storage.NewSQLiteRepository(db)
}

// selectJudge returns the judge and status interpreter named by the settings.
// Interpretations are cached in the repository either way.
func selectJudge(s *config.Settings, repo storage.Repository) (judge.Judge, judge.Interpreter) {
	if s.Judge == constants.JudgeScripted {
		logging.Warn("scripted judge has no canned results; drive encounters through the effects endpoint", nil)
		return judge.NewScripted(), &judge.Cached{Store: repo, Next: judge.Plain{}}
	}
	o := judge.NewOpenAI(s.OpenAIAPIKey)
	return o, &judge.Cached{Store: repo, Next: o}
}
