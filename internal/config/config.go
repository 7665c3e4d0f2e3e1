package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/ericogr/chimera-battle/internal/constants"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Addr         string `env:"BATTLE_ADDR" envDefault:":8080"`
	DatabasePath string `env:"BATTLE_DB" envDefault:"./data/battle.db"`
	ContentFile  string `env:"BATTLE_CONTENT" envDefault:"./battle_content.yaml"`
	// Seed fixes the rng of new encounters; 0 picks a random seed per
	// encounter unless the content file provides one.
	Seed         int64  `env:"BATTLE_SEED" envDefault:"0"`
	Judge        string `env:"BATTLE_JUDGE" envDefault:"openai"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

// LoadSettings parses the environment and checks that the chosen judge can
// run.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	switch s.Judge {
	case constants.JudgeOpenAI:
		if s.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", constants.EnvOpenAIAPIKey, constants.EnvJudge, constants.JudgeOpenAI)
		}
	case constants.JudgeScripted:
	default:
		return nil, fmt.Errorf("%s: unknown judge %q", constants.EnvJudge, s.Judge)
	}
	return &s, nil
}
