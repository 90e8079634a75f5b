package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds the tunable rules and port-level pacing knobs.
type GameConfig struct {
	// WinScore is the total score threshold that ends the game.
	WinScore int `json:"win_score"`
	// MaxRedeals caps redeal acceptances per round so the redeal protocol
	// always terminates.
	MaxRedeals int `json:"max_redeals"`
	// WeakHandThreshold: a hand with no piece above this point value may
	// request a redeal.
	WeakHandThreshold int `json:"weak_hand_threshold"`

	// Bot pacing used by the transport port only; the core never waits.
	BotMinDelaySeconds      int `json:"bot_min_delay_sec"`
	BotMaxDelaySeconds      int `json:"bot_max_delay_sec"`
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_sec"`
}

// Default returns the standard Liap configuration.
func Default() *GameConfig {
	return &GameConfig{
		WinScore:                50,
		MaxRedeals:              3,
		WeakHandThreshold:       9,
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 5,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path, filling
// missing fields with defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Default()
		if err := json.Unmarshal(data, c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or defaults when no file
// has been loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}
