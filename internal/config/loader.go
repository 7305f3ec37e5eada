package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const balanceFile = "bastion.yaml"

// Load loads the balance configuration and validates it.
// Search order: customPath -> ~/.bastion/configs/bastion.yaml -> ./configs/bastion.yaml -> embedded default
func Load(customPath string) (Balance, error) {
	cfg, err := load(customPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func load(customPath string) (Balance, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Balance{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Balance{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(balanceFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", balanceFile)); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultBalanceYAML)
	if err != nil {
		return DefaultBalance(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes a balance file. Fields missing from data keep their default values.
func Parse(data []byte) (Balance, error) {
	cfg := DefaultBalance()
	// Slices are replaced wholesale by yaml.v3, so paths and tiers in data win entirely.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Balance{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bastion", "configs", filename)
}
