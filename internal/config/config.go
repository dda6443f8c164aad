package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type FetchConfig struct {
	Dataset string `yaml:"dataset"`
	Split   string `yaml:"split"`
	Output  string `yaml:"output"`
}

type LoadConfig struct {
	Input     string `yaml:"input"`
	Table     string `yaml:"table"`
	BatchSize int    `yaml:"batch_size"`
}

type ProjectConfig struct {
	Fetch   FetchConfig `yaml:"fetch"`
	Load    LoadConfig  `yaml:"load"`
	EnvFile string      `yaml:"env_file"`
	Timeout string      `yaml:"timeout"`
}

const ConfigFileName = "pairload.yaml"

func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
