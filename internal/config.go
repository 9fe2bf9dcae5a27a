package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/hbomb79/Reel/internal/api"
	"github.com/hbomb79/Reel/internal/api/jwt"
	"github.com/hbomb79/Reel/internal/database"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ReelConfig is the struct used to contain the
// various user config supplied by file and/or
// environment variables.
type ReelConfig struct {
	Store      StoreConfig             `yaml:"store"`
	Database   database.DatabaseConfig `yaml:"database"`
	RestConfig api.RestConfig          `yaml:"api"`
	Auth       jwt.AuthConfig          `yaml:"auth"`
	LogLevel   string                  `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// StoreConfig selects the persistence backing the catalog. The memory
// driver optionally persists to (and watches) a JSON data file.
type StoreConfig struct {
	Driver    string `yaml:"driver" env:"STORE_DRIVER" env-default:"postgres"`
	DataFile  string `yaml:"data_file" env:"STORE_DATA_FILE"`
	WatchFile bool   `yaml:"watch_file" env:"STORE_WATCH_FILE" env-default:"false"`
}

// LoadConfig reads the YAML configuration file at the path provided, with
// environment variables taking precedence over values in the file. If
// configPath is empty, or names a file which does not exist, the
// configuration is read from the environment alone.
func LoadConfig(configPath string) (*ReelConfig, error) {
	config := &ReelConfig{}
	if configPath != "" {
		path, err := homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}

		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
			}

			return config, config.normalize()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		log.Warnf("Config file %s does not exist, using environment only\n", path)
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return config, config.normalize()
}

func (config *ReelConfig) normalize() error {
	switch config.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver '%s' (expected %s or %s)", config.Store.Driver, DriverPostgres, DriverMemory)
	}

	if config.Store.DataFile != "" {
		path, err := homedir.Expand(config.Store.DataFile)
		if err != nil {
			return fmt.Errorf("failed to expand data file path: %w", err)
		}
		config.Store.DataFile = path
	}
	if config.Store.WatchFile && config.Store.DataFile == "" {
		return errors.New("store.watch_file requires store.data_file to be set")
	}

	return nil
}
