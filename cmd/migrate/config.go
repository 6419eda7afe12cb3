package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "migrate.yaml"

// Config is the migrate.yaml file. Command line flags override its values.
type Config struct {
	Changes          string         `yaml:"changes" validate:"required"`
	Schemas          string         `yaml:"schemas,omitempty"`
	VersionAttribute string         `yaml:"versionAttribute" validate:"required"`
	Versions         VersionsConfig `yaml:"versions"`
	Log              LogConfig      `yaml:"log"`
}

// VersionsConfig selects the version scheme.
type VersionsConfig struct {
	Scheme  string   `yaml:"scheme" validate:"required,oneof=enum semver integer lexical"`
	Symbols []string `yaml:"symbols,omitempty" validate:"required_if=Scheme enum,unique,dive,required"`
	Current string   `yaml:"current,omitempty" validate:"required_unless=Scheme enum"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

func defaultConfig() Config {
	return Config{
		Changes:          "./migrations",
		VersionAttribute: "modelVersion",
		Versions:         VersionsConfig{Scheme: "lexical"},
		Log:              LogConfig{Level: "info"},
	}
}

// loadConfig reads path over the defaults. A missing file is only an error when the
// path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read the config file %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, nil
}

var configValidate = validator.New()

func (c Config) validate() error {
	if s := c.Versions.Scheme; s != "" && s != "enum" && c.Versions.Current == "" {
		return fmt.Errorf("invalid configuration: the %s scheme needs a current version, set versions.current in %s or pass --current",
			s, defaultConfigPath)
	}
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
