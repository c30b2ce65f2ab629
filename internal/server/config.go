// Package server implements the main NemaDB server logic.
//
// This file defines the Go structs that correspond to the YAML server
// configuration. These structs allow for type-safe parsing of the
// configuration file: network address, persistence directory, auth
// token and the default search parameters applied when an execute
// request leaves them unset.

package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/nemadb/pkg/core/matcher"
)

// Config represents the top-level structure of the server configuration file.
type Config struct {
	HTTPAddr    string       `yaml:"http_addr"`
	DataDir     string       `yaml:"data_dir"`
	AuthToken   string       `yaml:"auth_token"`
	SyncOnWrite bool         `yaml:"sync_on_write"`
	Search      SearchConfig `yaml:"search"`
}

// SearchConfig holds the default matcher parameters for HTTP execute
// requests. Zero fields fall back to the matcher's own defaults.
type SearchConfig struct {
	Alpha           float64 `yaml:"alpha"`
	MaxRounds       int     `yaml:"max_rounds"`
	Tolerance       float64 `yaml:"tolerance"`
	MinScore        float64 `yaml:"min_score"`
	ExpansionBudget int64   `yaml:"expansion_budget"`
	Workers         int     `yaml:"workers"`
	DefaultLimit    int     `yaml:"default_limit"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":9091",
		DataDir:  "./data",
		Search: SearchConfig{
			Alpha:        matcher.DefaultAlpha,
			DefaultLimit: 10,
		},
	}
}

// LoadConfig reads and parses the YAML configuration file from the given path.
// It uses Strict Mode (KnownFields) to prevent silent errors due to typos.
// Environment variables in the file are expanded, so secrets like the
// auth token can be injected as ${NEMADB_AUTH_TOKEN}.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	expandedData := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	return config, nil
}

// matcherConfig converts the configured search defaults into a matcher
// configuration.
func (sc SearchConfig) matcherConfig() matcher.Config {
	return matcher.Config{
		Alpha:           sc.Alpha,
		MaxRounds:       sc.MaxRounds,
		Tolerance:       sc.Tolerance,
		MinScore:        sc.MinScore,
		ExpansionBudget: sc.ExpansionBudget,
		Workers:         sc.Workers,
	}
}
