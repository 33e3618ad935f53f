package driver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/csvq/csvq/domain/model"
)

// configParam is the DSN query parameter carrying load options.
const configParam = "?config="

// LoadConfig carries load options from the public builder to the driver.
// database/sql only passes a string DSN between the two, so the config
// travels as a base64-encoded JSON query parameter.
type LoadConfig struct {
	// Delimiter is the input field delimiter. Empty means comma.
	Delimiter string `json:"delimiter,omitempty"`
	// NullSentinel is an extra string treated as NULL on input. The empty
	// string always is.
	NullSentinel string `json:"null_sentinel,omitempty"`
	// SampleLimit caps rows inspected during type inference. 0 samples
	// every row.
	SampleLimit int `json:"sample_limit"`
}

// FormatDSN encodes file paths and load options into a DSN.
func FormatDSN(paths []string, cfg LoadConfig) (string, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to serialize load config: %w", err)
	}
	dsn := strings.Join(paths, ";")
	return dsn + configParam + base64.StdEncoding.EncodeToString(encoded), nil
}

// ParseDSN splits a DSN into file paths and load options. A DSN without a
// config parameter yields the default config, so plain
// sql.Open("csvq", "a.csv") samples the same way the builder does.
func ParseDSN(dsn string) ([]string, LoadConfig, error) {
	cfg := LoadConfig{SampleLimit: model.DefaultSampleLimit}

	if idx := strings.Index(dsn, configParam); idx >= 0 {
		encoded := dsn[idx+len(configParam):]
		dsn = dsn[:idx]

		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, cfg, fmt.Errorf("failed to decode load config: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, cfg, fmt.Errorf("failed to parse load config: %w", err)
		}
	}

	var paths []string
	for _, path := range strings.Split(dsn, ";") {
		path = strings.TrimSpace(path)
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, cfg, nil
}

// delimiterRune decodes the configured delimiter, defaulting to comma.
func (cfg LoadConfig) delimiterRune() rune {
	if cfg.Delimiter == "" {
		return ','
	}
	return []rune(cfg.Delimiter)[0]
}
