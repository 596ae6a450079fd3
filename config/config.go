// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// SearchConfig points query dispatch at the structural search service.
type SearchConfig struct {
	// base of the search URL; the encoded query is appended to it
	BaseURL string `mapstructure:"base-url"`

	// return type requested from the service
	ReturnType string `mapstructure:"return-type"`

	// timeout for outbound requests
	Timeout time.Duration `mapstructure:"timeout"`
}

// MeilisearchConfig captures connection settings for the optional motif
// catalog index.
type MeilisearchConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api-key"`
	Index  string `mapstructure:"index"`
}

// ShellTargetConfig names a command that receives catalog changes on stdin.
type ShellTargetConfig struct {
	Command string `mapstructure:"command"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// how long filesystem events settle before a re-sync
	Debounce time.Duration `mapstructure:"debounce"`

	// address to serve Prometheus metrics on; empty disables the endpoint
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Config is the root-level settings struct and is a mix of settings
// available in the config file and those available from the command line.
type Config struct {
	// path to the selection document exported by the viewer
	Selection string `mapstructure:"selection"`

	// path to the workbench database
	DB string `mapstructure:"db"`

	// log at debug level
	Verbose bool `mapstructure:"verbose"`

	Search      SearchConfig      `mapstructure:"search"`
	Meilisearch MeilisearchConfig `mapstructure:"meilisearch"`
	ShellTarget ShellTargetConfig `mapstructure:"shell-target"`
	Watch       WatchConfig       `mapstructure:"watch"`
}

// NewConfig returns a new Config struct populated by Viper settings (either
// from the config file or command line arguments), with path defaults
// applied.
func NewConfig() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}

	if c.Selection == "" {
		c.Selection = DefaultSelectionPath()
	}
	if c.DB == "" {
		c.DB = DefaultDBPath()
	}
	return c, nil
}

// DefaultSelectionPath is where viewers export the selection document when
// no path is configured.
func DefaultSelectionPath() string {
	return filepath.Join(configDir(), "selection.json")
}

// DefaultDBPath is the workbench database location when no path is
// configured.
func DefaultDBPath() string {
	return filepath.Join(configDir(), "motifq.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".motifq"
	}
	return filepath.Join(home, ".motifq")
}
