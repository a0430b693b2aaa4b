package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/pkg/executil"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	APIKey     string
	Mode       string
	Port       int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Executor runs external tools
	Executor executil.Executor
}

// Overrides returns the command line values that take precedence over the
// config file.
func (f *Flags) Overrides() config.Overrides {
	return config.Overrides{
		APIKey: f.APIKey,
		Mode:   f.Mode,
		Port:   f.Port,
	}
}

// RequireValidConfig validates the loaded config and logs its warnings.
// Commands that talk to the API or run tools call it first, so a missing API
// key stops them before any work is done.
func (f *Flags) RequireValidConfig() error {
	if f.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	if err := f.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, w := range f.Config.Warnings() {
		log.Warn().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
	}

	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "hookbot", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "hookbot")
}
