package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// FileName is the config file base name searched for without an explicit path.
const FileName = "chapsplit"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// With an empty cfgFile, ./chapsplit.yaml and then {searchDirs}/chapsplit.yaml
// are tried; a missing file is not an error.
func NewManager(cfgFile string, searchDirs ...string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile, searchDirs); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string, searchDirs []string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("toc", defaults.TOC)
	v.SetDefault("pdf", defaults.PDF)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("level", defaults.Level)
	v.SetDefault("chapter_names", defaults.ChapterNames)
	v.SetDefault("use_predefined_names", defaults.UsePredefinedNames)
	v.SetDefault("trim_blank_pages", defaults.TrimBlankPages)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)

	// Environment variables with CHAPSPLIT_ prefix, e.g. CHAPSPLIT_OUTPUT_DIR
	v.SetEnvPrefix("CHAPSPLIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ResolvePaths()
	return &cfg, nil
}

// Get returns a copy of the current configuration (thread-safe).
// Callers may apply flag overrides to the copy.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	cfg := *cm.config
	cfg.ChapterNames = append([]string(nil), cm.config.ChapterNames...)
	return &cfg
}

// ConfigFileUsed returns the config file that was read, or "".
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
// It is a no-op when no config file was read.
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
// An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# chapsplit configuration
# Paths may use ${ENV_VAR} syntax to reference environment variables.
# chapter_names lists output file names by chapter position. With
# use_predefined_names set, chapter N is written to the Nth name and
# chapters past the end of the list fall back to "NN-Title.pdf", e.g.
#
# chapter_names:
#   - 01-mol-bio.pdf
#   - 02-history.pdf
#   - 03-genomes.pdf
#   - 04-genes.pdf
#   - 05-alignment-m.pdf
#   - 06-alignment-t.pdf
#   - 07-filogeny.pdf

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
