package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. DIRECTOR_REPLAY_ACTION_DELAY.
const EnvPrefix = "DIRECTOR"

// SetDefaults registers every key with its default so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("targets.path", def.Targets.Path)
	v.SetDefault("replay.action_delay", def.Replay.ActionDelay)
	v.SetDefault("replay.transition", def.Replay.Transition)
	v.SetDefault("replay.stop_key", def.Replay.StopKey)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}

// SearchPaths returns candidate config files in precedence order.
func SearchPaths() []string {
	paths := []string{"director.yaml"}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "director", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "director", "config.yaml"))
	}
	return paths
}

// Load reads configuration into v. An explicit configFile must exist; otherwise
// the first file found in SearchPaths is used, and none is fine.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := strings.TrimSpace(configFile)
	if source == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				source = candidate
				break
			}
		}
	}

	if source != "" {
		v.SetConfigFile(ExpandPath(source))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", source, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = source
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Targets.Path = ExpandPath(cfg.Targets.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
