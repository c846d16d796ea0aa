package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Equal(t, 500*time.Millisecond, cfg.Replay.ActionDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Replay.Transition)
	assert.Equal(t, "esc", cfg.Replay.StopKey)
	assert.Equal(t, "target.csv", cfg.Targets.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "director.yaml")
	content := `database:
  path: /tmp/actions.db
replay:
  action_delay: 1s
  stop_key: f12
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DIRECTOR_REPLAY_TRANSITION", "250ms")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "/tmp/actions.db", cfg.Database.Path)
	assert.Equal(t, time.Second, cfg.Replay.ActionDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Replay.Transition)
	assert.Equal(t, "f12", cfg.Replay.StopKey)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadSearchesWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "director.yaml"), []byte("targets:\n  path: ids.csv\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "director.yaml", cfg.Source)
	assert.Equal(t, "ids.csv", cfg.Targets.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Replay.ActionDelay = -time.Second
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replay.action_delay")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.db"), ExpandPath("~/x.db"))
	assert.Equal(t, "/abs/x.db", ExpandPath("/abs/x.db"))
}
