// Package cli implements the director command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/opencode-ai/director/internal/config"
	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	dbPath         string
	logLevel       string
	logFormat      string
	jsonOutput     bool
	noColor        bool
	noProgress     bool
	nonInteractive bool
	assumeYes      bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "director",
	Short: "Record and replay input actions across a list of targets",
	Long: `director keeps an ordered list of mouse and keyboard actions in a local
SQLite database and replays it once per target id, substituting the id into
{target_id} placeholders of type actions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./director.yaml or ~/.config/director/config.yaml)")
	flags.StringVar(&dbPath, "db", "", "action database path")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (console, json)")
	flags.BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt, fail instead")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
}

// Execute runs the root command with the given input backend.
func Execute(ctx context.Context, b Backend) error {
	SetBackend(b)
	return rootCmd.ExecuteContext(ctx)
}

func initConfig(cmd *cobra.Command) error {
	v := viper.New()
	flags := cmd.Flags()
	bindings := map[string]string{
		"database.path":  "db",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	}
	for key, name := range bindings {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		noColor = true
	}
	if err := logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: noColor,
	}); err != nil {
		return err
	}

	appConfig = cfg
	if cfg.Source != "" {
		log := logging.Component("cli")
		log.Debug().Str("config", cfg.Source).Msg("loaded config file")
	}
	return nil
}

// GetConfig returns the loaded configuration, or defaults before init.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func openDatabase(ctx context.Context) (*db.DB, error) {
	path := strings.TrimSpace(GetConfig().Database.Path)
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}
