package main

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/andreyvit/sqlitedbm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "sqlitedbm"

type config struct {
	Path        string
	Flag        sqlitedbm.Flag
	Mode        fs.FileMode
	Table       string
	BusyTimeout time.Duration
	Blob        bool
	Verbose     bool
	LogLevel    zerolog.Level
}

func setupFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("db", "sqlitedbm.db", "path to the database file, or :memory:")
	f.String("flag", "c", "open flag: r (read-only), w (read-write), c (create), n (new, empty)")
	f.String("mode", "0666", "permissions of a newly created file, in octal")
	f.String("table", sqlitedbm.DefaultTable, "table holding the map")
	f.Duration("busy-timeout", 5*time.Second, "how long to wait for a locked database")
	f.Bool("blob", false, "store values as BLOBs")
	f.BoolP("verbose", "v", false, "log every database operation")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig reads flags, SQLITEDBM_* environment variables and .env files,
// in that order of precedence.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (*config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	flag, err := sqlitedbm.ParseFlag(v.GetString("flag"))
	if err != nil {
		return nil, err
	}
	mode, err := strconv.ParseUint(v.GetString("mode"), 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid mode %q: %w", v.GetString("mode"), err)
	}
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	cfg := &config{
		Path:        v.GetString("db"),
		Flag:        flag,
		Mode:        fs.FileMode(mode),
		Table:       v.GetString("table"),
		BusyTimeout: v.GetDuration("busy-timeout"),
		Blob:        v.GetBool("blob"),
		Verbose:     v.GetBool("verbose"),
		LogLevel:    level,
	}
	if cfg.Verbose && cfg.LogLevel > zerolog.DebugLevel {
		cfg.LogLevel = zerolog.DebugLevel
	}
	return cfg, nil
}

func (cfg *config) options(logger zerolog.Logger) sqlitedbm.Options {
	return sqlitedbm.Options{
		Flag:        cfg.Flag,
		Mode:        cfg.Mode,
		Table:       cfg.Table,
		BusyTimeout: cfg.BusyTimeout,
		BlobValues:  cfg.Blob,
		Logf:        logfFor(logger),
		Verbose:     cfg.Verbose,
	}
}
