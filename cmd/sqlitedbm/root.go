package main

import (
	"github.com/andreyvit/sqlitedbm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const openContainer = "container"

// app is the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	cfg *config
	log zerolog.Logger

	m *sqlitedbm.Map
	c *sqlitedbm.Container
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "sqlitedbm",
		Short: "Persistent string-to-string map stored in SQLite",
		Long: `sqlitedbm reads and writes a key/value map kept in a single SQLite table.

Every flag can also be set through a SQLITEDBM_* environment variable
(for example SQLITEDBM_DB or SQLITEDBM_BUSY_TIMEOUT), or in .env files.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}
	setupFlags(root)

	for _, cmd := range a.commands() {
		root.AddCommand(cmd)
	}
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	opt := cfg.options(a.log)
	if cmd.Annotations["open"] == openContainer {
		a.c, err = sqlitedbm.OpenContainer(cfg.Path, opt)
	} else {
		a.m, err = sqlitedbm.Open(cfg.Path, opt)
	}
	if err != nil {
		return err
	}
	a.log.Debug().Str("db", cfg.Path).Stringer("flag", cfg.Flag).Str("table", cfg.Table).Msg("opened")
	return nil
}

func (a *app) close(cmd *cobra.Command, _ []string) error {
	var err error
	if a.m != nil {
		err = a.m.Close()
		a.m = nil
	}
	if a.c != nil {
		err = a.c.Close()
		a.c = nil
	}
	return err
}
