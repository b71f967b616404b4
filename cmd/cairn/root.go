package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	cairn "github.com/CaymanFreeman/Cairn"
	"github.com/CaymanFreeman/Cairn/internal/config"
	"github.com/CaymanFreeman/Cairn/internal/logging"
)

// cli is the state shared by every subcommand.
type cli struct {
	configPath string
	envFile    string
	logLevel   string

	// environ replaces the process environment in tests.
	environ map[string]string
	logOut  io.Writer

	cfg config.Config
	log *slog.Logger
}

func newRootCommand(logOut io.Writer, environ map[string]string) *cobra.Command {
	c := &cli{logOut: logOut, environ: environ}

	root := &cobra.Command{
		Use:           "cairn",
		Short:         "Run and inspect the cairn frame orchestrator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", ".env file with CAIRN_* variables")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log verbosity (debug, info, warn, error); overrides the config")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.setup()
	}

	root.AddCommand(
		newRunCommand(c),
		newAdaptersCommand(c),
		newBackendsCommand(),
		newVersionCommand(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(config.Sources{
		File:    c.configPath,
		EnvFile: c.envFile,
		Environ: c.environ,
	})
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	c.log = logging.NewLogger(c.logOut, logging.ParseLevel(level))
	cairn.SetLogger(c.log)
	c.log.Debug("config loaded", "file", c.configPath, "backend", cfg.Backend, "size", [2]uint32{cfg.Width, cfg.Height})
	return nil
}
