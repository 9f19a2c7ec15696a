package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clientrepo/internal/app"
	"clientrepo/internal/config"
	"clientrepo/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand
type cli struct {
	configPath string
	backend    string
	logLevel   string
	output     string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "clientrepo",
		Short:         "Client record repository over JSON, YAML, PostgreSQL or SQLite",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search CLIENTREPO_CONFIG, ./clientrepo.yaml, XDG dirs)")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "override backend: json|yaml|postgres|sqlite")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log level: debug|info|warn|error")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "text", "output format: text|json")

	root.AddCommand(
		newServeCmd(c),
		newListCmd(c),
		newGetCmd(c),
		newAddCmd(c),
		newUpdateCmd(c),
		newDeleteCmd(c),
		newCountCmd(c),
		newSortCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, path, err = config.LoadFromPath(c.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}

	if c.backend != "" {
		cfg.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.output != "text" && c.output != "json" {
		return fmt.Errorf("unknown output format %q", c.output)
	}

	c.cfg = cfg
	c.logger = logging.New(logging.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, Service: "clientrepo"})
	if path != "" {
		c.logger.Debug("config loaded", zap.String("path", path))
	}
	return nil
}

// open builds the repository stack for one command
func (c *cli) open(ctx context.Context) (*app.Backend, error) {
	return app.Open(ctx, c.cfg, c.logger)
}
