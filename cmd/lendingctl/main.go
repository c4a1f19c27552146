package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/config"
	"github.com/goliatone/go-lending/store"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

type cli struct {
	configPath string
	driver     string
	dsn        string
	debug      bool

	cfg    *config.BaseConfig
	logger *glog.BaseLogger
}

func main() {
	c := &cli{}
	if err := c.root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, print.MaybePrettyJSON(err))
		os.Exit(1)
	}
}

func (c *cli) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lendingctl",
		Short:         "Administrative tasks for the lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath, "path to the JSON config file")
	cmd.PersistentFlags().StringVar(&c.driver, "driver", "", "database driver, sqlite or postgres (overrides config)")
	cmd.PersistentFlags().StringVar(&c.dsn, "dsn", "", "database DSN (overrides config)")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "log SQL queries")

	cmd.AddCommand(
		c.migrateCmd(),
		c.userCmd(),
		c.bookCmd(),
		c.readerCmd(),
		c.sessionsCmd(),
	)

	return cmd
}

func (c *cli) load(ctx context.Context) error {
	c.logger = glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("lendingctl"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	container, err := config.NewContainer(c.configPath, false)
	if err != nil {
		return err
	}

	if err := container.Load(ctx); err != nil {
		return err
	}
	c.logger.GetLogger("config").Debug("config loaded", "path", c.configPath)

	c.cfg = container.Raw()
	if c.driver != "" {
		c.cfg.Persistence.Driver = c.driver
	}
	if c.dsn != "" {
		c.cfg.Persistence.DSN = c.dsn
	}
	if c.debug {
		c.cfg.Persistence.Debug = true
	}
	return nil
}

func (c *cli) open(ctx context.Context) (*bun.DB, error) {
	return store.Open(ctx, c.cfg.GetPersistence(), c.logger.GetLogger("store"))
}
