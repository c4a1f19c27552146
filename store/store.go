package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultPingTimeout = 5 * time.Second

// Config holds the persistence options needed to open a database
type Config interface {
	GetDriver() string
	GetDSN() string
	GetDebug() bool
	GetPingTimeout() time.Duration
}

// Options is a plain Config implementation used by the CLI and tests
type Options struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (o Options) GetDriver() string { return o.Driver }
func (o Options) GetDSN() string    { return o.DSN }
func (o Options) GetDebug() bool    { return o.Debug }

func (o Options) GetPingTimeout() time.Duration {
	if o.PingTimeout <= 0 {
		return defaultPingTimeout
	}
	return o.PingTimeout
}

// Open creates a bun database for the configured driver and checks
// that it is reachable.
func Open(ctx context.Context, cfg Config, logger Logger) (*bun.DB, error) {
	if logger == nil {
		logger = defLogger{}
	}

	var db *bun.DB
	switch driver := strings.ToLower(cfg.GetDriver()); driver {
	case DriverSQLite, "":
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite database")
		}
		// sqlite allows a single writer; one connection keeps
		// transactions from failing with SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "pg", "pgx":
		sqldb, err := sql.Open("pgx", cfg.GetDSN())
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported persistence driver %q", driver), goerrors.CategoryBadInput).
			WithTextCode("UNSUPPORTED_DRIVER")
	}

	if cfg.GetDebug() {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	timeout := cfg.GetPingTimeout()
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "database is not reachable")
	}

	logger.Debug("database opened", "dialect", db.Dialect().Name().String())

	return db, nil
}
