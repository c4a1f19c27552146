package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/auth"
	"github.com/goliatone/go-lending/config"
	"github.com/goliatone/go-lending/httpapi"
	"github.com/goliatone/go-lending/ledger"
	"github.com/goliatone/go-lending/store"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	auth   *auth.Service
	resolv *auth.Authenticator
	ledger *ledger.Ledger
	srv    *httpapi.Server
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("lendingd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.NewContainer(config.DefaultPath, false)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}
	lgr.GetLogger("config").Debug("config loaded", "path", config.DefaultPath)

	if err := cfg.Raw().Validate(); err != nil {
		fmt.Println(print.MaybePrettyJSON(err))
		os.Exit(1)
	}

	if cfg.Raw().GetApp().IsDevelopment() {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(cfg.Raw().Masked()))
		fmt.Println("============")
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}
	defer app.bunDB.Close()

	if err := WithAuth(app); err != nil {
		panic(err)
	}

	WithLedger(app)

	if err := WithHTTPServer(app); err != nil {
		panic(err)
	}

	log := app.GetLogger("app")
	addr := app.Config().GetServer().GetAddress()

	go func() {
		log.Info("http server listening", "addr", addr)
		if err := app.srv.Listen(addr); err != nil {
			log.Error("http server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	log.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, app.Config().GetServer().GetShutdownTimeout())
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.Config().GetPersistence()

	db, err := store.Open(ctx, cfg, app.GetLogger("store"))
	if err != nil {
		return err
	}

	if cfg.GetAutoMigrate() {
		if err := store.Migrate(ctx, db, app.GetLogger("migrations")); err != nil {
			db.Close()
			return err
		}
	}

	app.bunDB = db
	return nil
}

func WithAuth(app *App) error {
	cfg := app.Config().GetAuth()

	auth.SetPasswordCost(cfg.GetPasswordCost())

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SigningKey:    []byte(cfg.GetSigningKey()),
		SigningMethod: cfg.GetSigningMethod(),
		AccessTTL:     cfg.GetAccessTTL(),
		RefreshTTL:    cfg.GetRefreshTTL(),
		Issuer:        cfg.GetIssuer(),
		Audience:      cfg.GetAudience(),
	}, auth.SystemClock, app.GetLogger("tokens"))
	if err != nil {
		return err
	}

	repo := auth.NewRepositoryManager(app.bunDB, auth.SystemClock, app.GetLogger("sessions"))
	if err := repo.Validate(); err != nil {
		return err
	}

	app.auth = auth.NewService(repo, tokens).WithLogger(app.GetLogger("auth"))
	app.resolv = auth.NewAuthenticator(repo, tokens).WithLogger(app.GetLogger("auth"))
	return nil
}

func WithLedger(app *App) {
	app.ledger = ledger.New(app.bunDB,
		ledger.WithLogger(app.GetLogger("ledger")),
		ledger.WithBorrowLimit(app.Config().GetLedger().GetBorrowLimit()),
	)
}

func WithHTTPServer(app *App) error {
	cfg := app.Config().GetServer()

	srv, err := httpapi.New(httpapi.Config{
		AppName:      app.Config().GetApp().GetName(),
		BodyLimit:    cfg.GetBodyLimit(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		Auth:         app.auth,
		Resolver:     app.resolv,
		Lending:      app.ledger,
		Books:        app.ledger.Books(),
		Readers:      app.ledger.Readers(),
		Logger:       app.GetLogger("http"),
	})
	if err != nil {
		return err
	}

	app.srv = srv
	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
