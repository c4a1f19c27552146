package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	goerrors "github.com/goliatone/go-errors"
	jsoniter "github.com/json-iterator/go"
)

const requestIDKey = "requestid"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config wires the services behind the HTTP surface
type Config struct {
	AppName      string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Auth     AuthService
	Resolver Resolver
	Lending  Lending
	Books    BookCatalog
	Readers  ReaderDirectory
	Logger   Logger
}

func (c Config) Validate() error {
	checks := []struct {
		name    string
		missing bool
	}{
		{"auth", c.Auth == nil},
		{"resolver", c.Resolver == nil},
		{"lending", c.Lending == nil},
		{"books", c.Books == nil},
		{"readers", c.Readers == nil},
	}

	for _, check := range checks {
		if check.missing {
			return goerrors.New("http server requires the "+check.name+" service", goerrors.CategoryInternal).
				WithTextCode("SERVER_MISCONFIGURED")
		}
	}
	return nil
}

// Server is the fiber application serving the API
type Server struct {
	app     *fiber.App
	cfg     Config
	guard   fiber.Handler
	logger  Logger
	started time.Time
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.AppName == "" {
		cfg.AppName = "go-lending"
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))

	s := &Server{
		app:     app,
		cfg:     cfg,
		logger:  cfg.Logger,
		started: time.Now(),
		guard: Guard(GuardConfig{
			Resolver: cfg.Resolver,
			Logger:   cfg.Logger,
		}),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/health", s.health)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", s.register)
	authRoutes.Post("/login", s.login)
	authRoutes.Post("/refresh", s.refresh)
	authRoutes.Post("/logout", s.guard, s.logout)

	api.Get("/me", s.guard, s.me)

	api.Get("/books", s.guard, s.listBooks)
	api.Post("/books", s.guard, s.createBook)
	api.Post("/books/borrow", s.guard, s.borrow)
	api.Post("/books/return", s.guard, s.giveBack)
	api.Get("/books/:id", s.guard, s.getBook)
	api.Put("/books/:id", s.guard, s.updateBook)
	api.Delete("/books/:id", s.guard, s.deleteBook)

	api.Get("/readers", s.guard, s.listReaders)
	api.Post("/readers", s.guard, s.createReader)
	api.Get("/readers/:id", s.guard, s.getReader)
	api.Put("/readers/:id", s.guard, s.updateReader)
	api.Delete("/readers/:id", s.guard, s.deleteReader)
	api.Get("/readers/:id/borrowed", s.guard, s.borrowed)
}

// App exposes the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in flight
// requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.app.ShutdownWithContext(ctx)
}
