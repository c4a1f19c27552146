package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-lending/auth"
)

const (
	DefaultContextKey  = "user"
	DefaultTokenLookup = "header:Authorization"
	DefaultAuthScheme  = "Bearer"
)

// GuardConfig configures the access token guard
type GuardConfig struct {
	Resolver Resolver
	Logger   Logger
	// Filter skips the guard when it returns true
	Filter func(*fiber.Ctx) bool
	// ContextKey is the fiber locals key holding the *auth.User
	ContextKey string
	// TokenLookup is a comma separated list of source:name pairs,
	// e.g. "header:Authorization,cookie:access_token"
	TokenLookup string
	AuthScheme  string
}

func (cfg GuardConfig) withDefaults() GuardConfig {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = DefaultTokenLookup
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = DefaultAuthScheme
	}
	return cfg
}

// Guard rejects requests without a valid access token. On success the
// resolved user is stored in the fiber locals and in the user context.
func Guard(config GuardConfig) fiber.Handler {
	cfg := config.withDefaults()
	if cfg.Resolver == nil {
		panic("httpapi: guard requires a Resolver")
	}

	extractors := tokenExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		token := extractToken(c, extractors)
		if token == "" {
			cfg.Logger.Debug("missing access token", "path", c.Path())
			return auth.ErrUnauthenticated
		}

		user, err := cfg.Resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(cfg.ContextKey, user)
		c.SetUserContext(auth.WithContext(c.UserContext(), user))

		return c.Next()
	}
}

// CurrentUser returns the user the guard resolved for this request
func CurrentUser(c *fiber.Ctx) (*auth.User, bool) {
	if user, ok := auth.FromContext(c.UserContext()); ok {
		return user, true
	}
	user, ok := c.Locals(DefaultContextKey).(*auth.User)
	return user, ok && user != nil
}

type tokenExtractor func(c *fiber.Ctx) string

func extractToken(c *fiber.Ctx, extractors []tokenExtractor) string {
	for _, extract := range extractors {
		if token := extract(c); token != "" {
			return token
		}
	}
	return ""
}

func tokenExtractors(tokenLookup, authScheme string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	for _, part := range strings.Split(tokenLookup, ",") {
		source, name, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}

		name = strings.TrimSpace(name)
		switch strings.TrimSpace(source) {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, func(c *fiber.Ctx) string {
				return c.Query(name)
			})
		case "cookie":
			extractors = append(extractors, func(c *fiber.Ctx) string {
				return c.Cookies(name)
			})
		}
	}

	return extractors
}

func tokenFromHeader(header, authScheme string) tokenExtractor {
	authScheme = strings.TrimSpace(authScheme)
	l := len(authScheme)

	return func(c *fiber.Ctx) string {
		value := c.Get(header)
		if len(value) > l+1 && strings.EqualFold(value[:l], authScheme) && value[l] == ' ' {
			return strings.TrimSpace(value[l+1:])
		}
		return ""
	}
}
