// Package config holds the typed configuration of the lending service.
// Values are loaded by go-config on top of the defaults returned by
// Defaults.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type BaseConfig struct {
	App         App         `koanf:"app" json:"app"`
	Auth        Auth        `koanf:"auth" json:"auth"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
	Server      Server      `koanf:"server" json:"server"`
	Ledger      Ledger      `koanf:"ledger" json:"ledger"`
}

type App struct {
	Name string `koanf:"name" json:"name"`
	Env  string `koanf:"env" json:"env"`
}

type Auth struct {
	SigningKey           string   `koanf:"signing_key" json:"signing_key"`
	SigningMethod        string   `koanf:"signing_method" json:"signing_method"`
	AccessTTLExpression  string   `koanf:"access_ttl" json:"access_ttl"`
	RefreshTTLExpression string   `koanf:"refresh_ttl" json:"refresh_ttl"`
	Issuer               string   `koanf:"issuer" json:"issuer"`
	Audience             []string `koanf:"audience" json:"audience"`
	PasswordCost         int      `koanf:"password_cost" json:"password_cost"`
}

type Persistence struct {
	Driver                string `koanf:"driver" json:"driver"`
	DSN                   string `koanf:"dsn" json:"dsn"`
	Debug                 bool   `koanf:"debug" json:"debug"`
	PingTimeoutExpression string `koanf:"ping_timeout" json:"ping_timeout"`
	AutoMigrate           bool   `koanf:"auto_migrate" json:"auto_migrate"`
}

type Server struct {
	Address                   string `koanf:"address" json:"address"`
	BodyLimit                 int    `koanf:"body_limit" json:"body_limit"`
	ReadTimeoutExpression     string `koanf:"read_timeout" json:"read_timeout"`
	WriteTimeoutExpression    string `koanf:"write_timeout" json:"write_timeout"`
	ShutdownTimeoutExpression string `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

type Ledger struct {
	BorrowLimit int `koanf:"borrow_limit" json:"borrow_limit"`
}

// Defaults returns a configuration that runs locally against sqlite.
// The signing key is left empty on purpose and must be provided.
func Defaults() *BaseConfig {
	return &BaseConfig{
		App: App{
			Name: "go-lending",
			Env:  "development",
		},
		Auth: Auth{
			SigningMethod:        "HS256",
			AccessTTLExpression:  "30m",
			RefreshTTLExpression: "720h",
			Issuer:               "go-lending",
			PasswordCost:         12,
		},
		Persistence: Persistence{
			Driver:                "sqlite",
			DSN:                   "file:lending.db?cache=shared&_pragma=busy_timeout(5000)",
			PingTimeoutExpression: "5s",
			AutoMigrate:           true,
		},
		Server: Server{
			Address:                   ":8080",
			BodyLimit:                 1 << 20,
			ReadTimeoutExpression:     "10s",
			WriteTimeoutExpression:    "10s",
			ShutdownTimeoutExpression: "15s",
		},
		Ledger: Ledger{
			BorrowLimit: 3,
		},
	}
}

// Validate reports every invalid setting at once
func (c BaseConfig) Validate() error {
	problems := map[string]string{}

	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		problems["auth.signing_key"] = "must not be empty"
	} else if len(c.Auth.SigningKey) < 32 {
		problems["auth.signing_key"] = "must be at least 32 bytes"
	}

	if !strings.HasPrefix(strings.ToUpper(c.Auth.SigningMethod), "HS") {
		problems["auth.signing_method"] = "only HMAC methods are supported"
	}

	checkDuration(problems, "auth.access_ttl", c.Auth.AccessTTLExpression)
	checkDuration(problems, "auth.refresh_ttl", c.Auth.RefreshTTLExpression)
	checkDuration(problems, "persistence.ping_timeout", c.Persistence.PingTimeoutExpression)
	checkDuration(problems, "server.read_timeout", c.Server.ReadTimeoutExpression)
	checkDuration(problems, "server.write_timeout", c.Server.WriteTimeoutExpression)
	checkDuration(problems, "server.shutdown_timeout", c.Server.ShutdownTimeoutExpression)

	if c.Persistence.DSN == "" {
		problems["persistence.dsn"] = "must not be empty"
	}

	if c.Ledger.BorrowLimit < 0 {
		problems["ledger.borrow_limit"] = "must not be negative"
	}

	if len(problems) == 0 {
		return nil
	}

	names := make([]string, 0, len(problems))
	for field := range problems {
		names = append(names, field)
	}
	sort.Strings(names)

	fields := make([]goerrors.FieldError, 0, len(problems))
	for _, field := range names {
		fields = append(fields, goerrors.FieldError{Field: field, Message: problems[field]})
	}

	err := goerrors.New("invalid configuration", goerrors.CategoryValidation).
		WithTextCode("INVALID_CONFIG")
	err.ValidationErrors = fields
	return err
}

func checkDuration(problems map[string]string, field, expr string) {
	dur, err := time.ParseDuration(expr)
	if err != nil {
		problems[field] = fmt.Sprintf("invalid duration %q", expr)
		return
	}
	if dur <= 0 {
		problems[field] = "must be positive"
	}
}

// Masked returns a copy that is safe to print
func (c BaseConfig) Masked() BaseConfig {
	if c.Auth.SigningKey != "" {
		c.Auth.SigningKey = "********"
	}
	c.Persistence.DSN = maskDSN(c.Persistence.DSN)
	return c
}

func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}

	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}

	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return dsn
	}

	return scheme + "://" + user + ":********@" + host
}
