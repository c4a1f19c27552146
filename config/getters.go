package config

import (
	"fmt"
	"time"
)

func (c *BaseConfig) GetApp() App                 { return c.App }
func (c *BaseConfig) GetAuth() Auth               { return c.Auth }
func (c *BaseConfig) GetPersistence() Persistence { return c.Persistence }
func (c *BaseConfig) GetServer() Server           { return c.Server }
func (c *BaseConfig) GetLedger() Ledger           { return c.Ledger }

func (a App) GetName() string { return a.Name }
func (a App) GetEnv() string  { return a.Env }

// IsDevelopment reports whether verbose startup output is allowed
func (a App) IsDevelopment() bool { return a.Env == "" || a.Env == "development" }

func (a Auth) GetSigningKey() string        { return a.SigningKey }
func (a Auth) GetSigningMethod() string     { return a.SigningMethod }
func (a Auth) GetIssuer() string            { return a.Issuer }
func (a Auth) GetAudience() []string        { return a.Audience }
func (a Auth) GetPasswordCost() int         { return a.PasswordCost }
func (a Auth) GetAccessTTL() time.Duration  { return mustDuration(a.AccessTTLExpression) }
func (a Auth) GetRefreshTTL() time.Duration { return mustDuration(a.RefreshTTLExpression) }

// Persistence satisfies store.Config
func (p Persistence) GetDriver() string             { return p.Driver }
func (p Persistence) GetDSN() string                { return p.DSN }
func (p Persistence) GetDebug() bool                { return p.Debug }
func (p Persistence) GetAutoMigrate() bool          { return p.AutoMigrate }
func (p Persistence) GetPingTimeout() time.Duration { return mustDuration(p.PingTimeoutExpression) }

func (s Server) GetAddress() string                { return s.Address }
func (s Server) GetBodyLimit() int                 { return s.BodyLimit }
func (s Server) GetReadTimeout() time.Duration     { return mustDuration(s.ReadTimeoutExpression) }
func (s Server) GetWriteTimeout() time.Duration    { return mustDuration(s.WriteTimeoutExpression) }
func (s Server) GetShutdownTimeout() time.Duration { return mustDuration(s.ShutdownTimeoutExpression) }

func (l Ledger) GetBorrowLimit() int { return l.BorrowLimit }

// mustDuration parses expressions that Validate already accepted
func mustDuration(expr string) time.Duration {
	dur, err := time.ParseDuration(expr)
	if err != nil {
		panic(fmt.Sprintf("unable to parse time: expr %s", expr))
	}
	return dur
}
