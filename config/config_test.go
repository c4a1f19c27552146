package config_test

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/config"
	"github.com/goliatone/go-lending/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.Config = config.Persistence{}

func validConfig() *config.BaseConfig {
	cfg := config.Defaults()
	cfg.Auth.SigningKey = "0123456789abcdef0123456789abcdef"
	return cfg
}

func TestDefaults_NeedSigningKey(t *testing.T) {
	err := config.Defaults().Validate()
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	require.Len(t, richErr.ValidationErrors, 1)
	assert.Equal(t, "auth.signing_key", richErr.ValidationErrors[0].Field)

	assert.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.BaseConfig)
		field  string
	}{
		{name: "short key", mutate: func(cfg *config.BaseConfig) { cfg.Auth.SigningKey = "short" }, field: "auth.signing_key"},
		{name: "rsa method", mutate: func(cfg *config.BaseConfig) { cfg.Auth.SigningMethod = "RS256" }, field: "auth.signing_method"},
		{name: "bad ttl", mutate: func(cfg *config.BaseConfig) { cfg.Auth.AccessTTLExpression = "soon" }, field: "auth.access_ttl"},
		{name: "negative ttl", mutate: func(cfg *config.BaseConfig) { cfg.Auth.RefreshTTLExpression = "-1h" }, field: "auth.refresh_ttl"},
		{name: "empty dsn", mutate: func(cfg *config.BaseConfig) { cfg.Persistence.DSN = "" }, field: "persistence.dsn"},
		{name: "negative limit", mutate: func(cfg *config.BaseConfig) { cfg.Ledger.BorrowLimit = -1 }, field: "ledger.borrow_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			require.Len(t, richErr.ValidationErrors, 1)
			assert.Equal(t, tt.field, richErr.ValidationErrors[0].Field)
		})
	}
}

func TestGetters(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 30*time.Minute, cfg.GetAuth().GetAccessTTL())
	assert.Equal(t, 720*time.Hour, cfg.GetAuth().GetRefreshTTL())
	assert.Equal(t, 5*time.Second, cfg.GetPersistence().GetPingTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetServer().GetShutdownTimeout())
	assert.Equal(t, "sqlite", cfg.GetPersistence().GetDriver())
	assert.Equal(t, 3, cfg.GetLedger().GetBorrowLimit())
}

func TestMasked(t *testing.T) {
	cfg := validConfig()
	cfg.Persistence.DSN = "postgres://lending:s3cret@db:5432/lending?sslmode=disable"

	masked := cfg.Masked()
	assert.Equal(t, "********", masked.Auth.SigningKey)
	assert.Equal(t, "postgres://lending:********@db:5432/lending?sslmode=disable", masked.Persistence.DSN)

	// receiver is a copy
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Auth.SigningKey)
}
