package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
		check   func(t *testing.T, cfg *config.BaseConfig)
	}{
		{
			name: "file overrides defaults",
			path: func(t *testing.T) string {
				return writeConfig(t, `{"app":{"env":"test"},"ledger":{"borrow_limit":5}}`)
			},
			check: func(t *testing.T, cfg *config.BaseConfig) {
				assert.Equal(t, "test", cfg.GetApp().GetEnv())
				assert.Equal(t, 5, cfg.GetLedger().GetBorrowLimit())
				assert.Equal(t, "sqlite", cfg.GetPersistence().GetDriver())
			},
		},
		{
			name: "missing file keeps defaults",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.json")
			},
			check: func(t *testing.T, cfg *config.BaseConfig) {
				defaults := config.Defaults()
				assert.Equal(t, defaults.GetLedger().GetBorrowLimit(), cfg.GetLedger().GetBorrowLimit())
				assert.Equal(t, defaults.GetPersistence().GetDSN(), cfg.GetPersistence().GetDSN())
			},
		},
		{
			name: "malformed file",
			path: func(t *testing.T) string {
				return writeConfig(t, `{"app":`)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := config.NewContainer(tt.path(t), false)
			require.NoError(t, err)

			err = container.Load(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, container.Raw())
		})
	}
}

func TestNewContainer_Validates(t *testing.T) {
	path := writeConfig(t, `{"auth":{"signing_key":""}}`)

	container, err := config.NewContainer(path, true)
	require.NoError(t, err)

	err = container.Load(context.Background())
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
}
