package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/infaq/internal/database"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, database.DriverPostgres, cfg.Driver())
	assert.Equal(t, 5*time.Second, cfg.DB.Timeout)
	assert.Equal(t, "system", cfg.Auth.DefaultActorID)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10, cfg.Ledger.RecentDefault)
	assert.Equal(t, 100, cfg.Ledger.RecentMax)
	assert.Equal(t, "postgres://postgres:@localhost:5432/infaq?sslmode=disable", cfg.ConnectionString())
}

func TestLoad(t *testing.T) {
	type testCase struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}

	tests := []testCase{
		{
			name: "sqlite dsn",
			env:  map[string]string{"DB_DRIVER": "sqlite", "DB_PATH": "/tmp/x.db"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, database.DriverSQLite, cfg.Driver())
				assert.Contains(t, cfg.ConnectionString(), "file:/tmp/x.db?")
				assert.Contains(t, cfg.ConnectionString(), "foreign_keys(1)")
			},
		},
		{
			name: "password is escaped",
			env:  map[string]string{"DB_PASSWORD": "p@ss/word"},
			check: func(t *testing.T, cfg *Config) {
				assert.Contains(t, cfg.ConnectionString(), "postgres:p%40ss%2Fword@")
			},
		},
		{
			name: "origin list",
			env:  map[string]string{"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
			},
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DB_DRIVER": "mysql"},
			wantErr: "unsupported DB_DRIVER",
		},
		{
			name:    "non-positive recent max",
			env:     map[string]string{"LEDGER_RECENT_MAX": "0"},
			wantErr: "LEDGER_RECENT_MAX must be positive",
		},
		{
			name:    "malformed duration",
			env:     map[string]string{"DB_TIMEOUT": "soon"},
			wantErr: "failed to process config",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)

				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
