package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
database:
  host: localhost
  name: testdb
  user: testuser
sources:
  marketplaces:
    - name: comicmart
      base_url: https://api.comicmart.example/v1/search
`

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: minimalYAML,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "testdb", cfg.Database.Name)
				assert.Equal(t, "testuser", cfg.Database.User)
				require.Len(t, cfg.Sources.Marketplaces, 1)
				assert.Equal(t, "comicmart", cfg.Sources.Marketplaces[0].Name)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: minimalYAML,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, 5*time.Minute, cfg.Collection.CacheTTL)
				assert.Equal(t, 5, cfg.Collection.MaxConcurrent)
				assert.Equal(t, 3, cfg.Collection.RetryAttempts)
				assert.Equal(t, 500*time.Millisecond, cfg.Collection.RetryBaseDelay)
				assert.Equal(t, time.Hour, cfg.Triggers.CacheTTL)
				assert.Equal(t, 6*time.Hour, cfg.Scoring.Validity)
				assert.Equal(t, "0 */6 * * *", cfg.Schedule.Interval)
				assert.Equal(t, 5.0, cfg.Sources.Marketplaces[0].RateLimit.PerSecond)
				assert.Equal(t, 10, cfg.Sources.Marketplaces[0].RateLimit.Burst)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
  password: ${TEST_DB_PASSWORD}
sources:
  marketplaces:
    - name: comicmart
      base_url: https://api.comicmart.example/v1/search
      api_key: ${TEST_MARKET_KEY}
`,
			envVars: map[string]string{
				"TEST_DB_PASSWORD": "s3cret",
				"TEST_MARKET_KEY":  "key-123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "s3cret", cfg.Database.Password)
				assert.Equal(t, "key-123", cfg.Sources.Marketplaces[0].APIKey)
			},
		},
		{
			name: "missing database host",
			yaml: `
database:
  name: testdb
  user: testuser
sources:
  marketplaces:
    - name: comicmart
      base_url: https://api.comicmart.example/v1/search
`,
			wantErr: "database.host is required",
		},
		{
			name: "no marketplaces configured",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
`,
			wantErr: "sources.marketplaces must list at least one adapter",
		},
		{
			name: "duplicate marketplace names",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
sources:
  marketplaces:
    - name: comicmart
      base_url: https://a.example/v1
    - name: comicmart
      base_url: https://b.example/v1
`,
			wantErr: `name "comicmart" is duplicated`,
		},
		{
			name: "trigger feeds parsed",
			yaml: minimalYAML + `
triggers:
  feeds:
    - category: entertainment
      base_url: https://feeds.example/entertainment
    - category: news
      base_url: https://feeds.example/news
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.Len(t, cfg.Triggers.Feeds, 2)
				assert.Equal(t, "entertainment", cfg.Triggers.Feeds[0].Category)
				assert.Equal(t, "https://feeds.example/news", cfg.Triggers.Feeds[1].BaseURL)
			},
		},
		{
			name: "invalid trigger feed category",
			yaml: minimalYAML + `
triggers:
  feeds:
    - category: weather
      base_url: https://feeds.example/weather
`,
			wantErr: "triggers.feeds[0].category must be one of",
		},
		{
			name: "duplicate trigger feed category",
			yaml: minimalYAML + `
triggers:
  feeds:
    - category: news
      base_url: https://a.example/news
    - category: news
      base_url: https://b.example/news
`,
			wantErr: `category "news" is duplicated`,
		},
		{
			name: "discord enabled without webhook",
			yaml: minimalYAML + `
notifications:
  discord:
    enabled: true
`,
			wantErr: "notifications.discord.webhook_url is required",
		},
		{
			name: "invalid logging level",
			yaml: minimalYAML + `
logging:
  level: verbose
`,
			wantErr: "logging.level must be one of",
		},
		{
			name: "malformed yaml",
			yaml: `
database: [not a map
`,
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	d := DatabaseConfig{
		Host: "db.internal", Port: 5433, Name: "advisor",
		User: "svc", Password: "pw", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 dbname=advisor user=svc password=pw sslmode=require",
		d.DSN(),
	)
}
