package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "scanhistory", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "scan_history.db", cfg.Database.Path)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "Scan History Reports", cfg.Report.Title)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/scans?sslmode=disable")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/scans?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Report.CacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_PATH=from-dotenv.db\nSERVER_PORT=4000\n"), 0o600))
	t.Setenv("SERVER_PORT", "5000")
	// godotenv sets variables process-wide; make sure the test leaves no trace.
	t.Cleanup(func() { _ = os.Unsetenv("DB_PATH") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, 5000, cfg.Server.Port, "real environment wins over .env")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"sampling rate above one", map[string]string{"LOG_SAMPLING_RATE": "1.5"}, "LOG_SAMPLING_RATE"},
		{"idle above open", map[string]string{"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "5"}, "DB_MAX_IDLE_CONNS"},
		{"production debug", map[string]string{"APP_ENV": "production", "APP_DEBUG": "true"}, "APP_DEBUG"},
		{"production redis without password", map[string]string{"APP_ENV": "production", "REDIS_ENABLED": "true"}, "redis password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "scan_history.db", BusyTimeout: 5 * time.Second},
			want: "file:scan_history.db?_pragma=busy_timeout%285000%29&_pragma=journal_mode%28WAL%29",
		},
		{
			name: "sqlite path with URI delimiters",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "/data/scan?v=1#2%.db", BusyTimeout: time.Second},
			want: "file:/data/scan%3Fv=1%232%25.db?_pragma=busy_timeout%281000%29&_pragma=journal_mode%28WAL%29",
		},
		{
			name: "postgres fields",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "scans", SSLMode: "require"},
			want: "host=db port=5432 user=u password=p dbname=scans sslmode=require",
		},
		{
			name: "postgres url",
			cfg:  DatabaseConfig{Driver: "postgres", URL: "postgres://db/scans", Host: "ignored"},
			want: "postgres://db/scans",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
