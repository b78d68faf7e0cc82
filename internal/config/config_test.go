package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_ACCESS_SECRET":  "access-secret",
		"JWT_REFRESH_SECRET": "refresh-secret",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.IsDevelopment(), "error internals must stay hidden unless development is opted into")
}

func TestLoadWith_DevelopmentIsOptIn(t *testing.T) {
	for env, want := range map[string]bool{
		"development": true,
		"DEVELOPMENT": true,
		"staging":     false,
		"dev":         false,
	} {
		vars := baseEnv()
		vars["APP_ENV"] = env

		cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(vars))
		require.NoError(t, err)
		assert.Equal(t, want, cfg.IsDevelopment(), env)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	env := baseEnv()
	env["APP_ENV"] = "production"
	env["DB_DRIVER"] = "postgres"
	env["DATABASE_URL"] = "postgres://localhost/workforce"
	env["JWT_ACCESS_TTL"] = "5m"
	env["CORS_ALLOWED_ORIGINS"] = "https://app.example.com"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing secrets",
			env:  map[string]string{},
			want: "JWT_ACCESS_SECRET is required",
		},
		{
			name: "identical secrets",
			env:  map[string]string{"JWT_ACCESS_SECRET": "same", "JWT_REFRESH_SECRET": "same"},
			want: "must differ",
		},
		{
			name: "unknown driver",
			env: map[string]string{
				"JWT_ACCESS_SECRET":  "a",
				"JWT_REFRESH_SECRET": "b",
				"DB_DRIVER":          "oracle",
			},
			want: "unsupported DB_DRIVER",
		},
		{
			name: "weak bcrypt cost",
			env: map[string]string{
				"JWT_ACCESS_SECRET":  "a",
				"JWT_REFRESH_SECRET": "b",
				"BCRYPT_COST":        "4",
			},
			want: "BCRYPT_COST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
