package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "@hourly", cfg.Scheduler.OverdueSpec)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
}

func TestLoad_VariablesDeEntornoTienenPrioridad(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("OCR_LANGUAGES", "eng, spa")
	t.Setenv("PUBLIC_URL", "https://app.facturo.test/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, []string{"eng", "spa"}, cfg.OCR.Languages)
	assert.Equal(t, "https://app.facturo.test", cfg.App.PublicURL)
}

func TestLoad_ProductionExigeSecretJWT(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "facturo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/facturo?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
