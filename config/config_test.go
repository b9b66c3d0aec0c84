package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "records.db", cfg.DBPath)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.NotNil(t, cfg.Location)
	assert.Zero(t, cfg.ReminderInterval)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	// GIVEN: Settings in the environment
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "env.db")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("OFFICE_TZ", "UTC")
	t.Setenv("REMINDER_INTERVAL", "30m")

	// WHEN: A flag sets the database too
	cfg, err := Load([]string{"-db", ":memory:"})

	// THEN: The flag wins, the rest come from the environment
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 30*time.Minute, cfg.ReminderInterval)
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("OFFICE_TZ", "Mars/Olympus")

	cfg, err := Load(nil)

	require.Error(t, err)
	assert.Equal(t, 8080, cfg.Port, "unparsable PORT falls back to the default")

	t.Setenv("OFFICE_TZ", "UTC")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
}
