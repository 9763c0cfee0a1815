package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "data/dailyproof.db", cfg.Storage.SQLitePath)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 60*time.Second, cfg.Discord.ReplyWindow)
	assert.Equal(t, 21, cfg.Scheduler.ReminderHour)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_PostgresInferredFromURL(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/proof?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestLoad_PostgresDriverWithoutURL(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_AdminLists(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")
	t.Setenv("DISCORD_ADMIN_IDS", "111, 222 ,333")
	t.Setenv("DISCORD_ADMIN_ROLE_IDS", "mod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, cfg.Discord.AdminUserIDs)
	assert.Equal(t, []string{"mod"}, cfg.Discord.AdminRoleIDs)
}

func TestLoad_InvalidScheduleRejected(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")
	t.Setenv("SCHEDULER_REMINDER_HOUR", "25")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_REMINDER_HOUR")
}

func TestLoad_UnknownDriverRejected(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "tok")
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}
