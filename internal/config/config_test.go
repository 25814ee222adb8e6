package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/portal")
	t.Setenv("ADMIN_IDS", "1, 2;3")
	t.Setenv("REPORT_ROW_LIMIT", "")
	t.Setenv("DB_TIMEOUT", "")
	t.Setenv("JOB_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminIDs)
	assert.Equal(t, 100, cfg.ReportRowLimit)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, "₹", cfg.CurrencySymbol)
	assert.True(t, cfg.IsAdminChat(2))
	assert.False(t, cfg.IsAdminChat(4))
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadAdminIDs(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("ADMIN_IDS", "12,abc")
	_, err := Load()
	require.Error(t, err)
}
