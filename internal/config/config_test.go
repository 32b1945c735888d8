package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("STAFF_CHAT_ID", "-1001234567890")
	t.Setenv("OPERATOR_IDS", "111,222")
	t.Setenv("ROLE_TOPICS", "editor:12,typer:13")
	t.Setenv("TEST_WINDOW_DAYS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(-1001234567890), cfg.StaffChatID)
	assert.Equal(t, []int64{111, 222}, cfg.OperatorIDs)
	assert.Equal(t, map[string]int{"editor": 12, "typer": 13}, cfg.RoleTopics)
	assert.Equal(t, 5, cfg.TestWindowDays)

	ops := cfg.Operators()
	assert.Contains(t, ops, int64(111))
	assert.Contains(t, ops, int64(222))
	assert.NotContains(t, ops, int64(333))
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("STAFF_CHAT_ID", "-100")

	_, err := Load()
	require.Error(t, err)
}
