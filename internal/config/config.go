package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config — всё окружение бота, читается один раз при старте.
type Config struct {
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Стафф-группа (супергруппа с топиками), куда уходят заявки.
	StaffChatID int64 `env:"STAFF_CHAT_ID,required"`

	// Кураторы: им разрешены /dm, /block, /unblock и ответы кандидатам.
	OperatorIDs []int64 `env:"OPERATOR_IDS" envSeparator:","`

	// Топики по ролям: "editor:12,typer:13". Роль без топика — в общий канал.
	RoleTopics map[string]int `env:"ROLE_TOPICS"`

	TestWindowDays int `env:"TEST_WINDOW_DAYS" envDefault:"7"`
}

// Load reads .env (if present) and parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Operators returns the allow-list as a set.
func (c *Config) Operators() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.OperatorIDs))
	for _, id := range c.OperatorIDs {
		set[id] = struct{}{}
	}
	return set
}
