package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string
	HTTPAddr        string
	SyncDebounce    time.Duration
	PollSchedule    string
	EditLead        time.Duration
	Debug           bool
}

var instance *Config
var once sync.Once

// GetConfig читает .env и окружение один раз за процесс
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logrus.Fatalf("error loading env variables: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatal(err)
		}
		instance = cfg
	})

	return instance
}

// Load собирает конфиг из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		DatabaseURL:     getEnv("DATABASE_URL", "availability.db"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		SyncDebounce:    getEnvAsDuration("SYNC_DEBOUNCE", 300*time.Millisecond),
		PollSchedule:    getEnv("POLL_SCHEDULE", "@every 1m"),
		EditLead:        getEnvAsDuration("EDIT_LEAD", 24*time.Hour),
		Debug:           getEnvAsBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("could not get db url")
	}
	if cfg.TelegramToken != "" && cfg.BaseAdminChatID == 0 {
		return nil, fmt.Errorf("could not get admin chat id")
	}
	if cfg.EditLead < 0 {
		return nil, fmt.Errorf("EDIT_LEAD must not be negative")
	}

	return cfg, nil
}

// BotEnabled - без токена бот не запускается, работает только HTTP API
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}

	return defaultVal
}
