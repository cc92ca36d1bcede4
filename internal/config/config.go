package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "HELPS_RESOLVER_CONFIG"
	serverEnv         = "DOOR43_SERVER"
	ownerEnv          = "DOOR43_OWNER"
	branchEnv         = "DOOR43_BRANCH"
	tokenEnv          = "DOOR43_TOKEN"
	languageEnv       = "HELPS_LANGUAGE_ID"
	timeoutEnv        = "HELPS_REQUEST_TIMEOUT"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Door43        Door43Config       `yaml:"door43"`
	Resolver      ResolverConfig     `yaml:"resolver"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// Door43Config locates the content server repositories.
type Door43Config struct {
	Server string `yaml:"server"`
	Owner  string `yaml:"owner"`
	Branch string `yaml:"branch"`
	Token  string `yaml:"token"`
}

// ResolverConfig is the fixed per-consumer link context.
type ResolverConfig struct {
	LanguageID         string        `yaml:"languageId"`
	TAArticleProjectID string        `yaml:"taArticle"`
	DocumentBase       string        `yaml:"documentBase"`
	Timeout            time.Duration `yaml:"timeout"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables
// the error journal.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverEnv); v != "" {
		c.Door43.Server = v
	}
	if v := os.Getenv(ownerEnv); v != "" {
		c.Door43.Owner = v
	}
	if v := os.Getenv(branchEnv); v != "" {
		c.Door43.Branch = v
	}
	if v := os.Getenv(tokenEnv); v != "" {
		c.Door43.Token = v
	}

	if v := os.Getenv(languageEnv); v != "" {
		c.Resolver.LanguageID = v
	}
	if v := os.Getenv(timeoutEnv); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout < 0 {
			log.Printf("config: invalid %s=%q, keeping %s", timeoutEnv, v, c.Resolver.Timeout)
		} else {
			c.Resolver.Timeout = timeout
		}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Door43.Server != "" {
		base.Door43.Server = override.Door43.Server
	}
	if override.Door43.Owner != "" {
		base.Door43.Owner = override.Door43.Owner
	}
	if override.Door43.Branch != "" {
		base.Door43.Branch = override.Door43.Branch
	}
	if override.Door43.Token != "" {
		base.Door43.Token = override.Door43.Token
	}

	if override.Resolver.LanguageID != "" {
		base.Resolver.LanguageID = override.Resolver.LanguageID
	}
	if override.Resolver.TAArticleProjectID != "" {
		base.Resolver.TAArticleProjectID = override.Resolver.TAArticleProjectID
	}
	if override.Resolver.DocumentBase != "" {
		base.Resolver.DocumentBase = override.Resolver.DocumentBase
	}
	if override.Resolver.Timeout > 0 {
		base.Resolver.Timeout = override.Resolver.Timeout
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Door43: Door43Config{
			Server: "https://git.door43.org",
			Owner:  "unfoldingWord",
			Branch: "master",
		},
		Resolver: ResolverConfig{LanguageID: "en"},
		Logging:  LoggingConfig{Level: "info"},
	}
}
