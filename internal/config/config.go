package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Lists    ListsConfig    `mapstructure:"lists"`
	Welcome  WelcomeConfig  `mapstructure:"welcome"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	AdminIDs       []int64       `mapstructure:"admin_ids"`
	PollingTimeout int           `mapstructure:"polling_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
	EventLogPath string `mapstructure:"event_log_path"`
	PolicyPath   string `mapstructure:"policy_path"`
}

type ListsConfig struct {
	WordsPath       string `mapstructure:"words_path"`
	AudioTitlesPath string `mapstructure:"audio_titles_path"`
	FileNamesPath   string `mapstructure:"file_names_path"`
}

type WelcomeConfig struct {
	ConfigPath string `mapstructure:"config_path"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONFormat bool   `mapstructure:"json_format"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("telegram.polling_timeout", 60)
	v.SetDefault("telegram.request_timeout", "1m")
	v.SetDefault("storage.registry_path", "data/groups.db")
	v.SetDefault("storage.event_log_path", "data/logs.db")
	v.SetDefault("storage.policy_path", "data/policies.db")
	v.SetDefault("lists.words_path", "taqiq.xlsx")
	v.SetDefault("lists.audio_titles_path", "taqiq_audio.xlsx")
	v.SetDefault("lists.file_names_path", "all.xlsx")
	v.SetDefault("welcome.config_path", "data/welcome.json")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json_format", false)

	// Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/guard-tg-bot")

	// Environment variables
	v.SetEnvPrefix("GUARD_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found is OK, use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if len(c.Telegram.AdminIDs) == 0 {
		return fmt.Errorf("telegram.admin_ids must contain at least one user ID")
	}
	if c.Lists.WordsPath == "" || c.Lists.AudioTitlesPath == "" || c.Lists.FileNamesPath == "" {
		return fmt.Errorf("all three banned list paths are required")
	}
	if c.Welcome.ConfigPath == "" {
		return fmt.Errorf("welcome.config_path is required")
	}
	return nil
}
