package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type BankConfig struct {
	BaseCurrency    string  `mapstructure:"base_currency"`
	SettleDelayMs   int     `mapstructure:"settle_delay_ms"`
	CashbackRate    float64 `mapstructure:"cashback_rate"`
	RateJitter      bool    `mapstructure:"rate_jitter"`
	AlertDisplaySec int     `mapstructure:"alert_display_sec"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Bank     BankConfig     `mapstructure:"bank"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. MB_SERVER_PORT=9000
		v.SetEnvPrefix("MB") // mini bank
		v.AutomaticEnv()

		v.SetDefault("bank.base_currency", "QAR")
		v.SetDefault("bank.settle_delay_ms", 800)
		v.SetDefault("bank.cashback_rate", 0.01)
		v.SetDefault("bank.alert_display_sec", 10)

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
