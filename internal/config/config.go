package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// QRConfig drives the scan URL base resolution. Precedence:
// tunnel_url > base_url > detected LAN address > localhost.
type QRConfig struct {
	TunnelURL string `mapstructure:"tunnel_url"`
	BaseURL   string `mapstructure:"base_url"`
}

type AttendanceConfig struct {
	// StrictToken requires the scanned token to match the one issued
	// for (user, today). The legacy behavior only checked the date.
	StrictToken bool `mapstructure:"strict_token"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Security   SecurityConfig   `mapstructure:"security"`
	QR         QRConfig         `mapstructure:"qr"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
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

		// environment overrides, e.g. QA_SERVER_PORT=9000
		v.SetEnvPrefix("QA") // qr absensi
		v.AutomaticEnv()

		v.SetDefault("server.port", 5000)
		v.SetDefault("server.timezone", "Asia/Jakarta")
		v.SetDefault("attendance.strict_token", true)

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
