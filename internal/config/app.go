package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultAppConfigPath = "configs/scheduler.yaml"

// AppConfig — настройки процесса, не относящиеся к БД.
type AppConfig struct {
	GRPC struct {
		Address string `yaml:"address"`
	} `yaml:"grpc"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Booking struct {
		LockTTLSeconds int `yaml:"lock_ttl_seconds"`
	} `yaml:"booking"`

	Matching struct {
		DefaultPageSize int `yaml:"default_page_size"`
	} `yaml:"matching"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadAppConfig читает YAML по пути SCHEDULER_CONFIG_PATH.
// Файл необязателен: при его отсутствии используются значения по умолчанию.
func LoadAppConfig() (*AppConfig, error) {
	return LoadAppConfigFile(getEnv("SCHEDULER_CONFIG_PATH", defaultAppConfigPath))
}

func LoadAppConfigFile(path string) (*AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &cfg, nil
	case err != nil:
		return nil, err
	}

	// ${ENV_VAR} в YAML подставляются из окружения.
	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) GRPCAddress() string {
	if c.GRPC.Address == "" {
		return ":50051"
	}
	return c.GRPC.Address
}

func (c *AppConfig) PrometheusPort() int {
	if c.Monitoring.PrometheusPort <= 0 {
		return 9090
	}
	return c.Monitoring.PrometheusPort
}

// RedisEnabled — без адреса redis блокировки бронирования остаются в памяти процесса.
func (c *AppConfig) RedisEnabled() bool {
	return c.Redis.Address != ""
}

func (c *AppConfig) LockTTL() time.Duration {
	if c.Booking.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Booking.LockTTLSeconds) * time.Second
}

func (c *AppConfig) DefaultPageSize() int {
	if c.Matching.DefaultPageSize <= 0 {
		return 20
	}
	return c.Matching.DefaultPageSize
}

func (c *AppConfig) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}
