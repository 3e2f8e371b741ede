package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Tomlord1122/todo-form/internal/domain"
)

var ErrInvalid = errors.New("invalid config")

type HTTPConfig struct {
	Port            int           `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"1m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"https://*,http://*"`
}

type FormConfig struct {
	AgeMin   int      `yaml:"age_min" env:"AGE_MIN" env-default:"18"`
	AgeMax   int      `yaml:"age_max" env:"AGE_MAX" env-default:"100"`
	Hobbies  []string `yaml:"hobbies" env:"HOBBY_OPTIONS" env-default:"reading,music,sports,travelling"`
	Statuses []string `yaml:"statuses" env:"STATUS_OPTIONS" env-default:"Pending,In Progress,Done"`
}

type Config struct {
	LogLevel       string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	DatastarScript string     `yaml:"datastar_script" env:"DATASTAR_SCRIPT" env-default:"https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"`
	HTTP           HTTPConfig `yaml:"http"`
	Form           FormConfig `yaml:"form"`
}

// Load reads configPath when it exists, otherwise the environment only.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%s", err)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Form.AgeMin > c.Form.AgeMax {
		return fmt.Errorf("%w: AGE_MIN %d exceeds AGE_MAX %d", ErrInvalid, c.Form.AgeMin, c.Form.AgeMax)
	}
	if len(c.Form.Hobbies) == 0 {
		return fmt.Errorf("%w: no hobby options", ErrInvalid)
	}
	if len(c.Form.Statuses) == 0 {
		return fmt.Errorf("%w: no status options", ErrInvalid)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.HTTP.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

func (c Config) Options() domain.Options {
	return domain.Options{
		AgeMin:   c.Form.AgeMin,
		AgeMax:   c.Form.AgeMax,
		Hobbies:  c.Form.Hobbies,
		Statuses: c.Form.Statuses,
	}
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
