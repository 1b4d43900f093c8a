package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the readiness settings. Requirement thresholds are fixed and
// intentionally not part of it.
type Config struct {
	SystemDrive string       `yaml:"systemDrive"`
	Output      string       `yaml:"output"`
	Pause       bool         `yaml:"pause"`
	LogLevel    string       `yaml:"logLevel" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Server      ServerConfig `yaml:"server"`
	Auth        AuthConfig   `yaml:"auth"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required,hostname_port"`
	Interval       time.Duration `yaml:"interval" validate:"gte=1s"`
	CacheTTL       time.Duration `yaml:"cacheTTL" validate:"gte=0"`
	HistorySize    int           `yaml:"historySize" validate:"gte=1,lte=10000"`
	AllowedIPs     []string      `yaml:"allowedIPs" validate:"dive,ip"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	TrustedProxies []string      `yaml:"trustedProxies" validate:"dive,ip|cidr"`
}

// AuthConfig configures bearer tokens for the serve command
type AuthConfig struct {
	SecretKey   string        `yaml:"secretKey"`
	TokenExpiry time.Duration `yaml:"tokenExpiry" validate:"gte=0"`
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		LogLevel: "warn",
		Server: ServerConfig{
			Addr:        "localhost:8080",
			Interval:    5 * time.Minute,
			CacheTTL:    30 * time.Second,
			HistorySize: 288,
		},
		Auth: AuthConfig{
			TokenExpiry: 90 * 24 * time.Hour,
		},
	}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the struct tags and returns a readable error
func (c Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
