// Package config loads blogdesk settings from defaults, a YAML file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix for environment overrides. Nested keys use a
// double underscore: BLOGDESK_API__BASE_URL sets api.base_url.
const EnvPrefix = "BLOGDESK_"

const (
	DefaultBaseURL    = "http://localhost:8080/api"
	DefaultSiteURL    = "http://localhost:3000"
	DefaultTimeout    = 15 * time.Second
	DefaultLogLevel   = "info"
	DefaultDateFormat = "2006-01-02"
)

// Config is the resolved configuration.
type Config struct {
	API  APIConfig  `koanf:"api"`
	Auth AuthConfig `koanf:"auth"`
	Site SiteConfig `koanf:"site"`
	Log  LogConfig  `koanf:"log"`
	UI   UIConfig   `koanf:"ui"`
}

// APIConfig points at the blog backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// AuthConfig says where the bearer token comes from. Token wins over
// TokenFile when both are set.
type AuthConfig struct {
	Token     string `koanf:"token"`
	TokenFile string `koanf:"token_file"`
}

// SiteConfig is the public website, used to build view links.
type SiteConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so logs
// never go to stdout.
type LogConfig struct {
	File  string `koanf:"file" validate:"required"`
	Level string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
}

// UIConfig tweaks rendering.
type UIConfig struct {
	DateFormat string `koanf:"date_format" validate:"required"`
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are not configuration.
var flagKeys = map[string]string{
	"api-url":    "api.base_url",
	"timeout":    "api.timeout",
	"token-file": "auth.token_file",
	"site-url":   "site.base_url",
	"log-file":   "log.file",
	"log-level":  "log.level",
}

// FlagKey returns the config key for a flag name, or "" if the flag is not
// a config flag.
func FlagKey(flagName string) string {
	return flagKeys[flagName]
}

// DefaultPath returns ~/.config/blogdesk/config.yaml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "blogdesk", "config.yaml")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "blogdesk", "blogdesk.log")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"api.base_url":    DefaultBaseURL,
		"api.timeout":     DefaultTimeout.String(),
		"auth.token":      "",
		"auth.token_file": "",
		"site.base_url":   DefaultSiteURL,
		"log.file":        defaultLogFile(),
		"log.level":       DefaultLogLevel,
		"ui.date_format":  DefaultDateFormat,
	}
}

// Load resolves configuration. path may be empty, in which case the default
// path is used if it exists. An explicit path that does not exist is an
// error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	// 3. Environment (BLOGDESK_API__BASE_URL -> api.base_url)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key := FlagKey(f.Name)
			if !f.Changed || key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports them as key: message pairs.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", configKey(e.Namespace()), describe(e)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// configKey turns a validator namespace like Config.API.BaseURL into the
// koanf key api.base_url.
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	switch s {
	case "API", "UI":
		return strings.ToLower(s)
	case "BaseURL":
		return "base_url"
	}
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("%q is not a valid url", e.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	default:
		return "is invalid"
	}
}
