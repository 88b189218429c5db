// Package config loads server settings from an optional JSON file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreFirebase = "firebase"
	StoreMemory   = "memory"
)

// Config holds everything main needs to wire the server.
type Config struct {
	ServerAddr     string         `mapstructure:"server_addr"`
	Port           string         `mapstructure:"port"`
	AllowedOrigins []string       `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	Store          string         `mapstructure:"store"`
	LLM            LLMConfig      `mapstructure:"llm"`
	Firebase       FirebaseConfig `mapstructure:"firebase"`
	IPInfo         IPInfoConfig   `mapstructure:"ipinfo"`
}

// LLMConfig 选择生成菜谱所用的模型。
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

type FirebaseConfig struct {
	DatabaseURL       string `mapstructure:"database_url"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
	CredentialsFile   string `mapstructure:"credentials_file"`
}

type IPInfoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Credentials returns the service-account JSON decoded from CredentialsBase64,
// or nil when only a credentials file is configured.
func (f FirebaseConfig) Credentials() ([]byte, error) {
	if f.CredentialsBase64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(f.CredentialsBase64))
	if err != nil {
		return nil, fmt.Errorf("decode firebase credentials: %w", err)
	}
	return data, nil
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"server_addr":                 {"SERVER_ADDR"},
	"port":                        {"PORT"},
	"allowed_origins":             {"ALLOWED_ORIGINS"},
	"request_timeout":             {"REQUEST_TIMEOUT"},
	"store":                       {"STORE"},
	"llm.provider":                {"LLM_PROVIDER"},
	"llm.model":                   {"LLM_MODEL"},
	"llm.api_key":                 {"LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
	"llm.base_url":                {"LLM_BASE_URL"},
	"llm.temperature":             {"LLM_TEMPERATURE"},
	"firebase.database_url":       {"FIREBASE_DATABASE_URL"},
	"firebase.credentials_base64": {"FIREBASE_CREDENTIALS_BASE64"},
	"firebase.credentials_file":   {"FIREBASE_CREDENTIALS_FILE"},
	"ipinfo.base_url":             {"IPINFO_BASE_URL"},
	"ipinfo.token":                {"IPINFO_TOKEN"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("store", StoreFirebase)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("firebase.credentials_file", "/etc/secrets/adminsdk-py.json")
	v.SetDefault("ipinfo.base_url", "https://ipinfo.io")
	v.SetDefault("ipinfo.timeout", 10*time.Second)
}

// Load reads path if it exists. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, err
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Port != "" {
		cfg.ServerAddr = ":" + cfg.Port
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "openai", "mock":
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %q not supported", c.LLM.Provider)
	}

	switch c.Store {
	case StoreMemory:
	case StoreFirebase:
		if c.Firebase.DatabaseURL == "" {
			return errors.New("firebase store requires firebase.database_url (FIREBASE_DATABASE_URL)")
		}
		if c.Firebase.CredentialsBase64 == "" && c.Firebase.CredentialsFile == "" {
			return errors.New("firebase store requires credentials")
		}
	default:
		return fmt.Errorf("store %q not supported", c.Store)
	}

	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}
