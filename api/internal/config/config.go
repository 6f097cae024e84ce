package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EngineHTTP   = "http"
	EngineGemini = "gemini"
)

type Config struct {
	Port string `yaml:"port"`

	PredictURL     string        `yaml:"predict_url"`
	RecognizeURL   string        `yaml:"recognize_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Engine       string `yaml:"engine"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
	DatabaseURL      string `yaml:"database_url"`

	ContentBaseURL string `yaml:"content_base_url"`
	CatalogPath    string `yaml:"catalog_path"`
	LogLevel       string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Port:           "8000",
		PredictURL:     "http://localhost:5000/predict",
		RecognizeURL:   "http://localhost:5000/recognize_image",
		RequestTimeout: 60 * time.Second,
		Engine:         EngineHTTP,
		GeminiModel:    "gemini-2.5-flash",
		ContentBaseURL: "http://localhost:3000",
		LogLevel:       "info",
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load собирает конфиг: дефолты, затем YAML-файл (если path не пустой), затем .env и
// переменные окружения. Окружение всегда побеждает.
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = resolveDSN()
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.PredictURL = getEnv("PREDICT_URL", c.PredictURL)
	c.RecognizeURL = getEnv("RECOGNIZE_URL", c.RecognizeURL)
	if v := getEnv("REQUEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	c.Engine = strings.ToLower(getEnv("ENGINE", c.Engine))
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.ContentBaseURL = getEnv("CONTENT_BASE_URL", c.ContentBaseURL)
	c.CatalogPath = getEnv("CATALOG_PATH", c.CatalogPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate проверяет то, что нужно и CLI, и боту.
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"PREDICT_URL":   c.PredictURL,
		"RECOGNIZE_URL": c.RecognizeURL,
	} {
		if err := checkURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout))
	}
	switch c.Engine {
	case EngineHTTP:
	case EngineGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for ENGINE=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ENGINE %q (http | gemini)", c.Engine))
	}
	return errors.Join(errs...)
}

// RequireBot: настройки, без которых бот не стартует.
func (c *Config) RequireBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramBotToken == "" {
		return errors.New("missing required env TELEGRAM_BOT_TOKEN")
	}
	if c.WebhookURL != "" {
		if err := checkURL(c.WebhookURL); err != nil {
			return fmt.Errorf("WEBHOOK_URL: %w", err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// resolveDSN строит DSN из POSTGRES_*/PG*; пустая строка, если ничего не задано.
func resolveDSN() string {
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getEnv("PGHOST", "")
	if pass == "" && host == "" {
		return ""
	}
	if host == "" {
		host = "db"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "medassist"), pass),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "medassist"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSN убирает пароль для логов.
func SafeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, u.User.Username())
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, u.User.Username())
}
