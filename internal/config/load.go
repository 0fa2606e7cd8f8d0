package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"stockwatch/internal/mailer"
)

// Load reads and strictly decodes the config file. Unknown fields and
// trailing tokens are rejected; validation of the content is Validate's job.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	jb, format, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// SMTPFromEnv overlays environment variables onto the file's SMTP block and
// returns the mailer transport config. Missing values stay empty; the mailer
// itself refuses to send on an incomplete transport.
func (c *Config) SMTPFromEnv() mailer.Config {
	cfg := mailer.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS == nil || *c.SMTP.UseTLS,
		Timeout:  30 * time.Second,
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.From = v
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if v, ok := os.LookupEnv("SMTP_USE_TLS"); ok {
		cfg.UseTLS = !isFalsy(v)
	}
	return cfg
}

// TelegramToken returns the bot token, env TELEGRAM_TOKEN taking precedence.
func (c *Config) TelegramToken() string {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		return v
	}
	return strings.TrimSpace(c.Telegram.Token)
}

func isFalsy(v string) bool {
	switch strings.TrimSpace(v) {
	case "0", "false", "False", "FALSE":
		return true
	default:
		return false
	}
}
