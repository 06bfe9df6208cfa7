package auth

import (
	"os"
	"strconv"
	"time"
)

// Config holds token lifetimes. Reset windows are always shorter than sessions.
type Config struct {
	LoginTTL    time.Duration
	ResetTTL    time.Duration
	TokenLength int
}

func DefaultConfig() Config {
	return Config{
		LoginTTL:    30 * 24 * time.Hour,
		ResetTTL:    15 * time.Minute,
		TokenLength: 32,
	}
}

// ConfigFromEnv reads LOGIN_TOKEN_TTL, RESET_TOKEN_TTL and TOKEN_LENGTH.
// Unparseable values keep their defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if d, err := time.ParseDuration(os.Getenv("LOGIN_TOKEN_TTL")); err == nil && d > 0 {
		cfg.LoginTTL = d
	}
	if d, err := time.ParseDuration(os.Getenv("RESET_TOKEN_TTL")); err == nil && d > 0 {
		cfg.ResetTTL = d
	}
	if n, err := strconv.Atoi(os.Getenv("TOKEN_LENGTH")); err == nil && n >= 16 && n <= 128 {
		cfg.TokenLength = n
	}
	return cfg.normalized()
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.LoginTTL <= 0 {
		c.LoginTTL = d.LoginTTL
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = d.ResetTTL
	}
	if c.ResetTTL >= c.LoginTTL {
		c.LoginTTL, c.ResetTTL = d.LoginTTL, d.ResetTTL
	}
	if c.TokenLength <= 0 {
		c.TokenLength = d.TokenLength
	}
	return c
}
