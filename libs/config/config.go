package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads KEY=VALUE pairs from the given files (default ".env") into the
// process environment. Variables already set are left untouched and missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func String(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// Int returns the positive integer stored in key, or fallback when unset or invalid.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(String(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func Bool(key string, fallback bool) bool {
	switch strings.ToLower(String(key, "")) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

// Duration parses values like "1500ms" or "10s". A bare integer is read in units of unit.
func Duration(key string, unit, fallback time.Duration) time.Duration {
	raw := String(key, "")
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return fallback
		}
		return time.Duration(n) * unit
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// List splits a comma separated value, dropping blanks.
func List(key, fallback string) []string {
	raw := String(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
