package env

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when there is one.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, assuming environment variables are set directly")
	}
}

// Get returns the value of key, or def when it is unset or blank.
func Get(key, def string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}

func GetInt(key string, def int) int {
	if n, err := strconv.Atoi(Get(key, "")); err == nil {
		return n
	}
	return def
}

func GetFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(Get(key, ""), 64); err == nil {
		return f
	}
	return def
}

func GetBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(Get(key, "")); err == nil {
		return b
	}
	return def
}

func GetDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(Get(key, "")); err == nil {
		return d
	}
	return def
}

// Lookup reports whether key is set to a non-blank value.
func Lookup(key string) (string, bool) {
	val := Get(key, "")
	return val, val != ""
}
