package env

import (
	"os"
	"strings"
)

// Get reads an environment variable, falling back when unset or blank.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return fallback
}
