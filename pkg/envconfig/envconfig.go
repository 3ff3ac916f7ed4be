// Package envconfig reads optional environment overrides for index
// constructor defaults.
package envconfig

import (
	"os"
	"strconv"
)

// Int returns the named environment variable parsed as an int, or
// fallback when the variable is unset, empty, or not an integer.
func Int(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Int64 is Int for 64-bit values such as RNG seeds.
func Int64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
