// Package config exposes runtime configuration behind typed getters.
package config

import (
	"io"
	"time"
)

// Config is the read surface used across the application. Implementations
// return zero values for missing keys; callers treat zero as "use default".
type Config interface {
	io.Closer

	// GetString retrieves the value for key as a string.
	GetString(key string) string
	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool
	// GetInt retrieves the value for key as an int.
	GetInt(key string) int
	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32
	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64
	// GetArray retrieves the value for key as a string slice.
	GetArray(key string) []string

	// GetSecond interprets the integer value for key as seconds.
	GetSecond(key string) time.Duration
	// GetMinute interprets the integer value for key as minutes.
	GetMinute(key string) time.Duration
	// GetHour interprets the integer value for key as hours.
	GetHour(key string) time.Duration
	// GetDay interprets the integer value for key as days (24h).
	GetDay(key string) time.Duration
}
