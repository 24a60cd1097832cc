package env

import "os"

// Get reads an environment variable, substituting fallback when the
// variable is unset or empty. Config that deserves validation goes
// through pkg/config instead; this covers the few ad-hoc knobs read
// outside the envconfig structs.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
