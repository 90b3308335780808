package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// InstanceID identifies the running process for log correlation.
func InstanceID(fallback string) string {
	for _, key := range []string{"DYNO", "K_REVISION", "HOSTNAME"} {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}
