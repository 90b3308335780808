package instance

import (
	"os"
	"strings"
)

// GetID identifies this process in logs: PULSE_INSTANCE_ID, then DYNO, then the hostname.
func GetID() string {
	for _, key := range []string{"PULSE_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
