package config

import "fmt"

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
)

// messageBuilders keeps the panic texts for unrecoverable configuration
// problems in one place, away from the loading logic.
type messageBuilders struct {
	requiredEnvNotSet func(string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
	}
}

var messages = newMessageBuilders()
