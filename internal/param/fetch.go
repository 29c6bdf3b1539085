package param

import (
	"context"
	"os"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// Lookup returns the value of an environment variable, or fallback when the
// variable is unset or empty.
func Lookup(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
