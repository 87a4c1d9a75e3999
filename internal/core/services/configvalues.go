package services

import (
	"time"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// configValues reads typed settings from a ConfigStore. A missing key or a
// value of the wrong type yields the supplied default, so a hand-edited
// file can never stop the application from starting.
type configValues struct {
	store driven.ConfigStore
}

func (c configValues) string(key, def string) string {
	if v, ok := c.store.Get(key); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// positiveInt treats zero and negatives as unset.
func (c configValues) positiveInt(key string, def int) int {
	v, ok := c.store.Get(key)
	if !ok {
		return def
	}
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if x != float64(int(x)) {
			return def
		}
		n = int(x)
	}
	if n <= 0 {
		return def
	}
	return n
}

// float keeps an explicit zero, which is a valid temperature.
func (c configValues) float(key string, def float64) float64 {
	v, ok := c.store.Get(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return def
}

func (c configValues) bool(key string, def bool) bool {
	if v, ok := c.store.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func (c configValues) duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.string(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
