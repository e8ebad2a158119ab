package env

import (
	"sync"

	"github.com/spf13/viper"
)

const (
	Local      = "local"
	Production = "production"
	Testing    = "testing"
)

var (
	current string
	once    sync.Once
)

// Current reports the process environment, defaulting to local.
func Current() string {
	once.Do(func() {
		current = viper.GetString("ENV")
		if current == "" {
			current = Local
		}
	})
	return current
}

func IsLocal() bool {
	return Current() == Local
}

func IsProduction() bool {
	return Current() == Production
}

func IsTesting() bool {
	return Current() == Testing
}
