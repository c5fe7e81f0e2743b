// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"
)

const envPrefix = "FUNDFINDER_"

// OverlayEnv applies FUNDFINDER_* environment overrides. Hosted deployments
// pass the database DSN this way instead of writing it to the YAML file.
func OverlayEnv(cfg *Config) {
	if v := env("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := env("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := env("PORT"); v != "" {
		// Bad values are left for Validate to report against the file value.
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
}

// FileLayer returns live with every env-overridden field reset to its value
// in file, so saving it never writes an env-only value (such as a DSN
// carrying credentials) to disk.
func FileLayer(live, file Config) Config {
	out := live
	if env("DATABASE_DRIVER") != "" {
		out.Database.Driver = file.Database.Driver
	}
	if env("DATABASE_DSN") != "" {
		out.Database.DSN = file.Database.DSN
	}
	if env("PORT") != "" {
		out.App.Port = file.App.Port
	}
	if env("LOG_LEVEL") != "" {
		out.App.LogLevel = file.App.LogLevel
	}
	return out
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}
