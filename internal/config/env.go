package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the environment overrides (FLOATSPACE_LOG_LEVEL, ...).
const EnvPrefix = "floatspace"

// envOverrides are read with envconfig. Unset variables leave the file value alone.
type envOverrides struct {
	LogLevel       string `envconfig:"LOG_LEVEL"`
	HTTPAddr       string `envconfig:"HTTP_ADDR"`
	TabsMode       string `envconfig:"TABS_MODE"`
	Viewport       string `envconfig:"VIEWPORT"`
	StorageBackend string `envconfig:"STORAGE_BACKEND"`
	StorageURL     string `envconfig:"STORAGE_URL"`
	StorageToken   string `envconfig:"STORAGE_TOKEN"`
	Workspace      string `envconfig:"WORKSPACE"`
	SaveDelayMS    int    `envconfig:"SAVE_DELAY_MS"`
}

func applyEnv(cfg *Config, sources map[string]Source) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	setString := func(path, variable, value string, dst *string) {
		if value == "" {
			return
		}
		*dst = value
		sources[path] = Source{Kind: SourceEnv, Name: variable}
	}

	setString("log_level", "FLOATSPACE_LOG_LEVEL", env.LogLevel, &cfg.LogLevel)
	setString("server.http_addr", "FLOATSPACE_HTTP_ADDR", env.HTTPAddr, &cfg.Server.HTTPAddr)
	setString("tabs_mode", "FLOATSPACE_TABS_MODE", env.TabsMode, &cfg.TabsMode)
	setString("viewport.provider", "FLOATSPACE_VIEWPORT", env.Viewport, &cfg.Viewport.Provider)
	setString("storage.backend", "FLOATSPACE_STORAGE_BACKEND", env.StorageBackend, &cfg.Storage.Backend)
	setString("storage.url", "FLOATSPACE_STORAGE_URL", env.StorageURL, &cfg.Storage.URL)
	setString("storage.token", "FLOATSPACE_STORAGE_TOKEN", env.StorageToken, &cfg.Storage.Token)
	setString("storage.workspace", "FLOATSPACE_WORKSPACE", env.Workspace, &cfg.Storage.Workspace)

	if env.SaveDelayMS > 0 {
		cfg.SaveDelayMS = env.SaveDelayMS
		sources["save_delay_ms"] = Source{Kind: SourceEnv, Name: "FLOATSPACE_SAVE_DELAY_MS"}
	}
	return nil
}
