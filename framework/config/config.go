package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Binding modes for CALLBACK_BINDING.
const (
	BindingDisabled = "disabled"
	BindingNull     = "null"
	BindingApp      = "app"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Callback CallbackConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	URL   string
	Port  string
}

// CallbackConfig controls how handler specs are resolved.
type CallbackConfig struct {
	ResolveStatic bool
	Binding       string // disabled | null | app
	Routes        string // route manifest path
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoCallable"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
			URL:   env("APP_URL", "http://localhost"),
			Port:  env("APP_PORT", "8000"),
		},
		Callback: CallbackConfig{
			ResolveStatic: envBool("CALLBACK_RESOLVE_STATIC", true),
			Binding:       bindingMode(env("CALLBACK_BINDING", BindingApp)),
			Routes:        env("CALLBACK_ROUTES", "routes.yaml"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(env("LOG_LEVEL", "info")),
			Format: strings.ToLower(env("LOG_FORMAT", "json")),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
			Path:    env("METRICS_PATH", "/metrics"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// bindingMode normalises CALLBACK_BINDING; unknown values mean "app".
func bindingMode(v string) string {
	switch m := strings.ToLower(strings.TrimSpace(v)); m {
	case BindingDisabled, BindingNull, BindingApp:
		return m
	case "false", "off", "none":
		return BindingDisabled
	}
	return BindingApp
}
