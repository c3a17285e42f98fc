package providers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/km-arc/go-callable/framework/callable"
	"github.com/km-arc/go-callable/framework/config"
	"github.com/km-arc/go-callable/framework/container"
	"github.com/km-arc/go-callable/framework/logging"
	"github.com/km-arc/go-callable/framework/metrics"
	"github.com/km-arc/go-callable/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads configuration from .env files and the
// environment.
//
// Bound abstracts:
//   - "config", alias "configuration" → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(*container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the logr.Logger from the LOG_* settings.
// Output goes to stderr unless Writer is set.
//
// Bound abstracts:
//   - "logger" → logr.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Writer io.Writer
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	w := p.Writer
	app.Singleton("logger", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		if w != nil {
			return logging.NewWriter(w, cfg.Log)
		}
		return logging.New(cfg.Log)
	})
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider owns the Prometheus registry. It is deferred, so
// nothing is built unless metrics are enabled and something asks for them.
//
// Bound abstracts:
//   - "metrics.registry" → *prometheus.Registry (with Go and process collectors)
//   - "metrics"          → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.Singleton("metrics.registry", func(*container.Container) (any, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg, nil
	})
	app.Singleton("metrics", func(c *container.Container) (any, error) {
		reg, err := container.Resolve[*prometheus.Registry](c, "metrics.registry")
		if err != nil {
			return nil, err
		}
		return metrics.New(reg)
	})
}

func (p *MetricsServiceProvider) IsDeferred() bool { return true }
func (p *MetricsServiceProvider) Provides() []string {
	return []string{"metrics", "metrics.registry"}
}

// ── CallbackServiceProvider ───────────────────────────────────────────────────

// CallbackServiceProvider builds the resolver that turns callback specs into
// callables, using the container as its class registry.
//
// CALLBACK_BINDING picks what constructors and closures receive:
//   - "app"      → the "app" instance, or the container when none is bound
//   - "null"     → an explicit null binding
//   - "disabled" → no binding; closures keep their own
//
// Bound abstracts:
//   - "callable" → *callable.Resolver
type CallbackServiceProvider struct {
	container.BaseProvider
}

func (p *CallbackServiceProvider) Register(app *container.Container) {
	app.Singleton("callable", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		log, err := container.Resolve[logr.Logger](c, "logger")
		if err != nil {
			return nil, err
		}

		binding, err := bindingFor(c, cfg.Callback.Binding)
		if err != nil {
			return nil, err
		}
		r := callable.NewResolver(c, binding, cfg.Callback.ResolveStatic)
		r.SetLogger(log)

		if cfg.Metrics.Enabled {
			col, err := container.Resolve[*metrics.Collector](c, "metrics")
			if err != nil {
				return nil, err
			}
			r.SetObserver(col)
		}
		return r, nil
	})
}

func bindingFor(c *container.Container, mode string) (callable.Binding, error) {
	switch mode {
	case config.BindingDisabled:
		return callable.Disabled(), nil
	case config.BindingNull:
		return callable.Null(), nil
	}
	if !c.Bound("app") {
		return callable.Bind(c), nil
	}
	app, err := c.Make("app")
	if err != nil {
		return callable.Binding{}, err
	}
	return callable.Bind(app), nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Boot mounts the metrics
// endpoint when enabled and applies the route manifest named by
// CALLBACK_ROUTES when that file exists. A manifest that exists but does not
// load or apply panics Boot after logging the error.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		log, err := container.Resolve[logr.Logger](c, "logger")
		if err != nil {
			return nil, err
		}
		resolver, err := container.Resolve[*callable.Resolver](c, "callable")
		if err != nil {
			return nil, err
		}
		r := routing.New(resolver, log)
		r.SetDebug(cfg.App.Debug)
		return r, nil
	})
}

func (p *RoutingServiceProvider) Boot(app *container.Container) {
	log := container.MustResolve[logr.Logger](app, "logger").WithName("routing")
	if err := bootRoutes(app); err != nil {
		log.Error(err, "route setup failed")
		panic(fmt.Sprintf("routing: %v", err))
	}
}

func bootRoutes(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		reg, err := container.Resolve[*prometheus.Registry](app, "metrics.registry")
		if err != nil {
			return err
		}
		router.Mount(cfg.Metrics.Path, metrics.Handler(reg))
	}

	if cfg.Callback.Routes == "" {
		return nil
	}
	if _, err := os.Stat(cfg.Callback.Routes); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	m, err := routing.LoadManifest(cfg.Callback.Routes)
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	m.Apply(router)
	return nil
}
