package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/km-arc/go-callable/framework/callable"
	"github.com/km-arc/go-callable/framework/config"
	"github.com/km-arc/go-callable/framework/container"
	gohttp "github.com/km-arc/go-callable/framework/http"
	"github.com/km-arc/go-callable/framework/providers"
	"github.com/km-arc/go-callable/framework/routing"
)

// Version of the framework.
const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// Application is the top-level container. It embeds the Container and the
// ProviderRegistry so user code can call app.Singleton(), app.Register()
// and friends directly. It is bound as "app" and, with CALLBACK_BINDING=app,
// is the binding every controller constructor and closure receives.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers.
// envFiles default to ".env".
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}
	c.Instance("app", app)

	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LoggingServiceProvider{})
	registry.Register(&providers.MetricsServiceProvider{})
	registry.Register(&providers.CallbackServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Class registers a class callback specs can name.
func (a *Application) Class(class *callable.Class) {
	a.Container.Register(class)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, "config")
}

func (a *Application) Logger() logr.Logger {
	return container.MustResolve[logr.Logger](a.Container, "logger")
}

// Resolver returns the callback resolver bound as "callable".
func (a *Application) Resolver() *callable.Resolver {
	return container.MustResolve[*callable.Resolver](a.Container, "callable")
}

func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

// Call resolves spec and invokes it with args.
//
//	out, err := app.Call(`App\Reports\Daily@build`, "2024-01-01")
func (a *Application) Call(spec any, args ...any) ([]any, error) {
	return a.Resolver().Call(spec, args...)
}

// Handler boots the application if needed and returns the router.
func (a *Application) Handler() http.Handler {
	if !a.Providers.Booted() {
		a.Boot()
	}
	return a.Router()
}

// Run serves HTTP until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve listens on APP_PORT and shuts down gracefully when ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	handler := a.Handler()
	cfg := a.Config()
	log := a.Logger()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "name", cfg.App.Name, "addr", srv.Addr, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return Version }

// Controller is an embeddable base for HTTP controllers. App is nil unless
// the resolver binding is the application.
//
//	type UserController struct{ app.Controller }
//
//	func NewUserController(b callable.Binding) (*UserController, error) {
//	    return &UserController{Controller: app.ControllerFrom(b)}, nil
//	}
type Controller struct {
	App *Application
}

// ControllerFrom builds a Controller from a constructor binding.
func ControllerFrom(b callable.Binding) Controller {
	a, _ := b.Value().(*Application)
	return Controller{App: a}
}

func (c Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
