package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider registers services and classes into the container.
//
// Register is called as soon as the provider is added (or, for deferred
// providers, on first use of one of Provides()). Boot runs after every
// eager provider has registered, so it may Make other services.
//
//	type UserServiceProvider struct{ container.BaseProvider }
//
//	func (p *UserServiceProvider) Register(app *container.Container) {
//	    app.Register(callable.NewClass(`App\Http\UserController`, NewUserController))
//	}
type ServiceProvider interface {
	// Register binds services and classes. Do not Make other services here.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides lists the abstracts and class names a deferred provider
	// registers.
	Provides() []string

	// IsDeferred reports whether Register waits until one of Provides()
	// is first made or looked up.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op implementation of Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders, loading deferred
// ones lazily through Container.Defer.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method unless deferred.
// Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.app.Defer(provider.Provides(), func(c *Container) {
			provider.Register(c)
			if r.booted {
				provider.Boot(c)
			}
		})
		return
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)

	// late providers boot straight away
	if r.booted {
		provider.Boot(r.app)
	}
}

// Boot calls Boot on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
