package routing

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/km-arc/go-callable/framework/callable"
	gohttp "github.com/km-arc/go-callable/framework/http"
)

// Methods accepted by Any and by route manifests.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}

// Router wraps chi.Router. Handlers are callback specs resolved on every
// request, so each request gets a freshly constructed controller.
type Router struct {
	mux chi.Router
	*settings
}

// settings are shared by a router and every group or prefix created from it.
type settings struct {
	resolver *callable.Resolver
	log      logr.Logger
	debug    bool
}

// Route describes a registered route.
type Route struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Handler string `json:"handler"`
}

// New creates a Router that resolves handlers with resolver. The default
// stack is RequestID, RealIP, request logging and Recoverer.
func New(resolver *callable.Resolver, log logr.Logger) *Router {
	s := &settings{resolver: resolver, log: log.WithName("router")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).NotFound()
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Error(http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return &Router{mux: r, settings: s}
}

// SetDebug exposes handler error messages in 500 responses.
func (r *Router) SetDebug(debug bool) { r.debug = debug }

// Resolver returns the resolver handlers are dispatched through.
func (r *Router) Resolver() *callable.Resolver { return r.resolver }

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, spec any)    { r.Handle(http.MethodGet, pattern, spec) }
func (r *Router) Post(pattern string, spec any)   { r.Handle(http.MethodPost, pattern, spec) }
func (r *Router) Put(pattern string, spec any)    { r.Handle(http.MethodPut, pattern, spec) }
func (r *Router) Patch(pattern string, spec any)  { r.Handle(http.MethodPatch, pattern, spec) }
func (r *Router) Delete(pattern string, spec any) { r.Handle(http.MethodDelete, pattern, spec) }

// Any registers spec for every method in Methods.
func (r *Router) Any(pattern string, spec any) {
	for _, m := range Methods {
		r.Handle(m, pattern, spec)
	}
}

// Handle registers spec for method, which may also be "ANY".
//
//	r.Handle("GET", "/users/{id}", `App\Http\UserController@show`)
//	r.Handle("GET", "/health", `App\Support\Health::check`)
//	r.Handle("POST", "/echo", callable.NewClosure(fn))
func (r *Router) Handle(method, pattern string, spec any) {
	method = strings.ToUpper(method)
	if method == "ANY" {
		r.Any(pattern, spec)
		return
	}
	r.mux.Method(method, pattern, &dispatcher{spec: spec, settings: r.settings})
}

// Resource registers the conventional RESTful routes for a controller class:
//
//	GET    /photos       → Class@index
//	POST   /photos       → Class@store
//	GET    /photos/{id}  → Class@show
//	PUT    /photos/{id}  → Class@update
//	PATCH  /photos/{id}  → Class@update
//	DELETE /photos/{id}  → Class@destroy
func (r *Router) Resource(pattern, class string) {
	r.Get(pattern, class+"@index")
	r.Post(pattern, class+"@store")
	r.Get(pattern+"/{id}", class+"@show")
	r.Put(pattern+"/{id}", class+"@update")
	r.Patch(pattern+"/{id}", class+"@update")
	r.Delete(pattern+"/{id}", class+"@destroy")
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's path.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, settings: r.settings})
	})
}

// Prefix creates a sub-router mounted under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, settings: r.settings})
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// Mount attaches a plain http.Handler, e.g. the metrics endpoint.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Mount(pattern, h)
}

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Routes lists registered routes sorted by pattern then method.
func (r *Router) Routes() ([]Route, error) {
	var out []Route
	err := chi.Walk(r.mux, func(method, pattern string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, Route{Method: method, Pattern: pattern, Handler: describe(h)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Route) int {
		if c := strings.Compare(a.Pattern, b.Pattern); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return out, nil
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// ── Dispatch ─────────────────────────────────────────────────────────────────

// dispatcher resolves spec and calls it with (http.ResponseWriter, *http.Request).
// Targets taking fewer parameters receive only the leading ones.
//
// A handler that writes a response owns it. Otherwise a non-nil first result
// is sent as 200 {"data": v}, a nil one as 204, and an error through
// Response.Fail.
type dispatcher struct {
	spec any
	*settings
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
	res := gohttp.NewResponse(ww)

	out, err := d.resolver.Call(d.spec, ww, req)
	if ww.Status() != 0 {
		if err != nil {
			d.log.Error(err, "handler failed after writing a response", "handler", describe(d))
		}
		return
	}
	if err != nil {
		d.log.Error(err, "handler failed", "handler", describe(d), "path", req.URL.Path)
		res.Fail(err, d.debug)
		return
	}
	if len(out) == 0 || out[0] == nil {
		res.NoContent()
		return
	}
	res.Success(out[0])
}

func describe(h http.Handler) string {
	if ch, ok := h.(*chi.ChainHandler); ok {
		h = ch.Endpoint
	}
	d, ok := h.(*dispatcher)
	if !ok {
		return fmt.Sprintf("%T", h)
	}
	switch spec := d.spec.(type) {
	case callable.Closure:
		return "Closure"
	case string:
		return spec
	}
	return callable.Render(d.spec)
}

// RequestLogger logs one line per request through log.
func RequestLogger(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
