package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/km-arc/go-callable/framework/app"
	"github.com/km-arc/go-callable/framework/callable"
	gohttp "github.com/km-arc/go-callable/framework/http"
	"github.com/km-arc/go-callable/framework/routing"
	"github.com/km-arc/go-callable/framework/validation"
)

func main() {
	application := app.New() // loads .env automatically

	// ── Classes named by routes.yaml ─────────────────────────────────────────

	application.Class(callable.NewClass(`App\Http\HomeController`, NewHomeController))
	application.Class(callable.NewClass(`App\Http\UserController`, NewUserController))
	application.Class(callable.AbstractClass[Health](`App\Support\Health`).Static("check", Health{}.Check))
	application.ClassAlias(`App\Http\UserController`, `Users`)

	// ── Routes registered in code ────────────────────────────────────────────

	r := application.Router()

	r.Get("/version", callable.NewClosure(func(this any, _ ...any) (any, error) {
		a, ok := this.(*app.Application)
		if !ok {
			return nil, errors.New("version: closure is not bound to the application")
		}
		return map[string]string{"name": a.Config().App.Name, "version": a.Version()}, nil
	}))

	r.Group(func(protected *routing.Router) {
		protected.Middleware(AuthMiddleware)
		protected.Get("/profile", `Users@profile`)
	})

	application.Boot()

	if len(os.Args) > 1 && os.Args[1] == "routes" {
		if err := printRoutes(r); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := application.Run(); err != nil {
		application.Logger().Error(err, "server error")
		os.Exit(1)
	}
}

func printRoutes(r *routing.Router) error {
	routes, err := r.Routes()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}

// ── Controllers ──────────────────────────────────────────────────────────────

// HomeController is invokable: routes name it without a method.
type HomeController struct {
	app.Controller
}

func NewHomeController(b callable.Binding) (*HomeController, error) {
	return &HomeController{Controller: app.ControllerFrom(b)}, nil
}

func (c *HomeController) Invoke() map[string]any {
	return map[string]any{"message": "Welcome to " + c.App.Config().App.Name}
}

type user struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserController struct {
	app.Controller
}

func NewUserController(b callable.Binding) (*UserController, error) {
	return &UserController{Controller: app.ControllerFrom(b)}, nil
}

func (c *UserController) Index() []user {
	return []user{
		{ID: "1", Name: "Alice", Email: "alice@example.com"},
		{ID: "2", Name: "Bob", Email: "bob@example.com"},
	}
}

func (c *UserController) Show(_ http.ResponseWriter, r *http.Request) user {
	return user{ID: c.Request(r).RouteParam("id"), Name: "Alice"}
}

func (c *UserController) Store(w http.ResponseWriter, r *http.Request) error {
	var body user
	if err := c.Request(r).Bind(&body); err != nil {
		c.Response(w).Error(http.StatusBadRequest, err.Error())
		return nil
	}

	err := validation.Make(map[string]string{
		"name":  body.Name,
		"email": body.Email,
	}, validation.Rules{
		"name":  "required|min:2|max:100",
		"email": "required|email",
	}).Validate()
	if err != nil {
		return err // 422
	}

	body.ID = "3"
	c.Response(w).Created(body)
	return nil
}

func (c *UserController) Profile(_ http.ResponseWriter, r *http.Request) map[string]string {
	return map[string]string{"token": c.Request(r).BearerToken()}
}

// ── Static helpers ───────────────────────────────────────────────────────────

// Health is never instantiated; routes reach it as App\Support\Health::check.
type Health struct{}

func (Health) Check() map[string]any {
	return map[string]any{"status": "ok", "goroutines": runtime.NumGoroutine()}
}

// AuthMiddleware rejects requests without a bearer token.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gohttp.NewRequest(r).BearerToken() == "" {
			gohttp.NewResponse(w).Unauthorized()
			return
		}
		next.ServeHTTP(w, r)
	})
}
