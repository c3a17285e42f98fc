package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-callable/framework/app"
	"github.com/km-arc/go-callable/framework/callable"
)

type whoAmI struct {
	app.Controller
}

func newWhoAmI(b callable.Binding) (*whoAmI, error) {
	return &whoAmI{Controller: app.ControllerFrom(b)}, nil
}

func (c *whoAmI) Show() map[string]any {
	if c.App == nil {
		return map[string]any{"app": nil}
	}
	return map[string]any{"app": c.App.Config().App.Name}
}

func newApp(t *testing.T, env map[string]string) *app.Application {
	t.Helper()
	defaults := map[string]string{
		"APP_NAME":        "KernelTest",
		"APP_ENV":         "testing",
		"APP_DEBUG":       "false",
		"CALLBACK_ROUTES": "testdata/routes.yaml",
	}
	for k, v := range defaults {
		t.Setenv(k, v)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	a := app.New("testdata/missing.env")
	a.Instance("logger", logr.Discard())
	a.Class(callable.NewClass(`Tests\WhoAmI`, newWhoAmI))
	return a
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestApplication_ManifestRoutes_AppBinding(t *testing.T) {
	a := newApp(t, nil)

	rr := get(t, a.Handler(), "/api/whoami")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"data":{"app":"KernelTest"}}`, rr.Body.String())
}

func TestApplication_NullBinding(t *testing.T) {
	a := newApp(t, map[string]string{"CALLBACK_BINDING": "null"})

	rr := get(t, a.Handler(), "/api/whoami")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"app":null}}`, rr.Body.String())
	assert.True(t, a.Resolver().Binding().IsNull())
}

func TestApplication_ClosureBoundToApp(t *testing.T) {
	a := newApp(t, nil)
	a.Router().Get("/this", callable.NewClosure(func(this any, _ ...any) (any, error) {
		return this == any(a), nil
	}))

	rr := get(t, a.Handler(), "/this")
	assert.JSONEq(t, `{"data":true}`, rr.Body.String())
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	a := newApp(t, map[string]string{"METRICS_PATH": "/internal/metrics"})
	h := a.Handler()

	get(t, h, "/api/whoami")
	rr := get(t, h, "/internal/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `callable_resolve_total{kind="instance",outcome="ok"} 1`)
	assert.Contains(t, rr.Body.String(), `callable_instances_total{class="Tests\\WhoAmI"} 1`)
}

func TestApplication_MetricsDisabled(t *testing.T) {
	a := newApp(t, map[string]string{"METRICS_ENABLED": "false"})

	assert.Equal(t, http.StatusNotFound, get(t, a.Handler(), "/metrics").Code)
	assert.False(t, a.Resolved("metrics"), "metrics should stay unbuilt when disabled")
}

func TestApplication_Call(t *testing.T) {
	a := newApp(t, nil)

	out, err := a.Call(`Tests\WhoAmI->show`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"app": "KernelTest"}, out[0])

	_, err = a.Call(`Tests\Nope@show`)
	assert.ErrorIs(t, err, callable.ErrClassNotFound)
}

func TestApplication_Environment(t *testing.T) {
	a := newApp(t, nil)

	assert.Equal(t, "testing", a.Environment())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsLocal())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsDebug())
	assert.Equal(t, app.Version, a.Version())
}

func TestApplication_Serve_StopsOnCancel(t *testing.T) {
	a := newApp(t, map[string]string{"APP_PORT": "0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Serve(ctx))
}

func TestControllerFrom_NonApplicationBinding(t *testing.T) {
	c := app.ControllerFrom(callable.Bind("not an app"))
	assert.Nil(t, c.App)
	assert.Nil(t, app.ControllerFrom(callable.Disabled()).App)
}

func TestApplication_Boot_BrokenManifestPanics(t *testing.T) {
	a := newApp(t, map[string]string{"CALLBACK_ROUTES": "testdata/broken.yaml"})
	assert.Panics(t, a.Boot)
}

func TestApplication_Boot_MissingManifestIgnored(t *testing.T) {
	a := newApp(t, map[string]string{"CALLBACK_ROUTES": "testdata/absent.yaml"})
	assert.NotPanics(t, a.Boot)
}
