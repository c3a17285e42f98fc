package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-callable/framework/callable"
	"github.com/km-arc/go-callable/framework/container"
	"github.com/km-arc/go-callable/framework/metrics"
)

type report struct{}

func (report) Daily() string { return "daily" }

func newCollector(t *testing.T) (*metrics.Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)
	return c, reg
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err, "registering twice on one registry should fail")
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, metrics.OutcomeOK},
		{"class", callable.ErrClassNotFound, metrics.OutcomeClassNotFound},
		{"method", callable.ErrMethodNotFound, metrics.OutcomeMethodNotFound},
		{"instantiable", callable.ErrNotInstantiable, metrics.OutcomeNotInstantiable},
		{"resolvable", callable.ErrNotResolvable, metrics.OutcomeNotResolvable},
		{"other", errors.New("boom"), metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.Outcome(tt.err))
		})
	}
}

func TestCollector_ObservesResolver(t *testing.T) {
	col, reg := newCollector(t)

	c := container.New()
	c.Register(callable.NewClass(`App\Report`, func(callable.Binding) (report, error) { return report{}, nil }))

	r := callable.Default(c)
	r.SetObserver(col)

	_, err := r.Resolve(`App\Report@daily`)
	require.NoError(t, err)
	_, err = r.Resolve(`App\Report@daily`)
	require.NoError(t, err)
	_, err = r.Resolve(`App\Missing@daily`)
	require.Error(t, err)
	_, err = r.Resolve(42)
	require.Error(t, err)

	expected := `
# HELP callable_instances_total Number of class instances constructed during resolution.
# TYPE callable_instances_total counter
callable_instances_total{class="App\\Report"} 2
# HELP callable_resolve_total Number of callback resolutions by result kind and outcome.
# TYPE callable_resolve_total counter
callable_resolve_total{kind="instance",outcome="ok"} 2
callable_resolve_total{kind="native",outcome="not_resolvable"} 1
callable_resolve_total{kind="unresolved",outcome="class_not_found"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"callable_resolve_total", "callable_instances_total")
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "callable_resolve_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "one histogram series per kind")
}

func TestHandler_ServesMetrics(t *testing.T) {
	col, reg := newCollector(t)
	col.ObserveResolve(callable.KindClosure, nil, time.Millisecond)

	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, string(body), `callable_resolve_total{kind="closure",outcome="ok"} 1`)
}
