package container_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/km-arc/go-callable/framework/callable"
	"github.com/km-arc/go-callable/framework/container"
)

type widget struct {
	binding callable.Binding
	tag     string
}

func (w *widget) Ping() string { return "pong" }

func newWidget(b callable.Binding) (*widget, error) { return &widget{binding: b}, nil }

// ── Services ──────────────────────────────────────────────────────────────────

func TestContainer_Bind_Transient(t *testing.T) {
	c := container.New()
	n := 0
	c.Bind("counter", func(*container.Container) (any, error) { n++; return n, nil })

	a := container.MustResolve[int](c, "counter")
	b := container.MustResolve[int](c, "counter")
	if a == b {
		t.Errorf("Bind should build a new value on every Make, got %d twice", a)
	}
}

func TestContainer_Singleton(t *testing.T) {
	c := container.New()
	n := 0
	c.Singleton("counter", func(*container.Container) (any, error) { n++; return n, nil })

	for i := 0; i < 3; i++ {
		if got := container.MustResolve[int](c, "counter"); got != 1 {
			t.Fatalf("Singleton: got %d, want 1", got)
		}
	}
	if !c.Resolved("counter") {
		t.Error("Resolved() should be true after the first Make")
	}
}

func TestContainer_Instance_And_Alias(t *testing.T) {
	c := container.New()
	c.Instance("config", "cfg")
	c.Alias("config", "configuration")

	if got := container.MustResolve[string](c, "configuration"); got != "cfg" {
		t.Errorf("alias: got %q, want cfg", got)
	}
	if container.MustResolve[*container.Container](c, "container") != c {
		t.Error("container should be bound to itself")
	}
}

func TestContainer_Alias_Self_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("aliasing to itself should panic")
		}
	}()
	container.New().Alias("x", "x")
}

func TestContainer_Make_Errors(t *testing.T) {
	c := container.New()

	if _, err := c.Make("missing"); !errors.Is(err, container.ErrNotBound) {
		t.Errorf("missing: got %v, want ErrNotBound", err)
	}

	boom := errors.New("boom")
	c.Bind("broken", func(*container.Container) (any, error) { return nil, boom })
	if _, err := c.Make("broken"); !errors.Is(err, boom) {
		t.Errorf("broken: got %v, want wrapped boom", err)
	}

	c.Instance("name", "x")
	if _, err := container.Resolve[int](c, "name"); err == nil {
		t.Error("Resolve with the wrong type should fail")
	}
}

func TestContainer_Forget_Flush(t *testing.T) {
	c := container.New()
	c.Instance("a", 1)
	c.Forget("a")
	if c.Bound("a") {
		t.Error("Forget should remove the instance")
	}

	c.Instance("b", 2)
	c.Register(callable.NewClass("W", newWidget))
	c.Flush()
	if c.Bound("b") || len(c.Classes()) != 0 {
		t.Error("Flush should clear services and classes")
	}
}

func TestContainer_Bindings_Sorted(t *testing.T) {
	c := container.New()
	c.Instance("zeta", 1)
	c.Bind("alpha", func(*container.Container) (any, error) { return 1, nil })

	want := []string{"alpha", "container", "zeta"}
	if got := c.Bindings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Bindings(): got %v, want %v", got, want)
	}
}

// ── Classes ───────────────────────────────────────────────────────────────────

func TestContainer_LookupClass(t *testing.T) {
	c := container.New()
	c.Register(callable.NewClass(`\App\Widget`, newWidget))

	tests := []struct {
		name string
		want bool
	}{
		{`App\Widget`, true},
		{`\App\Widget`, true},
		{`app\widget`, true},
		{`App\Gadget`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.LookupClass(tt.name)
			if ok != tt.want {
				t.Errorf("LookupClass(%q): got %v, want %v", tt.name, ok, tt.want)
			}
		})
	}

	if got := c.Classes(); !reflect.DeepEqual(got, []string{`App\Widget`}) {
		t.Errorf("Classes(): got %v", got)
	}
}

func TestContainer_ClassAlias(t *testing.T) {
	c := container.New()
	c.Register(callable.NewClass(`App\Widget`, newWidget))
	c.ClassAlias(`App\Widget`, `Widget`)

	class, ok := c.LookupClass("widget")
	if !ok || class.Name() != `App\Widget` {
		t.Fatalf("alias lookup: got %v, %v", class, ok)
	}
}

func TestContainer_Extend_And_AfterConstructing(t *testing.T) {
	c := container.New()
	c.Register(callable.NewClass(`App\Widget`, newWidget))
	c.Extend(`App\Widget`, func(instance any, _ *container.Container) any {
		instance.(*widget).tag = "extended"
		return instance
	})

	var seen []string
	c.AfterConstructing(func(class string, instance any) {
		seen = append(seen, class+":"+instance.(*widget).tag)
	})

	r := callable.Default(c)
	for i := 0; i < 2; i++ {
		got, err := r.Resolve(`App\Widget@ping`)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if tag := got.(callable.MethodPair).Instance.(*widget).tag; tag != "extended" {
			t.Errorf("extender not applied: tag %q", tag)
		}
	}

	want := []string{`App\Widget:extended`, `App\Widget:extended`}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("AfterConstructing: got %v, want %v", seen, want)
	}
}

func TestContainer_Resolver_PassesBinding(t *testing.T) {
	c := container.New()
	c.Register(callable.NewClass(`App\Widget`, newWidget))

	r := callable.NewResolver(c, callable.Bind(c), true)
	got, err := r.Resolve(`App\Widget->ping`)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	w := got.(callable.MethodPair).Instance.(*widget)
	if w.binding.Value() != c {
		t.Error("constructor should receive the resolver binding")
	}
	out, err := got.Call()
	if err != nil || out[0] != "pong" {
		t.Errorf("Call(): got %v, %v", out, err)
	}
}

func TestContainer_ClassOf_StaticThroughInstance(t *testing.T) {
	c := container.New()
	c.Register(callable.NewClass(`App\Widget`, newWidget).
		Static("count", func() int { return 3 }))

	class, ok := c.ClassOf(&widget{})
	if !ok || class.Name() != `App\Widget` {
		t.Fatalf("ClassOf: got %v, %v", class, ok)
	}
	if _, ok := c.ClassOf(widget{}); ok {
		t.Error("ClassOf should match the registered pointer type only")
	}
	if _, ok := c.ClassOf(nil); ok {
		t.Error("ClassOf(nil) should not match")
	}

	out, err := callable.Default(c).Call([]any{&widget{}, "count"})
	if err != nil || out[0] != 3 {
		t.Errorf("Call(): got %v, %v", out, err)
	}
}
