package routing

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-callable/framework/validation"
)

// Manifest is a YAML route table:
//
//	prefix: /api
//	routes:
//	  - method: GET
//	    path: /users/{id}
//	    handler: App\Http\UserController@show
//	  - method: GET
//	    path: /health
//	    handler: App\Support\Health::check
type Manifest struct {
	Prefix string          `yaml:"prefix,omitempty"`
	Routes []ManifestRoute `yaml:"routes"`
}

// ManifestRoute binds one method and path to a callback spec string.
type ManifestRoute struct {
	Method  string `yaml:"method"`
	Path    string `yaml:"path"`
	Handler string `yaml:"handler"`
}

var routeRules = validation.Rules{
	"method":  "required|in:" + strings.Join(Methods, ",") + ",ANY",
	"path":    "required|starts_with:/",
	"handler": "required|callback",
}

// ParseManifest decodes, normalises and validates a manifest payload.
func ParseManifest(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("routing: manifest is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("routing: decode manifest: %w", err)
	}
	m = m.normalized()
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(file string) (Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Manifest{}, fmt.Errorf("routing: read %s: %w", file, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("routing: %s: %w", file, err)
	}
	return m, nil
}

// Validate checks every route. The error names the first offending entry.
func (m Manifest) Validate() error {
	if m.Prefix != "" && !strings.HasPrefix(m.Prefix, "/") {
		return fmt.Errorf("routing: prefix %q must start with /", m.Prefix)
	}
	for i, r := range m.Routes {
		v := validation.Make(map[string]string{
			"method":  r.Method,
			"path":    r.Path,
			"handler": r.Handler,
		}, routeRules)
		if err := v.Validate(); err != nil {
			return fmt.Errorf("routing: route %d (%s %s): %w", i+1, r.Method, r.Path, err)
		}
	}
	return nil
}

func (m Manifest) normalized() Manifest {
	out := Manifest{Prefix: strings.TrimRight(strings.TrimSpace(m.Prefix), "/")}
	for _, r := range m.Routes {
		out.Routes = append(out.Routes, ManifestRoute{
			Method:  strings.ToUpper(strings.TrimSpace(r.Method)),
			Path:    strings.TrimSpace(r.Path),
			Handler: strings.TrimSpace(r.Handler),
		})
	}
	return out
}

// Apply registers every route on r, under Prefix when set.
func (m Manifest) Apply(r *Router) {
	for _, route := range m.Routes {
		p := route.Path
		if m.Prefix != "" {
			p = path.Join(m.Prefix, route.Path)
		}
		r.Handle(route.Method, p, route.Handler)
	}
}
