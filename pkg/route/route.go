package route

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// Reserved parameter keys.
const (
	ControllerKey = "controller"
	ActionKey     = "action"
)

// marker prefixes a dynamic segment.
const marker = ':'

// namePattern restricts dynamic segment names to identifiers accepted by
// regexp named groups.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Params maps parameter names to values.
type Params map[string]string

// Controller returns the controller name.
func (p Params) Controller() string { return p[ControllerKey] }

// Action returns the action name.
func (p Params) Action() string { return p[ActionKey] }

// Get returns the value for name or def when it is missing.
func (p Params) Get(name, def string) string {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Definition binds a path pattern to a static parameter set.
type Definition struct {
	Params  Params
	Pattern string
}

// compiled is one immutable matcher.
type compiled struct {
	re      *regexp.Regexp
	params  Params
	pattern string
	names   []string
}

// Table is an ordered set of compiled routes.
// It is safe for concurrent use once compiled.
type Table struct {
	routes []compiled
}

// Compile builds a Table from definitions, preserving their order.
func Compile(defs []Definition) (*Table, error) {
	t := &Table{routes: make([]compiled, 0, len(defs))}
	for _, def := range defs {
		c, err := compile(def)
		if err != nil {
			return nil, err
		}
		t.routes = append(t.routes, c)
	}
	return t, nil
}

// MustCompile is like Compile but panics on error.
// Use for route tables declared in code.
func MustCompile(defs []Definition) *Table {
	t, err := Compile(defs)
	if err != nil {
		panic(err)
	}
	return t
}

func compile(def Definition) (compiled, error) {
	if def.Params.Controller() == "" || def.Params.Action() == "" {
		return compiled{}, fmt.Errorf("%w: %q", ErrMissingTarget, def.Pattern)
	}

	segments := strings.Split(strings.TrimLeft(def.Pattern, "/"), "/")
	parts := make([]string, 0, len(segments))
	seen := make(map[string]bool)
	var names []string

	for _, seg := range segments {
		if seg == "" || seg[0] != marker {
			parts = append(parts, regexp.QuoteMeta(seg))
			continue
		}
		name := seg[1:]
		if !namePattern.MatchString(name) {
			return compiled{}, fmt.Errorf("%w: segment %q in %q", ErrInvalidPattern, seg, def.Pattern)
		}
		if seen[name] {
			return compiled{}, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, def.Pattern)
		}
		seen[name] = true
		names = append(names, name)
		parts = append(parts, "(?P<"+name+">[^/]+)")
	}

	expr := "^/" + strings.Join(parts, "/") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return compiled{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, def.Pattern, err)
	}

	return compiled{
		re:      re,
		params:  maps.Clone(def.Params),
		pattern: def.Pattern,
		names:   names,
	}, nil
}

// Resolve matches path against the table in declaration order.
// The returned Params is a fresh map: the route's static parameters merged
// with the captured segments, captures winning on key collisions.
// Reports false when no route matches.
func (t *Table) Resolve(path string) (Params, bool) {
	if t == nil {
		return nil, false
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for _, r := range t.routes {
		m := r.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(Params, len(r.params)+len(r.names))
		maps.Copy(params, r.params)
		for i, name := range r.re.SubexpNames() {
			if name != "" {
				params[name] = m[i]
			}
		}
		return params, true
	}

	return nil, false
}

// Len returns the number of compiled routes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Patterns returns the source patterns in declaration order.
func (t *Table) Patterns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.pattern
	}
	return out
}
