package view

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/forgemvc/pkg/cache"
)

// Defaults.
const (
	DefaultExtension = ".tmpl"
	DefaultMaxDepth  = 8
)

// ContentKey is the layout variable bound to the wrapped output.
const ContentKey = "content"

// Renderer loads and caches templates from a file system.
// It is safe for concurrent use.
type Renderer struct {
	fsys     fs.FS
	md       goldmark.Markdown
	funcs    template.FuncMap
	cache    cache.Cache[*compiled]
	ext      string
	maxDepth int
}

// compiled is a parsed template file.
type compiled struct {
	tmpl     *template.Template
	layout   string
	markdown bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithExtension sets the extension appended to template paths without one.
func WithExtension(ext string) Option {
	return func(r *Renderer) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.ext = ext
	}
}

// WithMaxDepth bounds layout nesting. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithFuncs adds template helpers. Builtins (h, sanitize, markdown) can be overridden.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		maps.Copy(r.funcs, funcs)
	}
}

// New creates a Renderer reading templates from fsys.
func New(fsys fs.FS, opts ...Option) *Renderer {
	md := goldmark.New()
	r := &Renderer{
		fsys:     fsys,
		md:       md,
		funcs:    builtinFuncs(md),
		cache:    cache.NewMemory[*compiled](cache.WithCleanupInterval(0)),
		ext:      DefaultExtension,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope returns a View whose renders see defaults as base variables.
// Template loads run under ctx, and renders stop once ctx is done.
func (r *Renderer) Scope(ctx context.Context, defaults map[string]any) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	return &View{
		ctx:        ctx,
		renderer:   r,
		defaults:   maps.Clone(defaults),
		layoutVars: make(map[string]any),
	}
}

// Render renders name without defaults or a request context.
func (r *Renderer) Render(name string, vars map[string]any, layout string) (string, error) {
	return r.Scope(context.Background(), nil).Render(name, vars, layout)
}

// load returns the parsed template for name, parsing it on first use.
func (r *Renderer) load(ctx context.Context, name string) (*compiled, error) {
	file := r.filename(name)
	return cache.GetOrSet(ctx, r.cache, file, func(context.Context) (*compiled, time.Duration, error) {
		content, err := fs.ReadFile(r.fsys, file)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, file, err)
		}

		meta, body, err := splitFrontmatter(content)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", file, err)
		}

		tmpl, err := template.New(file).Funcs(r.funcs).Parse(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrRenderFailed, file, err)
		}

		return &compiled{
			tmpl:     tmpl,
			layout:   meta.Layout,
			markdown: path.Ext(file) == ".md",
		}, -1, nil
	})
}

func (r *Renderer) filename(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if path.Ext(name) == "" {
		name += r.ext
	}
	return name
}

func (r *Renderer) execute(c *compiled, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if !c.markdown {
		return buf.String(), nil
	}

	var out bytes.Buffer
	if err := r.md.Convert(buf.Bytes(), &out); err != nil {
		return "", fmt.Errorf("%w: markdown: %v", ErrRenderFailed, err)
	}
	return out.String(), nil
}

// View is a render scope: default variables plus layout variables.
// A View belongs to one request and is not safe for concurrent use.
type View struct {
	ctx        context.Context
	renderer   *Renderer
	defaults   map[string]any
	layoutVars map[string]any
}

// SetLayoutVar exposes a variable to layouts rendered by this view.
func (v *View) SetLayoutVar(name string, value any) {
	v.layoutVars[name] = value
}

// Render executes the template at name with defaults overlaid by vars.
// A non-empty layout wraps the output, with the output bound to content.
func (v *View) Render(name string, vars map[string]any, layout string) (string, error) {
	ctx := v.ctx
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, err := v.renderer.load(ctx, name)
	if err != nil {
		return "", err
	}

	data := make(map[string]any, len(v.defaults)+len(vars))
	maps.Copy(data, v.defaults)
	maps.Copy(data, vars)

	out, err := v.renderer.execute(c, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	for depth := 1; layout != ""; depth++ {
		if depth > v.renderer.maxDepth {
			return "", fmt.Errorf("%w: %q exceeds %d levels", ErrLayoutDepth, layout, v.renderer.maxDepth)
		}

		lc, err := v.renderer.load(ctx, layout)
		if err != nil {
			return "", err
		}

		data := make(map[string]any, len(v.defaults)+len(v.layoutVars)+1)
		maps.Copy(data, v.defaults)
		maps.Copy(data, v.layoutVars)
		data[ContentKey] = out

		if out, err = v.renderer.execute(lc, data); err != nil {
			return "", fmt.Errorf("layout %s: %w", layout, err)
		}
		layout = lc.layout
	}

	return out, nil
}
