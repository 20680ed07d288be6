package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/middlewares"
	"github.com/dmitrymomot/forgemvc/pkg/cache"
	"github.com/dmitrymomot/forgemvc/pkg/route"
	"github.com/dmitrymomot/forgemvc/pkg/session"
)

func rt(pattern, controller, action string) route.Definition {
	return route.Definition{
		Pattern: pattern,
		Params:  route.Params{route.ControllerKey: controller, route.ActionKey: action},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	a, err := NewE(opts...)
	require.NoError(t, err)
	return a
}

func do(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == defaultSessionCookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", defaultSessionCookieName)
	return nil
}

func postController(Context) Controller {
	return Actions{
		"show": func(c Context, params route.Params) (string, error) {
			return "post " + params.Get("id", "?"), nil
		},
		"missing": func(c Context, params route.Params) (string, error) {
			return "", ErrNotFound("Post <" + params.Get("id", "") + "> missing")
		},
		"forbidden": func(Context, route.Params) (string, error) {
			return "", ErrForbidden("not yours")
		},
		"broken": func(Context, route.Params) (string, error) {
			return "", errors.New("db <down>")
		},
		"panic": func(Context, route.Params) (string, error) {
			panic("boom <secret>")
		},
		"back": func(c Context, _ route.Params) (string, error) {
			return c.Redirect("/posts")
		},
		"half": func(c Context, params route.Params) (string, error) {
			c.Response().SetHeader("X-Draft", "1")
			if _, err := c.Redirect("/posts"); err != nil {
				return "", err
			}
			if params.Get("id", "") == "gone" {
				return "", ErrNotFound("gone")
			}
			return "", errors.New("commit failed")
		},
		"early": func(c Context, _ route.Params) (string, error) {
			c.Response().SetContent("early")
			if err := c.Response().Send(); err != nil {
				return "", err
			}
			return "late", nil
		},
	}
}

func TestApp_DispatchesAction(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/posts/:id", "post", "show")),
		WithController("post", postController),
	)

	w := do(a, http.MethodGet, "/posts/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "post 42", w.Body.String())
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "7", w.Header().Get("Content-Length"))
}

func TestApp_NotFound(t *testing.T) {
	t.Parallel()

	routes := WithRoutes(
		rt("/posts/:id", "post", "show"),
		rt("/missing/:id", "post", "missing"),
		rt("/nothing", "post", "nothing"),
		rt("/ghost", "ghost", "index"),
	)

	tests := []struct {
		name   string
		target string
		reason string
	}{
		{"no route", "/%3Cscript%3E", "No route found for /&lt;script&gt;"},
		{"unknown controller", "/ghost", "GhostController controller is not found."},
		{"unknown action", "/nothing", "Forwarded 404 page from post/nothing"},
		{"action not found", "/missing/%3Cb%3E", "Post &lt;&lt;b&gt;&gt; missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prod := newTestApp(t, routes, WithController("post", postController))
			w := do(prod, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusNotFound, w.Code)
			require.Contains(t, w.Body.String(), "Page not found.")
			require.NotContains(t, w.Body.String(), tt.reason)

			debug := newTestApp(t, routes, WithController("post", postController), WithDebug(true))
			w = do(debug, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusNotFound, w.Code)
			require.Contains(t, w.Body.String(), tt.reason)
			require.NotContains(t, w.Body.String(), "<script>")
		})
	}
}

func TestApp_FatalErrors(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(
			rt("/forbidden", "post", "forbidden"),
			rt("/broken", "post", "broken"),
			rt("/panic", "post", "panic"),
		),
		WithController("post", postController),
	)

	w := do(a, http.MethodGet, "/forbidden", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "not yours")

	w = do(a, http.MethodGet, "/broken", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "db")

	w = do(a, http.MethodGet, "/panic", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "boom")
}

func TestApp_ErrorPageDropsActionHeaders(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/half/:id", "post", "half")),
		WithController("post", postController),
	)

	w := do(a, http.MethodGet, "/half/1", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Header().Get("Location"))
	require.Empty(t, w.Header().Get("X-Draft"))

	w = do(a, http.MethodGet, "/half/gone", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Header().Get("Location"))
	require.Empty(t, w.Header().Get("X-Draft"))
}

func TestApp_DebugErrorIsEscaped(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/broken", "post", "broken")),
		WithController("post", postController),
		WithDebug(true),
	)

	w := do(a, http.MethodGet, "/broken", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "db &lt;down&gt;")
}

func TestApp_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var got error
	a := newTestApp(t,
		WithRoutes(rt("/broken", "post", "broken")),
		WithController("post", postController),
		WithErrorHandler(func(c Context, err error) {
			got = err
			c.Response().SetStatusCode(http.StatusServiceUnavailable, "")
			c.Response().SetContent("try later")
		}),
	)

	w := do(a, http.MethodGet, "/broken", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "try later", w.Body.String())
	require.EqualError(t, got, "db <down>")
}

func TestApp_SendsOnce(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/early", "post", "early")),
		WithController("post", postController),
	)

	w := do(a, http.MethodGet, "/early", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "early", w.Body.String())
}

func TestApp_Redirect(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/back", "post", "back")),
		WithController("post", postController),
		WithBasePath("/app"),
	)

	w := do(a, http.MethodGet, "/app/back", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "http://example.com/app/posts", w.Header().Get("Location"))
}

func TestApp_RenderWithLayout(t *testing.T) {
	t.Parallel()

	views := fstest.MapFS{
		"layout.tmpl":    {Data: []byte("<main>{{.content}}</main>")},
		"post/show.tmpl": {Data: []byte("<h1>{{h .title}}</h1>")},
	}
	a := newTestApp(t,
		WithRoutes(rt("/posts/:id", "post", "show")),
		WithController("post", func(Context) Controller {
			return Actions{"show": func(c Context, _ route.Params) (string, error) {
				return c.Render(map[string]any{"title": "<b>Hi</b>"}, "")
			}}
		}),
		WithViews(views),
	)

	w := do(a, http.MethodGet, "/posts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<main><h1>&lt;b&gt;Hi&lt;/b&gt;</h1></main>", w.Body.String())
}

func TestApp_RenderWithoutViewsIsFatal(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/", "home", "index")),
		WithController("home", func(Context) Controller {
			return Actions{"index": func(c Context, _ route.Params) (string, error) {
				return c.Render(nil, "")
			}}
		}),
	)

	w := do(a, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func accountController(Context) Controller {
	return Actions{
		"login": func(c Context, _ route.Params) (string, error) {
			if !c.Request().IsPost() {
				return "please log in", nil
			}
			if err := c.Session().SetAuthenticated(true); err != nil {
				return "", err
			}
			return "welcome", nil
		},
		"logout": func(c Context, _ route.Params) (string, error) {
			return "bye", c.Session().Destroy()
		},
		"demote": func(c Context, _ route.Params) (string, error) {
			return "demoted", c.Session().SetAuthenticated(false)
		},
		"rotate": func(c Context, _ route.Params) (string, error) {
			return "rotated", c.Session().RotateToken()
		},
	}
}

func dashboardController(Context) Controller {
	return Protect(Actions{
		"index": func(c Context, _ route.Params) (string, error) {
			return "secret " + c.Session().Get("cart", "").(string), nil
		},
	}, RequireAll())
}

func cartController(Context) Controller {
	return Actions{
		"add": func(c Context, _ route.Params) (string, error) {
			return "added", c.Session().Set("cart", "3 items")
		},
	}
}

func authApp(t *testing.T, store session.Store, opts ...Option) *App {
	t.Helper()
	base := []Option{
		WithRoutes(
			rt("/login", "account", "login"),
			rt("/logout", "account", "logout"),
			rt("/demote", "account", "demote"),
			rt("/rotate", "account", "rotate"),
			rt("/dashboard", "dashboard", "index"),
			rt("/cart", "cart", "add"),
		),
		WithControllers(map[string]ControllerFactory{
			"account":   accountController,
			"dashboard": dashboardController,
			"cart":      cartController,
		}),
		WithSession(store),
		WithLoginAction("account", "login"),
	}
	return newTestApp(t, append(base, opts...)...)
}

func TestApp_UnauthorizedRunsLoginAction(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	w := do(a, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "please log in", w.Body.String())
	require.Empty(t, w.Result().Cookies())
	require.Zero(t, store.count())
}

func TestApp_LoginRegeneratesSession(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	w := do(a, http.MethodGet, "/cart", nil)
	require.Equal(t, "added", w.Body.String())
	anon := sessionCookie(t, w)

	w = do(a, http.MethodPost, "/login", url.Values{}, anon)
	require.Equal(t, "welcome", w.Body.String())
	authed := sessionCookie(t, w)
	require.NotEqual(t, anon.Value, authed.Value)

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "secret 3 items", w.Body.String())

	w = do(a, http.MethodGet, "/dashboard", nil, anon)
	require.Equal(t, "please log in", w.Body.String())
	require.Equal(t, 1, store.count())
}

func TestApp_LogoutDestroysSession(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	w := do(a, http.MethodPost, "/login", url.Values{})
	authed := sessionCookie(t, w)

	w = do(a, http.MethodGet, "/logout", nil, authed)
	require.Equal(t, "bye", w.Body.String())
	require.Empty(t, sessionCookie(t, w).Value)
	require.Zero(t, store.count())

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "please log in", w.Body.String())
}

func TestApp_RotateTokenKeepsSession(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	w := do(a, http.MethodGet, "/cart", nil)
	w = do(a, http.MethodPost, "/login", url.Values{}, sessionCookie(t, w))
	authed := sessionCookie(t, w)

	w = do(a, http.MethodGet, "/rotate", nil, authed)
	require.Equal(t, "rotated", w.Body.String())
	rotated := sessionCookie(t, w)
	require.NotEqual(t, authed.Value, rotated.Value)
	require.Equal(t, 1, store.count())

	w = do(a, http.MethodGet, "/dashboard", nil, rotated)
	require.Equal(t, "secret 3 items", w.Body.String())

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "please log in", w.Body.String())
	require.Equal(t, 1, store.count())
}

func TestApp_DroppingAuthenticationKeepsToken(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	w := do(a, http.MethodPost, "/login", url.Values{})
	authed := sessionCookie(t, w)

	w = do(a, http.MethodGet, "/demote", nil, authed)
	require.Equal(t, "demoted", w.Body.String())
	require.Empty(t, w.Result().Cookies())

	got, err := store.Get(context.Background(), authed.Value)
	require.NoError(t, err)
	require.False(t, got.IsAuthenticated())

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "please log in", w.Body.String())
}

func TestApp_MemoryStoreLoginLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore(cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })
	a := authApp(t, store)

	w := do(a, http.MethodGet, "/cart", nil)
	anon := sessionCookie(t, w)

	w = do(a, http.MethodPost, "/login", url.Values{}, anon)
	require.Equal(t, "welcome", w.Body.String())
	authed := sessionCookie(t, w)

	_, err := store.Get(ctx, anon.Value)
	require.ErrorIs(t, err, session.ErrNotFound, "login must destroy the anonymous record")

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "secret 3 items", w.Body.String())

	w = do(a, http.MethodGet, "/logout", nil, authed)
	require.Equal(t, "bye", w.Body.String())

	_, err = store.Get(ctx, authed.Value)
	require.ErrorIs(t, err, session.ErrNotFound)

	w = do(a, http.MethodGet, "/dashboard", nil, authed)
	require.Equal(t, "please log in", w.Body.String())
}

func TestApp_StartsStoreOnce(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	a := authApp(t, store)

	for range 3 {
		do(a, http.MethodGet, "/cart", nil)
	}
	require.Equal(t, 1, store.startCount())
}

func TestApp_MissingLoginActionIsFatal(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/dashboard", "dashboard", "index")),
		WithController("dashboard", dashboardController),
		WithSession(newMockStore()),
	)

	w := do(a, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApp_ProtectedLoginActionIsFatal(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/dashboard", "dashboard", "index")),
		WithController("dashboard", dashboardController),
		WithSession(newMockStore()),
		WithLoginAction("dashboard", "index"),
	)

	w := do(a, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApp_WithoutSessionStoreIsUnauthenticated(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/dashboard", "dashboard", "index"), rt("/login", "account", "login")),
		WithControllers(map[string]ControllerFactory{
			"account":   accountController,
			"dashboard": dashboardController,
		}),
		WithLoginAction("account", "login"),
	)

	w := do(a, http.MethodGet, "/dashboard", nil)
	require.Equal(t, "please log in", w.Body.String())

	w = do(a, http.MethodPost, "/login", url.Values{})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApp_CSRFTokens(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/comments/new", "comment", "new"), rt("/comments", "comment", "create")),
		WithController("comment", func(Context) Controller {
			return Actions{
				"new": func(c Context, _ route.Params) (string, error) {
					return c.CSRFToken("comment")
				},
				"create": func(c Context, _ route.Params) (string, error) {
					if !c.CheckCSRFToken("comment") {
						return "rejected", nil
					}
					return "accepted", nil
				},
			}
		}),
		WithSession(newMockStore()),
	)

	w := do(a, http.MethodGet, "/comments/new", nil)
	token := w.Body.String()
	require.NotEmpty(t, token)
	sid := sessionCookie(t, w)

	form := url.Values{CSRFFormField: {token}}
	w = do(a, http.MethodPost, "/comments", form, sid)
	require.Equal(t, "accepted", w.Body.String())

	w = do(a, http.MethodPost, "/comments", form, sid)
	require.Equal(t, "rejected", w.Body.String())

	w = do(a, http.MethodPost, "/comments", url.Values{CSRFFormField: {"forged"}}, sid)
	require.Equal(t, "rejected", w.Body.String())
}

func TestApp_RegenerateIDOncePerRequest(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/", "home", "index")),
		WithController("home", func(Context) Controller {
			return Actions{"index": func(c Context, _ route.Params) (string, error) {
				if err := c.Session().RegenerateID(false); err != nil {
					return "", err
				}
				first := c.Session().ID()
				if err := c.Session().RegenerateID(true); err != nil {
					return "", err
				}
				return first + "|" + c.Session().ID(), nil
			}}
		}),
		WithSession(newMockStore()),
	)

	w := do(a, http.MethodGet, "/", nil)
	ids := strings.Split(w.Body.String(), "|")
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.Equal(t, ids[0], ids[1])
}

func TestApp_AuxiliaryEndpoints(t *testing.T) {
	t.Parallel()

	a := newTestApp(t,
		WithRoutes(rt("/posts/:id", "post", "show")),
		WithController("post", postController),
		WithHealthChecks(),
		WithMetrics("/metrics", nil),
		WithMiddleware(middlewares.RequestID()),
	)

	w := do(a, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, http.MethodGet, "/posts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(a, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `forgemvc_dispatch_total{controller="post",kind="ok"} 1`)
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	assets := fstest.MapFS{
		"public/app.css":     {Data: []byte("body{}")},
		"public/img/a.txt":   {Data: []byte("a")},
		"public/img/b.txt":   {Data: []byte("b")},
		"public/robots.txt":  {Data: []byte("User-agent: *")},
		"private/secret.txt": {Data: []byte("nope")},
	}
	a := newTestApp(t,
		WithRoutes(rt("/", "home", "index")),
		WithStaticFiles("/static/", assets, "public"),
	)

	w := do(a, http.MethodGet, "/static/app.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = do(a, http.MethodGet, "/static/img/", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewE_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewE(WithRoutes(route.Definition{Pattern: "/x"}))
	require.ErrorIs(t, err, route.ErrMissingTarget)

	_, err = NewE(WithController("", nil))
	require.Error(t, err)

	_, err = NewE(WithRoutesFile(fstest.MapFS{}, "routes.yaml"))
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = NewE(WithConfigure(func(*App) error { return boom }))
	require.ErrorIs(t, err, boom)

	require.Panics(t, func() { New(WithController("", nil)) })
}

func TestNewE_RoutesFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"routes.yaml": {Data: []byte("/posts/:id:\n  controller: post\n  action: show\n")}}
	a := newTestApp(t,
		WithRoutesFile(fsys, "routes.yaml"),
		WithController("post", postController),
	)

	require.Equal(t, 1, a.Routes().Len())
	w := do(a, http.MethodGet, "/posts/9", nil)
	require.Equal(t, "post 9", w.Body.String())
}
