// Package forgemvc is a small MVC dispatch framework.
//
// Requests are resolved against an ordered route table to a controller and
// action. The action returns the response body as a string, or an error:
// ErrNotFound renders the 404 page, ErrUnauthorized runs the login action,
// and anything else is fatal and reaches the ErrorHandler.
//
// # Quick start
//
//	app := forgemvc.New(
//	    forgemvc.WithRoutes(
//	        forgemvc.Route{Pattern: "/", Params: forgemvc.Params{"controller": "post", "action": "index"}},
//	        forgemvc.Route{Pattern: "/posts/:id", Params: forgemvc.Params{"controller": "post", "action": "show"}},
//	    ),
//	    forgemvc.WithController("post", func(c forgemvc.Context) forgemvc.Controller {
//	        return forgemvc.Actions{
//	            "index": func(c forgemvc.Context, _ forgemvc.Params) (string, error) {
//	                return c.Render(nil, "")
//	            },
//	            "show": func(c forgemvc.Context, p forgemvc.Params) (string, error) {
//	                return "post " + p.Get("id", ""), nil
//	            },
//	        }
//	    }),
//	    forgemvc.WithViews(views),
//	)
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Authentication
//
// Wrap a controller with Protect to require an authenticated session. An
// unauthenticated request runs the action set by WithLoginAction instead;
// the login action marks the session with Gate.SetAuthenticated, which also
// regenerates the session ID.
//
// # Views
//
// Context.Render looks up "<controller>/<template>" in the view file system
// and wraps the result in DefaultLayout. Layouts may name their own layout
// in YAML front matter. Templates get the h, sanitize and markdown helpers.
//
// # Packages
//
//   - pkg/route: route table and YAML loader
//   - pkg/session: session records, stores and CSRF tokens
//   - pkg/view: template renderer
//   - pkg/db: database connections and repositories
//   - pkg/cache, pkg/redis: caching backends
//   - pkg/logger, pkg/metrics, pkg/health: observability
//   - middlewares: net/http middleware
package forgemvc
