// Package internal holds the implementation behind the forgemvc package.
//
// Import "github.com/dmitrymomot/forgemvc" instead; it re-exports the
// public API.
//
// # Dispatch cycle
//
// App.ServeHTTP hands auxiliary endpoints (health, metrics, static files) to
// chi and everything else to the dispatcher:
//
//  1. The path, minus the base path, is resolved against the route table.
//  2. The controller named by the route is built by its factory.
//  3. The action is looked up on the controller.
//  4. When the controller requires authentication for the action and the
//     session is not authenticated, the configured login action runs in
//     its place.
//  5. The action's return value becomes the response body.
//
// A missing route, controller or action ends in a 404 page. Its text is
// the dispatch reason in debug mode and a generic message otherwise, and is
// always HTML-escaped. Any other error is fatal and goes to the
// ErrorHandler. The response is sent exactly once.
//
// # Context
//
// Context embeds context.Context, so it can be passed to any function that
// takes one:
//
//	func show(c forgemvc.Context, params forgemvc.Params) (string, error) {
//	    post, err := repo.Find(c, params.Get("id", ""))
//	    if err != nil {
//	        return "", forgemvc.ErrNotFound("post not found", forgemvc.WithError(err))
//	    }
//	    return c.Render(map[string]any{"post": post}, "")
//	}
//
// # Sessions
//
// The session is loaded on first use, created on first write and saved
// before the first byte of the response. Setting the authenticated flag
// regenerates the session ID. Only the first regeneration in a request has
// an effect.
package internal
