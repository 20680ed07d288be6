package internal

import (
	"slices"

	"github.com/dmitrymomot/forgemvc/pkg/route"
)

// ActionFunc handles one action. The returned string becomes the response
// body. Returning ErrNotFound or ErrUnauthorized selects the matching
// dispatch outcome; any other error is fatal.
type ActionFunc func(c Context, params route.Params) (string, error)

// Controller exposes actions by name.
type Controller interface {
	Action(name string) (ActionFunc, bool)
}

// ControllerFactory builds a controller for one request.
type ControllerFactory func(c Context) Controller

// Actions is a Controller backed by a map.
type Actions map[string]ActionFunc

func (a Actions) Action(name string) (ActionFunc, bool) {
	fn, ok := a[name]
	return fn, ok && fn != nil
}

// AuthPolicy declares which actions of a controller require an
// authenticated session.
type AuthPolicy struct {
	actions []string
	all     bool
}

// RequireAll protects every action.
func RequireAll() AuthPolicy {
	return AuthPolicy{all: true}
}

// RequireActions protects the named actions only.
func RequireActions(names ...string) AuthPolicy {
	return AuthPolicy{actions: slices.Clone(names)}
}

// Requires reports whether action needs authentication.
func (p AuthPolicy) Requires(action string) bool {
	return p.all || slices.Contains(p.actions, action)
}

// AuthRequirer is implemented by controllers with protected actions.
// Controllers that do not implement it require no authentication.
type AuthRequirer interface {
	AuthPolicy() AuthPolicy
}

type protected struct {
	Controller
	policy AuthPolicy
}

func (p protected) AuthPolicy() AuthPolicy { return p.policy }

// Protect attaches an auth policy to a controller.
func Protect(c Controller, policy AuthPolicy) Controller {
	return protected{Controller: c, policy: policy}
}

func requiresAuth(c Controller, action string) bool {
	ar, ok := c.(AuthRequirer)
	return ok && ar.AuthPolicy().Requires(action)
}
