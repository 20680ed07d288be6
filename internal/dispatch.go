package internal

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrymomot/forgemvc/pkg/metrics"
	"github.com/dmitrymomot/forgemvc/pkg/route"
)

// OutcomeKind classifies how a dispatch cycle ended.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeNotFound
	OutcomeUnauthorized
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return metrics.KindOK
	case OutcomeNotFound:
		return metrics.KindNotFound
	case OutcomeUnauthorized:
		return metrics.KindUnauthorized
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the non-fatal result of dispatching one request.
type Outcome struct {
	Body       string
	Reason     string
	Controller string
	Action     string
	Kind       OutcomeKind
}

func notFound(reason string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Reason: reason}
}

// dispatcher maps a path to a controller action.
type dispatcher struct {
	table       *route.Table
	controllers map[string]ControllerFactory
}

// dispatch resolves path and runs the matching action. A returned error is
// fatal; not-found and unauthorized results come back as outcomes.
func (d *dispatcher) dispatch(c *requestContext, path string) (Outcome, error) {
	params, ok := d.table.Resolve(path)
	if !ok {
		return notFound("No route found for " + path), nil
	}
	return d.run(c, params.Controller(), params.Action(), params)
}

// run executes one action: controller lookup, action lookup, auth check,
// invocation, strictly in that order.
func (d *dispatcher) run(c *requestContext, controller, action string, params route.Params) (Outcome, error) {
	factory, ok := d.controllers[controller]
	if !ok || factory == nil {
		return notFound(controllerClass(controller) + " controller is not found."), nil
	}

	c.enter(controller, action)
	ctrl := factory(c)
	if ctrl == nil {
		return notFound(controllerClass(controller) + " controller is not found."), nil
	}

	fn, ok := ctrl.Action(action)
	if !ok {
		return d.mapError(c, c.Forward404())
	}

	if requiresAuth(ctrl, action) && !c.gate.IsAuthenticated() {
		return Outcome{Kind: OutcomeUnauthorized, Controller: controller, Action: action}, nil
	}

	if params == nil {
		params = route.Params{route.ControllerKey: controller, route.ActionKey: action}
	}
	body, err := fn(c, params)
	if err != nil {
		return d.mapError(c, err)
	}
	return Outcome{Kind: OutcomeOK, Body: body, Controller: controller, Action: action}, nil
}

func (d *dispatcher) mapError(c *requestContext, err error) (Outcome, error) {
	out := Outcome{Controller: c.controller, Action: c.action, Reason: err.Error()}
	switch {
	case IsNotFound(err):
		out.Kind = OutcomeNotFound
	case IsUnauthorized(err):
		out.Kind = OutcomeUnauthorized
	default:
		return Outcome{}, err
	}
	return out, nil
}

// controllerClass renders a registry name the way the not-found message
// names it: "post" becomes "PostController".
func controllerClass(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "Controller"
	}
	return string(unicode.ToUpper(r)) + name[size:] + "Controller"
}
