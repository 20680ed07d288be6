package view

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// RenderComponent renders a templ component into a string so it can be
// returned as an action body.
func RenderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
