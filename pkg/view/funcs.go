package view

import (
	"bytes"
	"html"
	"sync"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	safePolicy *bluemonday.Policy
	policyOnce sync.Once
)

// Escape HTML-escapes s, quotes included.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Sanitize keeps basic formatting tags and strips everything executable.
func Sanitize(s string) string {
	policyOnce.Do(func() {
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
	return safePolicy.Sanitize(s)
}

func builtinFuncs(md goldmark.Markdown) template.FuncMap {
	return template.FuncMap{
		"h":        Escape,
		"sanitize": Sanitize,
		"markdown": func(s string) (string, error) {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		},
	}
}
