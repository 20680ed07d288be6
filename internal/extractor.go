package internal

import (
	"strings"

	"github.com/dmitrymomot/forgemvc/pkg/route"
)

// CSRF token locations checked by Context.CheckCSRFToken.
const (
	CSRFFormField = "_csrf_token"
	CSRFHeader    = "X-CSRF-Token"
)

var csrfTokenExtractor = NewExtractor(FromForm(CSRFFormField), FromHeader(CSRFHeader))

// ExtractorSource reads one value from the request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries sources in order and returns the first non-empty value.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Request().Header(name))
	}
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Request().Get(name, ""))
	}
}

// FromForm reads a field of the request body.
func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Request().Post(name, ""))
	}
}

// FromParams reads a resolved route parameter.
func FromParams(params route.Params, name string) ExtractorSource {
	return func(Context) (string, bool) {
		return nonEmpty(params.Get(name, ""))
	}
}

// FromSession reads a string session value.
func FromSession(key string) ExtractorSource {
	return func(c Context) (string, bool) {
		s, _ := c.Session().Get(key, "").(string)
		return nonEmpty(s)
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Request().Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(auth[7:])
	}
}
