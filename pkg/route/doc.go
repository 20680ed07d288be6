// Package route compiles declarative path patterns into matchers and resolves
// request paths against them.
//
// A pattern is a slash-separated list of segments. Segments starting with a
// colon are dynamic and capture one path segment under the given name; all
// other segments match verbatim:
//
//	table, err := route.Compile([]route.Definition{
//		{Pattern: "/", Params: route.Params{"controller": "status", "action": "index"}},
//		{Pattern: "/user/:user_name", Params: route.Params{"controller": "status", "action": "user"}},
//		{Pattern: "/user/:user_name/status/:id", Params: route.Params{"controller": "status", "action": "show"}},
//	})
//
//	params, ok := table.Resolve("/user/alice/status/42")
//	// params: controller=status action=show user_name=alice id=42
//
// # Ordering
//
// Definitions are matched in declaration order and the first match wins. Go
// maps do not preserve order, so definitions are passed as a slice. Use
// [LoadYAML] to read them from a YAML mapping; key order in the document is
// kept.
//
// # Literal segments
//
// Literal segments are quoted before they are embedded in the compiled
// expression, so "/v1.0/feed" matches only "/v1.0/feed" and never "/v1x0/feed".
//
// # Errors
//
// [Compile] rejects patterns that reuse a dynamic name ([ErrDuplicateParam]),
// dynamic segments without a valid name ([ErrInvalidPattern]) and parameter
// sets without a controller or action ([ErrMissingTarget]). Resolving a path
// never fails: no match is reported through the boolean result and the caller
// picks the fallback.
package route
