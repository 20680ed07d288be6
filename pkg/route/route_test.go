package route_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/route"
)

func def(pattern, controller, action string) route.Definition {
	return route.Definition{
		Pattern: pattern,
		Params:  route.Params{"controller": controller, "action": action},
	}
}

func TestResolve_DynamicSegment(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{def("/posts/:id", "post", "show")})

	params, ok := table.Resolve("/posts/42")
	require.True(t, ok)
	require.Equal(t, route.Params{"controller": "post", "action": "show", "id": "42"}, params)
}

func TestResolve_DeclarationOrderWins(t *testing.T) {
	t.Parallel()

	t.Run("dynamic first", func(t *testing.T) {
		t.Parallel()
		table := route.MustCompile([]route.Definition{
			def("/posts/:id", "post", "show"),
			def("/posts/new", "post", "new"),
		})

		params, ok := table.Resolve("/posts/new")
		require.True(t, ok)
		require.Equal(t, "show", params.Action())
		require.Equal(t, "new", params["id"])
	})

	t.Run("literal first", func(t *testing.T) {
		t.Parallel()
		table := route.MustCompile([]route.Definition{
			def("/posts/new", "post", "new"),
			def("/posts/:id", "post", "show"),
		})

		params, ok := table.Resolve("/posts/new")
		require.True(t, ok)
		require.Equal(t, "new", params.Action())
		require.NotContains(t, params, "id")

		params, ok = table.Resolve("/posts/7")
		require.True(t, ok)
		require.Equal(t, "show", params.Action())
		require.Equal(t, "7", params["id"])
	})
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()

	empty := route.MustCompile(nil)
	for _, path := range []string{"", "/", "/posts/1", "anything"} {
		params, ok := empty.Resolve(path)
		require.False(t, ok, path)
		require.Nil(t, params)
	}

	table := route.MustCompile([]route.Definition{def("/posts/:id", "post", "show")})
	_, ok := table.Resolve("/posts/1/edit")
	require.False(t, ok, "match must be anchored to the whole path")
	_, ok = table.Resolve("/posts/")
	require.False(t, ok, "dynamic segment must not be empty")

	var nilTable *route.Table
	_, ok = nilTable.Resolve("/")
	require.False(t, ok)
}

func TestResolve_NormalizesLeadingSlash(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{def("/account", "account", "index")})

	params, ok := table.Resolve("account")
	require.True(t, ok)
	require.Equal(t, "account", params.Controller())
}

func TestResolve_Root(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{def("/", "status", "index")})

	_, ok := table.Resolve("/")
	require.True(t, ok)
	_, ok = table.Resolve("")
	require.True(t, ok)
	_, ok = table.Resolve("/status")
	require.False(t, ok)
}

func TestResolve_CaptureOverridesStaticParam(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{def("/run/:action", "job", "index")})

	params, ok := table.Resolve("/run/cleanup")
	require.True(t, ok)
	require.Equal(t, "cleanup", params.Action())
	require.Equal(t, "job", params.Controller())
}

func TestResolve_ReturnsFreshParams(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{def("/posts/:id", "post", "show")})

	first, _ := table.Resolve("/posts/1")
	first["controller"] = "mutated"

	second, ok := table.Resolve("/posts/2")
	require.True(t, ok)
	require.Equal(t, "post", second.Controller())
}

func TestResolve_LiteralSegmentsAreEscaped(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{
		def("/v1.0/feed", "feed", "index"),
		def("/a+b/:id", "math", "show"),
	})

	_, ok := table.Resolve("/v1.0/feed")
	require.True(t, ok)
	_, ok = table.Resolve("/v1x0/feed")
	require.False(t, ok)

	params, ok := table.Resolve("/a+b/3")
	require.True(t, ok)
	require.Equal(t, "3", params["id"])
	_, ok = table.Resolve("/aab/3")
	require.False(t, ok)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  route.Definition
		want error
	}{
		{"duplicate dynamic name", def("/u/:id/p/:id", "u", "p"), route.ErrDuplicateParam},
		{"empty dynamic name", def("/u/:", "u", "p"), route.ErrInvalidPattern},
		{"invalid dynamic name", def("/u/:user-name", "u", "p"), route.ErrInvalidPattern},
		{"missing controller", route.Definition{Pattern: "/", Params: route.Params{"action": "index"}}, route.ErrMissingTarget},
		{"missing action", route.Definition{Pattern: "/", Params: route.Params{"controller": "status"}}, route.ErrMissingTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := route.Compile([]route.Definition{tt.def})
			require.ErrorIs(t, err, tt.want)
		})
	}

	require.Panics(t, func() {
		route.MustCompile([]route.Definition{def("/u/:id/:id", "u", "p")})
	})
}

func TestTable_Patterns(t *testing.T) {
	t.Parallel()

	table := route.MustCompile([]route.Definition{
		def("/", "status", "index"),
		def("/account", "account", "index"),
	})

	require.Equal(t, 2, table.Len())
	require.Equal(t, []string{"/", "/account"}, table.Patterns())
}
