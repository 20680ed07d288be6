// Package view renders text templates from an fs.FS and wraps them in
// layouts.
//
// Templates use text/template syntax and are NOT auto-escaped. Untrusted
// values must go through the h helper:
//
//	<h1>{{h .post.Title}}</h1>
//
// A template is addressed by its path without extension ("post/show"
// resolves to "post/show.tmpl"). Files ending in .md are executed first and
// then converted from markdown to HTML.
//
// Layouts are ordinary templates that receive the inner output as content:
//
//	<html><body>{{.content}}</body></html>
//
// A layout may name its own outer layout in YAML frontmatter:
//
//	---
//	layout: base
//	---
//	<main>{{.content}}</main>
//
// Nesting stops at the configured maximum depth with ErrLayoutDepth.
//
// Usage:
//
//	r := view.New(views)
//	v := r.Scope(req.Context(), map[string]any{"request": req})
//	v.SetLayoutVar("title", "Posts")
//	html, err := v.Render("post/index", map[string]any{"posts": posts}, "layout")
package view
