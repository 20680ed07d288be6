package view

import "errors"

var (
	// ErrTemplateNotFound indicates the template file does not exist.
	ErrTemplateNotFound = errors.New("view: template not found")

	// ErrRenderFailed indicates parsing or execution failed.
	ErrRenderFailed = errors.New("view: render failed")

	// ErrInvalidFrontmatter indicates malformed YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("view: invalid frontmatter")

	// ErrLayoutDepth indicates layouts nest deeper than allowed.
	ErrLayoutDepth = errors.New("view: layout nesting too deep")
)
