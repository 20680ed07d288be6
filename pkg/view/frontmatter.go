package view

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// frontmatter is the optional YAML header of a template file.
type frontmatter struct {
	Layout string `yaml:"layout"`
}

// splitFrontmatter separates a leading YAML block from the body. The block
// opens and closes with a line that is exactly "---". Content whose first
// line is not a delimiter is all body.
func splitFrontmatter(content []byte) (frontmatter, string, error) {
	var meta frontmatter

	first, rest, _ := cutLine(content)
	if !bytes.Equal(first, delimiter) {
		return meta, string(content), nil
	}

	header := rest
	for offset := 0; ; {
		line, next, ok := cutLine(rest[offset:])
		if bytes.Equal(line, delimiter) {
			header = rest[:offset]
			rest = next
			break
		}
		if !ok {
			return meta, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		offset = len(rest) - len(next)
	}

	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &meta); err != nil {
			return meta, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return meta, string(rest), nil
}

// cutLine splits b after its first line. The line is returned without its
// line ending; ok is false when b has no newline.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	line, rest, ok = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, ok
}
