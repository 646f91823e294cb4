package content

import "errors"

var (
	ErrNotFound           = errors.New("content: file not found")
	ErrInvalidPath        = errors.New("content: invalid path")
	ErrInvalidFrontmatter = errors.New("content: invalid frontmatter")
	ErrRenderFailed       = errors.New("content: render failed")
)
