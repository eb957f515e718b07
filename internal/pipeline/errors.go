package pipeline

import "github.com/pkg/errors"

var (
	// ErrNoInput is returned when no input image was selected.
	ErrNoInput = errors.New("no input image selected")

	// ErrEmptyImage is returned for images with zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")
)
