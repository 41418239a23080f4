package images

import "errors"

var (
	ErrInvalidManifest = errors.New("manifest failed validation")
)
