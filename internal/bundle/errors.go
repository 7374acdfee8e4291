package bundle

import (
	"errors"

	"github.com/cruciblehq/crumake/internal/version"
)

var (
	ErrConfiguration = version.ErrConfiguration
	ErrFilesystem    = errors.New("file system operation failed")
	ErrBundleFailed  = errors.New("bundle failed")
	ErrValidation    = errors.New("validation failed")
	ErrMissingInput  = errors.New("missing bundle input")
)
