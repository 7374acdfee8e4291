package runtime

import "errors"

var (
	ErrRuntime        = errors.New("runtime error")
	ErrCommandFailed  = errors.New("command failed")
	ErrNotFound       = errors.New("executable not found")
	ErrEmptyCommand   = errors.New("empty command")
	ErrEmptyArchive   = errors.New("archive contains no image")
	ErrMultipleImages = errors.New("archive contains more than one image")
)
