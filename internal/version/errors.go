package version

import "errors"

var (
	ErrConfiguration = errors.New("missing required configuration")
)
