package bundle

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Bundles made when none are requested, in order.
var defaultBundles = []string{
	"validate-gofmt",
	"binary",
	"test-unit",
	"test-integration",
	"dynbinary",
	"cover",
	"cross",
	"tgz",
}

// Returns the default bundle list.
func Defaults() []string {
	return slices.Clone(defaultBundles)
}

// Maps bundle names to steps.
type Registry map[string]Step

// Returns a registry holding every built-in bundle.
func DefaultRegistry() Registry {
	return Registry{
		"validate-gofmt":   StepFunc(validateGofmt),
		"binary":           binaryStep{static: true},
		"dynbinary":        binaryStep{static: false},
		"test-unit":        testStep{integration: false},
		"test-integration": testStep{integration: true},
		"cover":            StepFunc(cover),
		"cross":            StepFunc(cross),
		"tgz":              StepFunc(tgz),
	}
}

// Returns the registered bundle names, sorted.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Returns an error matching [ErrConfiguration] naming the first bundle that
// is not registered.
func (r Registry) Check(names []string) error {
	for _, name := range names {
		if _, ok := r[name]; !ok {
			return fmt.Errorf("%w: unknown bundle %q (available: %s)", ErrConfiguration, name, strings.Join(r.Names(), ", "))
		}
	}
	return nil
}
