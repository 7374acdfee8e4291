package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Fails when any Go source file is not formatted with "gofmt -s".
//
// Vendored code, testdata, the bundles tree, and directories the go tool
// ignores ("_" or "." prefixed) are skipped.
func validateGofmt(ctx context.Context, env *Env) error {
	out, err := env.output(ctx, "gofmt", "-s", "-l", ".")
	if err != nil {
		return err
	}

	var bad []string
	for _, file := range strings.Fields(out) {
		if ignoredSource(file) {
			continue
		}
		bad = append(bad, file)
	}

	if len(bad) > 0 {
		return fmt.Errorf("%w: files not formatted with gofmt -s: %s", ErrValidation, strings.Join(bad, ", "))
	}

	slog.Info("all sources are gofmt'd")
	return nil
}

// Reports whether a source path lies in a tree exempt from validation.
func ignoredSource(file string) bool {
	file = strings.ReplaceAll(file, "\\", "/")
	dirs := strings.Split(file, "/")
	for _, elem := range dirs[:len(dirs)-1] {
		switch {
		case elem == "vendor", elem == "testdata", elem == paths.BundlesDir:
			return true
		case strings.HasPrefix(elem, "_"), strings.HasPrefix(elem, ".") && elem != "." && elem != "..":
			return true
		}
	}
	return false
}
