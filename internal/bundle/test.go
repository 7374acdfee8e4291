package bundle

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// Name of the coverage profile written by test-unit and read by cover.
const coverProfile = "coverprofile"

// Runs go test over either the unit or the integration packages.
//
// Integration packages are those with an "integration" path element. The
// unit run writes a coverage profile into its output directory when go test
// supports it.
type testStep struct {
	integration bool
}

func (s testStep) Run(ctx context.Context, env *Env) error {
	bc := env.Context

	pkgs, err := s.packages(ctx, env)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		slog.Info("no packages to test", "bundle", env.Bundle.Name)
		return nil
	}

	args := append([]string{"go", "test"}, bc.GoTestArgs()...)
	if !s.integration && bc.GoTestCover() {
		args = append(args, "-coverprofile", filepath.Join(env.Bundle.Dest, coverProfile))
	}
	args = append(args, pkgs...)

	return env.run(ctx, args...)
}

// Lists the packages this step tests.
func (s testStep) packages(ctx context.Context, env *Env) ([]string, error) {
	args := []string{"go", "list"}
	if tags := env.Context.Tags(); len(tags) > 0 {
		args = append(args, "-tags", strings.Join(tags, " "))
	}
	args = append(args, "./...")

	out, err := env.output(ctx, args...)
	if err != nil {
		return nil, err
	}

	var pkgs []string
	for _, pkg := range strings.Fields(out) {
		if isIntegration(pkg) == s.integration {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

// Reports whether an import path has an "integration" element.
func isIntegration(pkg string) bool {
	for _, elem := range strings.Split(pkg, "/") {
		if elem == "integration" {
			return true
		}
	}
	return false
}
