package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Summarises the test-unit coverage profile into <dest>/coverage.txt and
// renders <dest>/coverage.html. A missing profile is not an error.
func cover(ctx context.Context, env *Env) error {
	profile := filepath.Join(env.Sibling("test-unit"), coverProfile)
	if !exists(profile) {
		slog.Info("nothing to cover", "profile", profile)
		return nil
	}

	summary, err := env.output(ctx, "go", "tool", "cover", "-func="+profile)
	if err != nil {
		return err
	}

	txt := filepath.Join(env.Bundle.Dest, "coverage.txt")
	if err := os.WriteFile(txt, []byte(summary), paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	html := filepath.Join(env.Bundle.Dest, "coverage.html")
	if err := env.run(ctx, "go", "tool", "cover", "-html="+profile, "-o", html); err != nil {
		return err
	}

	slog.Info("coverage written", "summary", txt, "html", html)
	return nil
}
