package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cruciblehq/crumake/internal/paths"
	"github.com/cruciblehq/crumake/internal/runtime"
)

// Suffix appended to the commit of a dirty working tree.
const DirtySuffix = "-unsupported"

// Runs git commands for the resolver. Implemented by [runtime.Host].
type Runner interface {
	Run(ctx context.Context, cmd runtime.Command) error
}

// Controls version resolution.
type Options struct {
	Root           string           // Repository root holding the VERSION file.
	CommitOverride string           // Commit used verbatim when root has no git metadata.
	Now            func() time.Time // Clock for the build timestamp. Nil uses time.Now.
}

// Resolved version metadata.
type Info struct {
	Version   string    // Contents of the VERSION file.
	Commit    string    // Short commit hash, suffixed with [DirtySuffix] when dirty.
	Dirty     bool      // Whether tracked files have uncommitted modifications.
	BuildTime time.Time // Time of resolution, in UTC.
}

// Formats the build timestamp as RFC 3339 with nanoseconds.
func (i Info) BuildTimeString() string {
	return i.BuildTime.Format(time.RFC3339Nano)
}

// Resolves the version, commit, and dirty flag for the repository.
//
// Git is asked first, so a dirty working tree always carries [DirtySuffix].
// The commit override is only used, verbatim, when root has no git metadata.
func Resolve(ctx context.Context, git Runner, opts Options) (Info, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	v, err := readVersion(opts.Root)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Version:   v,
		BuildTime: now().UTC(),
	}

	if !insideWorkTree(ctx, git, opts.Root) {
		c := strings.TrimSpace(opts.CommitOverride)
		if c == "" {
			return Info{}, fmt.Errorf("%w: cannot determine git commit; set GITCOMMIT", ErrConfiguration)
		}
		info.Commit = c
		info.Dirty = strings.HasSuffix(c, DirtySuffix)
		slog.Debug("using commit override", "commit", c)
		return info, nil
	}

	if opts.CommitOverride != "" {
		slog.Warn("ignoring commit override inside a git working tree", "commit", opts.CommitOverride)
	}

	commit, err := gitOutput(ctx, git, opts.Root, "rev-parse", "--short", "HEAD")
	if err != nil {
		return Info{}, fmt.Errorf("%w: git rev-parse: %w", ErrConfiguration, err)
	}

	status, err := gitOutput(ctx, git, opts.Root, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return Info{}, fmt.Errorf("%w: git status: %w", ErrConfiguration, err)
	}

	info.Commit = commit
	if status != "" {
		info.Dirty = true
		info.Commit += DirtySuffix
	}

	return info, nil
}

// Reads and trims the VERSION file.
func readVersion(root string) (string, error) {
	path := paths.Version(root)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s not found", ErrConfiguration, path)
		}
		return "", fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrConfiguration, path)
	}
	if !validVersion(v) {
		return "", fmt.Errorf("%w: %s: version %q must be a single path element", ErrConfiguration, path, v)
	}
	return v, nil
}

// Reports whether v can name a directory under bundles/. It must be a single
// local path element other than "." and "..".
func validVersion(v string) bool {
	if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return false
	}
	return filepath.IsLocal(v)
}

// Reports whether root is inside a git working tree.
func insideWorkTree(ctx context.Context, git Runner, root string) bool {
	out, err := gitOutput(ctx, git, root, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Runs git in root and returns its trimmed standard output.
func gitOutput(ctx context.Context, git Runner, root string, args ...string) (string, error) {
	var out bytes.Buffer
	err := git.Run(ctx, runtime.Command{
		Args:   append([]string{"git"}, args...),
		Dir:    root,
		Stdout: &out,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
