package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Sequence counter for generating unique exec process identifiers.
var execSeq uint64

// Returns a unique exec process identifier.
func nextExecID() string {
	return fmt.Sprintf("exec-%d", atomic.AddUint64(&execSeq, 1))
}

// Runs a command inside the build environment and waits for it to exit.
//
// The command runs directly, without shell wrapping. Environment entries and
// working directory override the container's OCI spec for this execution
// only; an empty Dir runs in the bind-mounted repository root. A non-zero exit
// status is returned as an [*ExitError].
func (c *Container) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return ErrEmptyCommand
	}

	dir := cmd.Dir
	if dir == "" {
		dir = c.root
	}

	pspec, err := c.buildProcessSpec(ctx, cmd.Env, dir, cmd.Args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var stderr bytes.Buffer
	errw := cmd.Stderr
	if errw == nil {
		errw = &stderr
	}

	slog.Debug("exec in build environment", "id", c.id, "command", cmd.String(), "dir", dir)

	code, err := c.execProcess(ctx, pspec, cmd.Stdin, cmd.Stdout, errw)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Args: cmd.Args, Code: code, Stderr: stderr.String()}
	}
	return nil
}

// Reports whether name resolves to an executable on the build environment's
// PATH, using the POSIX "command -v" builtin.
func (c *Container) LookPath(ctx context.Context, name string) error {
	err := c.Run(ctx, Command{Args: []string{"sh", "-c", `command -v "$1"`, "sh", name}})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return nil
}

// Builds an OCI process spec for running a command inside the container.
//
// The base values are copied from the container's own OCI spec, then env and
// workdir are overridden if provided.
func (c *Container) buildProcessSpec(ctx context.Context, env []string, workdir string, args ...string) (*specs.Process, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, err
	}

	spec, err := ctr.Spec(ctx)
	if err != nil {
		return nil, err
	}

	pspec := *spec.Process
	pspec.Terminal = false
	pspec.Args = args

	if len(env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, env)
	}
	if workdir != "" {
		pspec.Cwd = workdir
	}

	return &pspec, nil
}

// Merges override env vars on top of a base env slice.
//
// Entries without "=" are dropped. The relative order of base keys is kept,
// and new keys are appended in override order.
func mergeEnv(base, overrides []string) []string {
	index := make(map[string]int, len(base)+len(overrides))
	result := make([]string, 0, len(base)+len(overrides))

	for _, list := range [][]string{base, overrides} {
		for _, entry := range list {
			k, _, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			if i, seen := index[k]; seen {
				result[i] = entry
				continue
			}
			index[k] = len(result)
			result = append(result, entry)
		}
	}

	return result
}

// Starts a process inside the container's running task, waits for it to exit,
// and returns the exit code.
//
// The process is attached to the task as an additional exec. Nil stdout is
// replaced with io.Discard. When stdin is provided, the container's stdin is
// closed after the reader is exhausted; the containerd shim holds both ends of
// the stdin FIFO open and will not propagate EOF on its own.
func (c *Container) execProcess(ctx context.Context, pspec *specs.Process, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	task, err := c.loadTask(ctx)
	if err != nil {
		return 0, err
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	var drained <-chan struct{}
	if stdin != nil {
		er := newEOFReader(stdin)
		stdin = er
		drained = er.drained
	}

	process, err := task.Exec(ctx, nextExecID(), pspec, cio.NewCreator(
		cio.WithStreams(stdin, stdout, stderr),
	))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return awaitProcess(ctx, process, drained)
}

// Loads the container's running task.
func (c *Container) loadTask(ctx context.Context) (containerd.Task, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return task, nil
}

// Waits for an exec process to exit and returns the exit code.
//
// If drained is non-nil, the process stdin is closed when the channel fires.
// The process is always deleted before returning.
func awaitProcess(ctx context.Context, process containerd.Process, drained <-chan struct{}) (int, error) {
	statusC, err := process.Wait(ctx)
	if err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := process.Start(ctx); err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if drained != nil {
		go func() {
			select {
			case <-drained:
				process.CloseIO(ctx, containerd.WithStdinCloser)
			case <-ctx.Done():
			}
		}()
	}

	exitStatus := <-statusC
	process.Delete(ctx)

	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return int(code), nil
}
