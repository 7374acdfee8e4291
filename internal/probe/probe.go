package probe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/cruciblehq/crumake/internal/runtime"
)

// Default C compiler used for header and compile checks.
const DefaultCompiler = "gcc"

// Runs commands for the prober. Implemented by [runtime.Host] and
// [*runtime.Container].
type Executor interface {
	Run(ctx context.Context, cmd runtime.Command) error
	LookPath(ctx context.Context, name string) error
}

// Checks capabilities of a build environment.
type Prober struct {
	exec     Executor // Executor the checks run through.
	compiler string   // C compiler for header and compile checks.
}

// Creates a [Prober] that runs checks through exec using compiler. An empty
// compiler uses [DefaultCompiler].
func New(exec Executor, compiler string) *Prober {
	if compiler == "" {
		compiler = DefaultCompiler
	}
	return &Prober{exec: exec, compiler: compiler}
}

// Reports whether the capability is present.
//
// Never fails: any error while checking means the capability is absent.
func (p *Prober) Probe(ctx context.Context, c Capability) bool {
	var ok bool

	switch c.Kind {
	case KindCommand:
		ok = p.exec.LookPath(ctx, c.Target) == nil
	case KindHeader:
		ok = p.probeHeader(ctx, c.Target)
	case KindCompile:
		ok = p.probeCompile(ctx, c.Source, c.Libs)
	case KindPkgConfig:
		ok = p.probePkgConfig(ctx, c.Target)
	case KindGoTestCover:
		ok = p.probeGoTestCover(ctx)
	default:
		slog.Warn("unknown capability kind", "kind", c.Kind, "target", c.Target)
	}

	slog.Debug("probe", "capability", c.Name(), "present", ok)
	return ok
}

// Preprocesses "#include <header>" with the C compiler.
func (p *Prober) probeHeader(ctx context.Context, header string) bool {
	if p.exec.LookPath(ctx, p.compiler) != nil {
		return false
	}
	return p.exec.Run(ctx, runtime.Command{
		Args:  []string{p.compiler, "-E", "-", "-o", "/dev/null"},
		Stdin: strings.NewReader("#include <" + header + ">\n"),
	}) == nil
}

// Compiles and links a C program read from stdin.
func (p *Prober) probeCompile(ctx context.Context, source string, libs []string) bool {
	if p.exec.LookPath(ctx, p.compiler) != nil {
		return false
	}
	args := []string{p.compiler, "-xc", "-", "-o", "/dev/null"}
	for _, lib := range libs {
		args = append(args, "-l"+lib)
	}
	return p.exec.Run(ctx, runtime.Command{
		Args:  args,
		Stdin: strings.NewReader(source),
	}) == nil
}

// Checks a pkg-config module expression.
func (p *Prober) probePkgConfig(ctx context.Context, expr string) bool {
	if p.exec.LookPath(ctx, "pkg-config") != nil {
		return false
	}
	return p.exec.Run(ctx, runtime.Command{
		Args: []string{"pkg-config", "--exists", expr},
	}) == nil
}

// Looks for "-cover" in the output of "go help testflag".
func (p *Prober) probeGoTestCover(ctx context.Context) bool {
	var out bytes.Buffer
	err := p.exec.Run(ctx, runtime.Command{
		Args:   []string{"go", "help", "testflag"},
		Stdout: &out,
	})
	return err == nil && strings.Contains(out.String(), "-cover")
}
