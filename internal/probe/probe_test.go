package probe

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cruciblehq/crumake/internal/runtime"
	"github.com/google/go-cmp/cmp"
)

// Executor that answers from fixed tables instead of running processes.
type fakeExecutor struct {
	tools   map[string]bool   // Executables on PATH.
	headers map[string]bool   // Headers the fake compiler can include.
	pkgs    map[string]bool   // Satisfied pkg-config expressions.
	links   bool              // Whether compile checks link successfully.
	stdout  map[string]string // Output keyed by the joined command line.
	calls   []string
}

func (f *fakeExecutor) LookPath(ctx context.Context, name string) error {
	if f.tools[name] {
		return nil
	}
	return runtime.ErrNotFound
}

func (f *fakeExecutor) Run(ctx context.Context, cmd runtime.Command) error {
	line := strings.Join(cmd.Args, " ")
	f.calls = append(f.calls, line)

	fail := &runtime.ExitError{Args: cmd.Args, Code: 1}

	switch {
	case cmd.Args[0] == "pkg-config":
		if !f.pkgs[cmd.Args[2]] {
			return fail
		}
	case len(cmd.Args) > 1 && cmd.Args[1] == "-E":
		src, _ := io.ReadAll(cmd.Stdin)
		header := strings.TrimSuffix(strings.TrimPrefix(string(src), "#include <"), ">\n")
		if !f.headers[header] {
			return fail
		}
	case len(cmd.Args) > 1 && cmd.Args[1] == "-xc":
		if !f.links {
			return fail
		}
	}

	if out, ok := f.stdout[line]; ok && cmd.Stdout != nil {
		io.WriteString(cmd.Stdout, out)
	}
	return nil
}

func TestProbeCommand(t *testing.T) {
	p := New(&fakeExecutor{tools: map[string]bool{"git": true}}, "")
	if !p.Probe(context.Background(), Command("git")) {
		t.Fatal("git should be present")
	}
	if p.Probe(context.Background(), Command("hg")) {
		t.Fatal("hg should be absent")
	}
}

func TestProbeHeaderWithoutCompiler(t *testing.T) {
	f := &fakeExecutor{headers: map[string]bool{"sys/apparmor.h": true}}
	p := New(f, "")
	if p.Probe(context.Background(), Header("sys/apparmor.h")) {
		t.Fatal("header check must fail without a compiler")
	}
	if len(f.calls) != 0 {
		t.Fatalf("ran %v without a compiler", f.calls)
	}
}

func TestProbeHeader(t *testing.T) {
	f := &fakeExecutor{
		tools:   map[string]bool{"clang": true},
		headers: map[string]bool{"sys/apparmor.h": true},
	}
	p := New(f, "clang")
	if !p.Probe(context.Background(), Header("sys/apparmor.h")) {
		t.Fatal("sys/apparmor.h should be present")
	}
	if p.Probe(context.Background(), Header("btrfs/version.h")) {
		t.Fatal("btrfs/version.h should be absent")
	}
	if !strings.HasPrefix(f.calls[0], "clang -E - -o /dev/null") {
		t.Fatalf("call = %q, want clang preprocessing", f.calls[0])
	}
}

func TestProbeCompileLibs(t *testing.T) {
	f := &fakeExecutor{tools: map[string]bool{"gcc": true}, links: true}
	p := New(f, "")
	if !p.Probe(context.Background(), Compiles("dm", "int main() {}", "devmapper")) {
		t.Fatal("compile check should pass")
	}
	if want := "gcc -xc - -o /dev/null -ldevmapper"; f.calls[0] != want {
		t.Fatalf("call = %q, want %q", f.calls[0], want)
	}
}

func TestProbeGoTestCover(t *testing.T) {
	f := &fakeExecutor{stdout: map[string]string{
		"go help testflag": "\t-cover\n\t    Enable coverage analysis.\n",
	}}
	if !New(f, "").Probe(context.Background(), GoTestCover) {
		t.Fatal("go test -cover should be detected")
	}

	f.stdout = map[string]string{"go help testflag": "no coverage here\n"}
	if New(f, "").Probe(context.Background(), GoTestCover) {
		t.Fatal("go test -cover should not be detected")
	}
}

func TestProbeAll(t *testing.T) {
	tests := []struct {
		name string
		exec *fakeExecutor
		want []string
	}{
		{
			name: "bare environment enables nothing",
			exec: &fakeExecutor{},
			want: nil,
		},
		{
			name: "compiler without optional headers",
			exec: &fakeExecutor{tools: map[string]bool{"gcc": true}},
			want: []string{"btrfs_noversion", "libdm_no_deferred_remove"},
		},
		{
			name: "full environment",
			exec: &fakeExecutor{
				tools:   map[string]bool{"gcc": true, "pkg-config": true},
				headers: map[string]bool{"btrfs/version.h": true, "sys/apparmor.h": true},
				pkgs:    map[string]bool{"libsystemd >= 209": true, "libseccomp": true, "libselinux": true},
				links:   true,
			},
			want: []string{"apparmor", "journald", "seccomp", "selinux"},
		},
		{
			name: "old systemd falls back to compat journald",
			exec: &fakeExecutor{
				tools: map[string]bool{"pkg-config": true},
				pkgs:  map[string]bool{"libsystemd-journal": true},
			},
			want: []string{"journald", "journald_compat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.exec, "").ProbeAll(context.Background(), DefaultRules(""))
			if diff := cmp.Diff(tt.want, res.Tags); diff != "" {
				t.Fatalf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProbeAllRecordsCapabilities(t *testing.T) {
	f := &fakeExecutor{stdout: map[string]string{"go help testflag": "-cover"}}
	res := New(f, "").ProbeAll(context.Background(), DefaultRules(""))

	if !res.Has(GoTestCover) {
		t.Fatal("GoTestCover not recorded as present")
	}
	if res.Has(PkgConfig("libseccomp")) {
		t.Fatal("libseccomp recorded as present without pkg-config")
	}
}

func TestProbeAllDeterministic(t *testing.T) {
	f := &fakeExecutor{tools: map[string]bool{"gcc": true, "pkg-config": true}, pkgs: map[string]bool{"libselinux": true}}
	a := New(f, "").ProbeAll(context.Background(), DefaultRules(""))
	b := New(f, "").ProbeAll(context.Background(), DefaultRules(""))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("ProbeAll not deterministic (-a +b):\n%s", diff)
	}
}
