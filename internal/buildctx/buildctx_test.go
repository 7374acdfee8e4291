package buildctx

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cruciblehq/crumake/internal/probe"
	"github.com/cruciblehq/crumake/internal/version"
	"github.com/google/go-cmp/cmp"
)

func testInputs() (probe.Results, version.Info, Overrides) {
	res := probe.Results{
		Present: map[string]bool{probe.GoTestCover.Name(): true},
		Tags:    []string{"apparmor", "selinux"},
	}
	info := version.Info{
		Version:   "1.2.0",
		Commit:    "0986095",
		BuildTime: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
	}
	ov := Overrides{
		Tags:           []string{"selinux", " experimental "},
		VersionPackage: "example.com/app/version",
		BinaryName:     "app",
	}
	return res, info, ov
}

func TestAssembleIsPure(t *testing.T) {
	a := Assemble(testInputs())
	b := Assemble(testInputs())

	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Context{})); diff != "" {
		t.Fatalf("Assemble not deterministic (-a +b):\n%s", diff)
	}
}

func TestAssembleDefaults(t *testing.T) {
	res, info, _ := testInputs()
	c := Assemble(res, info, Overrides{})

	if c.Timeout() != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.Timeout(), DefaultTimeout)
	}
	if c.MainPackage() != DefaultMainPackage {
		t.Fatalf("main package = %q, want %q", c.MainPackage(), DefaultMainPackage)
	}
	if diff := cmp.Diff(DefaultCrossPlatforms, c.CrossPlatforms()); diff != "" {
		t.Fatalf("cross platforms mismatch (-want +got):\n%s", diff)
	}
	if !slices.Contains(c.LDFlags(), "-X main.Version=1.2.0") {
		t.Fatalf("ldflags = %v, want main.Version stamp", c.LDFlags())
	}
	if !c.GoTestCover() {
		t.Fatal("GoTestCover not carried from probe results")
	}
}

func TestAssembleTags(t *testing.T) {
	c := Assemble(testInputs())

	want := []string{"apparmor", "experimental", "selinux"}
	if diff := cmp.Diff(want, c.Tags()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	wantStatic := []string{"apparmor", "experimental", "netgo", "selinux", "static_build"}
	if diff := cmp.Diff(wantStatic, c.BuildTags(true)); diff != "" {
		t.Fatalf("static tags mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleLDFlags(t *testing.T) {
	res, info, ov := testInputs()

	c := Assemble(res, info, ov)
	want := []string{
		"-w",
		"-X example.com/app/version.GitCommit=0986095",
		"-X example.com/app/version.Version=1.2.0",
		"-X example.com/app/version.BuildTime=2024-03-01T11:00:00Z",
	}
	if diff := cmp.Diff(want, c.LDFlags()); diff != "" {
		t.Fatalf("ldflags mismatch (-want +got):\n%s", diff)
	}

	ov.Debug = true
	if slices.Contains(Assemble(res, info, ov).LDFlags(), "-w") {
		t.Fatal("debug build must keep DWARF symbols")
	}
}

func TestGoBuildArgs(t *testing.T) {
	res, info, ov := testInputs()
	c := Assemble(res, info, ov)

	static := c.GoBuildArgs(true)
	if static[0] != "-a" {
		t.Fatalf("static args = %v, want leading -a", static)
	}
	if !slices.Contains(static, "-installsuffix") {
		t.Fatalf("static args = %v, want -installsuffix netgo", static)
	}
	ld := static[len(static)-1]
	if !strings.Contains(ld, "-linkmode external") || !strings.Contains(ld, "IAmStatic=true") {
		t.Fatalf("static ldflags = %q, want external static linking", ld)
	}

	dynamic := c.GoBuildArgs(false)
	if slices.Contains(dynamic, "-installsuffix") {
		t.Fatalf("dynamic args = %v, must not use netgo install suffix", dynamic)
	}
	if strings.Contains(dynamic[len(dynamic)-1], "-linkmode") {
		t.Fatalf("dynamic ldflags = %q, must not link statically", dynamic[len(dynamic)-1])
	}

	ov.Incremental = true
	if args := Assemble(res, info, ov).GoBuildArgs(false); args[0] == "-a" {
		t.Fatalf("incremental args = %v, must not force rebuild", args)
	}
}

func TestGoTestArgs(t *testing.T) {
	res, info, ov := testInputs()
	ov.Timeout = 90 * time.Second
	ov.TestFlags = []string{"-race"}

	args := Assemble(res, info, ov).GoTestArgs()
	if !slices.Contains(args, "1m30s") {
		t.Fatalf("test args = %v, want timeout 1m30s", args)
	}
	if args[len(args)-1] != "-race" {
		t.Fatalf("test args = %v, want trailing -race", args)
	}
}

func TestEnv(t *testing.T) {
	res, info, ov := testInputs()
	ov.Target = "windows/amd64"

	env := Assemble(res, info, ov).Env()
	for _, want := range []string{
		"VERSION=1.2.0",
		"GITCOMMIT=0986095",
		"BUILDTAGS=apparmor experimental selinux",
		"TIMEOUT=5m0s",
		"GOOS=windows",
		"GOARCH=amd64",
	} {
		if !slices.Contains(env, want) {
			t.Errorf("env missing %q: %v", want, env)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Assemble(testInputs())

	tags := c.Tags()
	tags[0] = "mutated"
	ld := c.LDFlags()
	ld[0] = "mutated"

	if c.Tags()[0] == "mutated" || c.LDFlags()[0] == "mutated" {
		t.Fatal("context mutated through an accessor")
	}
}
