package cli

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/crumake/internal/buildctx"
	"github.com/cruciblehq/crumake/internal/bundle"
)

func TestOverrides(t *testing.T) {
	f := &BuildFlags{
		Keep:        true,
		BuildDebug:  true,
		Tags:        []string{"apparmor"},
		Target:      "linux/arm64",
		Timeout:     time.Minute,
		TestFlags:   []string{"-race"},
		MainPkg:     "./cmd/app",
		VersionPkg:  "example.com/app/internal",
		Incremental: true,
	}

	want := buildctx.Overrides{
		Debug:          true,
		Incremental:    true,
		Tags:           []string{"apparmor"},
		Target:         "linux/arm64",
		Timeout:        time.Minute,
		TestFlags:      []string{"-race"},
		VersionPackage: "example.com/app/internal",
		BinaryName:     "app",
		MainPackage:    "./cmd/app",
		Keep:           true,
	}

	if diff := cmp.Diff(want, f.overrides("/src/app")); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestOverridesBinaryName(t *testing.T) {
	f := &BuildFlags{BinaryName: "tool", CrossPlatforms: []string{"linux/amd64"}}
	ov := f.overrides("/src/app")

	if ov.BinaryName != "tool" {
		t.Errorf("BinaryName = %q, want tool", ov.BinaryName)
	}
	if diff := cmp.Diff([]string{"linux/amd64"}, ov.CrossPlatforms); diff != "" {
		t.Errorf("CrossPlatforms mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		flags   BuildFlags
		wantErr bool
	}{
		{name: "empty", flags: BuildFlags{}},
		{name: "valid", flags: BuildFlags{Target: "linux/arm64", CrossPlatforms: []string{"darwin/amd64", "windows/386"}}},
		{name: "bad target", flags: BuildFlags{Target: "not a platform"}, wantErr: true},
		{name: "bad cross", flags: BuildFlags{CrossPlatforms: []string{"linux/amd64", "???"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validate()
			if tt.wantErr {
				if !errors.Is(err, bundle.ErrConfiguration) {
					t.Fatalf("err = %v, want ErrConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestContainerID(t *testing.T) {
	a := containerID("/src/app")
	if a != containerID("/src/app") {
		t.Fatal("container ID is not stable")
	}
	if a == containerID("/src/other") {
		t.Fatal("different roots share a container ID")
	}
	if !strings.HasPrefix(a, "crumake-") || len(a) != len("crumake-")+12 {
		t.Fatalf("containerID = %q", a)
	}
}

func TestContainerdLevel(t *testing.T) {
	tests := map[slog.Level]string{
		slog.LevelDebug: "debug",
		slog.LevelInfo:  "info",
		slog.LevelWarn:  "warn",
		slog.LevelError: "warn",
	}
	for level, want := range tests {
		if got := containerdLevel(level); got != want {
			t.Errorf("containerdLevel(%v) = %q, want %q", level, got, want)
		}
	}
}
