package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
)

func TestTOMLLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "binary_name = \"app\"\nkeep = true\ntimeout = \"10m\"\ntags = \"apparmor seccomp\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		BinaryName string
		Keep       bool
		Timeout    time.Duration `default:"5m"`
		Tags       []string      `sep:" "`
		Target     string        `default:"linux/amd64"`
	}

	parser, err := kong.New(&cli, kong.Configuration(tomlLoader, path))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	if _, err := parser.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cli.BinaryName != "app" {
		t.Errorf("BinaryName = %q, want app", cli.BinaryName)
	}
	if !cli.Keep {
		t.Error("Keep = false, want true")
	}
	if cli.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %v, want 10m", cli.Timeout)
	}
	if strings.Join(cli.Tags, ",") != "apparmor,seccomp" {
		t.Errorf("Tags = %v, want [apparmor seccomp]", cli.Tags)
	}
	if cli.Target != "linux/amd64" {
		t.Errorf("Target = %q, want default", cli.Target)
	}
}

func TestTOMLLoaderFlagWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("binary_name = \"app\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		BinaryName string
	}

	parser, err := kong.New(&cli, kong.Configuration(tomlLoader, path))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	if _, err := parser.Parse([]string{"--binary-name", "other"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cli.BinaryName != "other" {
		t.Errorf("BinaryName = %q, want other", cli.BinaryName)
	}
}

func TestTOMLLoaderInvalid(t *testing.T) {
	if _, err := tomlLoader(strings.NewReader("binary_name = ")); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}
