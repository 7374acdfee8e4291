package runtime

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHostRun(t *testing.T) {
	var out bytes.Buffer
	err := Host{}.Run(context.Background(), Command{
		Args:   []string{"sh", "-c", "printf %s \"$GREETING\""},
		Env:    []string{"GREETING=hello"},
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hello" {
		t.Fatalf("stdout = %q, want hello", out.String())
	}
}

func TestHostRunStdin(t *testing.T) {
	var out bytes.Buffer
	err := Host{}.Run(context.Background(), Command{
		Args:   []string{"cat"},
		Stdin:  strings.NewReader("piped"),
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "piped" {
		t.Fatalf("stdout = %q, want piped", out.String())
	}
}

func TestHostRunExitStatus(t *testing.T) {
	err := Host{}.Run(context.Background(), Command{
		Args: []string{"sh", "-c", "echo boom >&2; exit 3"},
	})
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %T, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Fatalf("code = %d, want 3", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "boom") {
		t.Fatalf("error %q does not include captured stderr", exitErr.Error())
	}
}

func TestHostRunEmpty(t *testing.T) {
	if err := (Host{}).Run(context.Background(), Command{}); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("err = %v, want ErrEmptyCommand", err)
	}
}

func TestHostLookPath(t *testing.T) {
	h := Host{}
	if err := h.LookPath(context.Background(), "sh"); err != nil {
		t.Fatalf("LookPath(sh) = %v, want nil", err)
	}
	if err := h.LookPath(context.Background(), "definitely-not-a-real-tool-xyz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LookPath(missing) = %v, want ErrNotFound", err)
	}
}
