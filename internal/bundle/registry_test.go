package bundle

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestDefaultRegistryCoversDefaults(t *testing.T) {
	r := DefaultRegistry()
	if err := r.Check(Defaults()); err != nil {
		t.Fatalf("default bundle not registered: %v", err)
	}
	if !slices.Equal(r.Names(), slices.Sorted(slices.Values(Defaults()))) {
		t.Fatalf("Names() = %v", r.Names())
	}
}

func TestRegistryCheck(t *testing.T) {
	err := DefaultRegistry().Check([]string{"binary", "bianry"})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if !strings.Contains(err.Error(), `"bianry"`) {
		t.Fatalf("err = %v, want the unknown name", err)
	}
}

func TestDefaultsIsACopy(t *testing.T) {
	d := Defaults()
	d[0] = "changed"
	if Defaults()[0] != "validate-gofmt" {
		t.Fatal("Defaults returned shared storage")
	}
}
