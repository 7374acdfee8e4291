package probe

// Kind of check performed for a capability.
type Kind string

const (
	KindCommand     Kind = "command"     // Executable on PATH.
	KindHeader      Kind = "header"      // C header that preprocesses cleanly.
	KindCompile     Kind = "compile"     // C source that compiles and links.
	KindPkgConfig   Kind = "pkgconfig"   // pkg-config module expression.
	KindGoTestCover Kind = "gotestcover" // "go test" supports -cover.
)

// Something the build environment may provide.
type Capability struct {
	Kind   Kind     // How the capability is checked.
	Target string   // Command name, header path, pkg-config expression, or a label for compile checks.
	Source string   // C source for [KindCompile].
	Libs   []string // Linker libraries for [KindCompile] (e.g., "devmapper").
}

// Returns the capability's unique key, formatted as "<kind>:<target>".
func (c Capability) Name() string {
	return string(c.Kind) + ":" + c.Target
}

// Capability requiring an executable on PATH.
func Command(name string) Capability {
	return Capability{Kind: KindCommand, Target: name}
}

// Capability requiring a C header to be available to the compiler.
func Header(path string) Capability {
	return Capability{Kind: KindHeader, Target: path}
}

// Capability requiring a C snippet to compile and link against libs.
func Compiles(label, source string, libs ...string) Capability {
	return Capability{Kind: KindCompile, Target: label, Source: source, Libs: libs}
}

// Capability requiring a pkg-config module expression (e.g.,
// "libsystemd >= 209") to be satisfied.
func PkgConfig(expr string) Capability {
	return Capability{Kind: KindPkgConfig, Target: expr}
}

// Capability requiring "go test" to support coverage profiles.
var GoTestCover = Capability{Kind: KindGoTestCover, Target: "go"}
