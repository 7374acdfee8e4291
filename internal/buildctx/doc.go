// Package buildctx assembles the immutable build context shared by every
// bundle of a run.
//
// [Assemble] is a pure function of probe results, resolved version metadata,
// and user overrides. It computes the build tags, the linker flags that stamp
// version metadata into binaries, the static-linking variants, and the go
// build flags. The resulting [Context] exposes its values through accessors
// that return copies, so bundles cannot alter what later bundles observe.
//
// Example usage:
//
//	bc := buildctx.Assemble(results, info, buildctx.Overrides{
//	    VersionPackage: "github.com/example/app/version",
//	    BinaryName:     "app",
//	    MainPackage:    "./cmd/app",
//	})
//
//	args := bc.GoBuildArgs(true) // static build flags
//	env := bc.Env()              // ambient configuration for bundle steps
package buildctx
