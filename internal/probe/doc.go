// Package probe inspects the build environment to decide which optional build
// tags to enable.
//
// A [Capability] names something the environment may or may not provide: a
// command on PATH, a C header, a compilable and linkable C snippet, a
// pkg-config module, or support for "go test -cover". A [Prober] checks
// capabilities through an [Executor], so the same probes run on the host or
// inside the build-environment container.
//
// Absence is a valid outcome, never an error. Each check is attempted once;
// any failure (missing tool, non-zero exit, unexpected output) reports the
// capability as absent.
//
// [Rule] values map capability outcomes to build tags. [DefaultRules] holds
// the rule set used by the make command; [Prober.ProbeAll] evaluates a rule
// set and returns [Results] with a sorted, de-duplicated tag list.
package probe
