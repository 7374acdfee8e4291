package probe

import (
	"context"
	"slices"
)

// Maps the outcome of a capability check to build tags.
type Rule struct {
	Capability Capability // Capability to check.
	Requires   string     // Command that must exist for the rule to apply at all. Empty always applies.
	Present    []string   // Tags enabled when the capability is present.
	Absent     []string   // Tags enabled when the capability is absent.
	Else       *Rule      // Rule evaluated instead of Absent tags when the capability is absent.
}

// Outcome of evaluating a rule set.
type Results struct {
	Present map[string]bool // Capability name to presence, for every capability checked.
	Tags    []string        // Enabled build tags, sorted and de-duplicated.
}

// Reports whether the capability was checked and found present.
func (r Results) Has(c Capability) bool {
	return r.Present[c.Name()]
}

// Source of the libdevmapper deferred-remove check.
const deferredRemoveSource = "#include <libdevmapper.h>\nint main() { dm_task_deferred_remove(NULL); }\n"

// Rule set used when building: optional storage, logging, and security
// integrations are enabled or disabled according to what the environment
// provides. The final rule records "go test -cover" support without
// contributing a tag.
func DefaultRules(compiler string) []Rule {
	if compiler == "" {
		compiler = DefaultCompiler
	}
	return []Rule{
		{
			Capability: Header("btrfs/version.h"),
			Requires:   compiler,
			Absent:     []string{"btrfs_noversion"},
		},
		{
			Capability: Compiles("libdevmapper-deferred-remove", deferredRemoveSource, "devmapper"),
			Requires:   compiler,
			Absent:     []string{"libdm_no_deferred_remove"},
		},
		{
			Capability: PkgConfig("libsystemd >= 209"),
			Present:    []string{"journald"},
			Else: &Rule{
				Capability: PkgConfig("libsystemd-journal"),
				Present:    []string{"journald", "journald_compat"},
			},
		},
		{
			Capability: PkgConfig("libseccomp"),
			Present:    []string{"seccomp"},
		},
		{
			Capability: Header("sys/apparmor.h"),
			Requires:   compiler,
			Present:    []string{"apparmor"},
		},
		{
			Capability: PkgConfig("libselinux"),
			Present:    []string{"selinux"},
		},
		{
			Capability: GoTestCover,
		},
	}
}

// Evaluates every rule in order and collects the enabled tags.
func (p *Prober) ProbeAll(ctx context.Context, rules []Rule) Results {
	res := Results{Present: make(map[string]bool)}
	for i := range rules {
		res.Tags = append(res.Tags, p.evaluate(ctx, &rules[i], res.Present)...)
	}
	slices.Sort(res.Tags)
	res.Tags = slices.Compact(res.Tags)
	return res
}

// Evaluates a single rule, recording every capability checked.
func (p *Prober) evaluate(ctx context.Context, r *Rule, present map[string]bool) []string {
	if r.Requires != "" && p.exec.LookPath(ctx, r.Requires) != nil {
		return nil
	}

	ok := p.Probe(ctx, r.Capability)
	present[r.Capability.Name()] = ok

	switch {
	case ok:
		return r.Present
	case r.Else != nil:
		return p.evaluate(ctx, r.Else, present)
	default:
		return r.Absent
	}
}
