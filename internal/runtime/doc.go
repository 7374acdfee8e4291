// Package runtime executes build commands on the host or inside a
// reproducible build-environment container backed by containerd.
//
// Every command is described by a [Command] and executed through one of two
// backends. [Host] runs processes directly with os/exec. A [Container] runs
// them as additional execs inside a long-running containerd task whose root
// filesystem is the build-environment image and whose repository checkout is
// bind-mounted at the same path as on the host, so artifacts written by the
// command land in the host's bundles tree.
//
// Both backends report a non-zero exit status as an [*ExitError], which
// matches [ErrCommandFailed] under errors.Is. Failures to start a process or
// to talk to containerd are reported as [ErrRuntime].
//
// Example usage:
//
//	rt, err := runtime.New(runtime.Config{
//	    Address:   "/run/containerd/containerd.sock",
//	    Namespace: "crumake",
//	})
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartEnvironment(ctx, "buildenv.tar", "crumake-env", "/src/project")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	err = ctr.Run(ctx, runtime.Command{
//	    Args: []string{"go", "version"},
//	    Dir:  "/src/project",
//	})
package runtime
