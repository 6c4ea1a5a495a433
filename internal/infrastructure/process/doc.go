// Package process runs external programs for the catalog builder and the
// container lifecycle resolver.
//
// Three primitives cover everything the backend shells out for:
//   - Output: run one command, return its decoded stdout
//   - Pipeline: connect stdout of stage N to stdin of stage N+1 with OS pipes,
//     start every stage before reading, return the last stage's stdout
//   - Start: spawn a detached, fire-and-forget command (interactive launches)
//
// Blocking calls are bounded by the runner timeout. Failures are *Error values
// classified by Kind and matchable with errors.Is against ErrSpawn, ErrExit,
// ErrTimeout, ErrCanceled and ErrDecode.
//
// Output that is not valid UTF-8 is decoded after charset detection instead of
// being mapped byte-per-rune.
//
// Example Usage:
//
//	runner := process.NewExec(logger, 30*time.Second).WithMetrics(metrics)
//	out, err := runner.Pipeline(ctx,
//		process.Command{Name: "docker", Args: []string{"ps", "-a", "--format", "{{.Names}}"}},
//		process.Command{Name: "grep", Args: []string{"-F", "-x", "--", "fedora"}, OKExitCodes: []int{1}},
//		process.Command{Name: "wc", Args: []string{"-l"}},
//	)
package process
