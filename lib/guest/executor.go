package guest

import "context"

// Result is the captured outcome of one command run inside a guest. A
// nonzero ExitCode is a normal outcome, not an executor failure.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a command inside a named guest distribution. Implementations
// must pass argv through as an argument vector: elements are never joined
// into a shell string or otherwise interpreted. An error return means the
// guest or the executor itself is unusable, not that the command failed.
type Executor interface {
	Execute(ctx context.Context, distro string, argv []string) (*Result, error)
}
