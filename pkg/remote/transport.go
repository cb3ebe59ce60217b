// Package remote provides the command execution channel used by the probe
// collector, the fix orchestrator and the watchdog. Managed hosts are reached
// over SSH; the special self host runs commands through the local shell.
package remote

import "context"

// Host identifies one execution target. KeyFile is only consulted for SSH
// hosts; Local hosts execute through /bin/sh on the machine running the
// binary.
type Host struct {
	Name    string
	Address string
	Port    int
	User    string
	KeyFile string
	Local   bool
}

// ExecResult carries the raw outcome of one command execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Transport executes a single command on a host. Implementations must honor
// context cancellation and return a non-nil error only when the channel
// itself failed; a command exiting non-zero is reported through ExitCode.
type Transport interface {
	Exec(ctx context.Context, host Host, command string) (ExecResult, error)
}
