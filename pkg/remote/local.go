package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// LocalHost is the host descriptor used when the subsystem diagnoses the
// machine it runs on (the `self` instance).
func LocalHost(name string) Host {
	return Host{Name: name, Address: "127.0.0.1", Local: true}
}

func execLocal(ctx context.Context, command string) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("LocalTransport.Exec: %w", err)
	}
	return result, nil
}
