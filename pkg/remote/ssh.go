package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

type sshTransport struct {
	dialTimeout time.Duration
}

// NewSSHTransport returns a Transport that opens one SSH connection per Exec
// call. Connections are not pooled: the probe batch is deliberately a single
// round trip, so setup cost is paid once per diagnosis.
func NewSSHTransport(dialTimeout time.Duration) Transport {
	return &sshTransport{dialTimeout: dialTimeout}
}

func (t *sshTransport) Exec(ctx context.Context, host Host, command string) (ExecResult, error) {
	if host.Local {
		return execLocal(ctx, command)
	}
	key, err := os.ReadFile(host.KeyFile)
	if err != nil {
		return ExecResult{}, fmt.Errorf("SSHTransport.Exec reading key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return ExecResult{}, fmt.Errorf("SSHTransport.Exec parsing key: %w", err)
	}
	port := host.Port
	if port == 0 {
		port = 22
	}
	config := &ssh.ClientConfig{
		User: host.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// Fleet hosts are reimaged from scratch and get fresh host keys;
		// pinning would break every reprovision.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         t.dialTimeout,
	}
	addr := net.JoinHostPort(host.Address, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return ExecResult{}, fmt.Errorf("SSHTransport.Exec dialing %s: %w", addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return ExecResult{}, fmt.Errorf("SSHTransport.Exec opening session: %w", err)
	}
	defer session.Close()

	// x/crypto/ssh has no context support; closing the client unblocks Run.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-watchDone:
		}
	}()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	err = session.Run(command)
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("SSHTransport.Exec: %w", ctx.Err())
		}
		return result, fmt.Errorf("SSHTransport.Exec: %w", err)
	}
	return result, nil
}
