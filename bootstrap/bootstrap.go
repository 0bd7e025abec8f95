// Package bootstrap manages a fifolinkd server as a child process.
//
// The usual deployment runs the server as an independent daemon, but a
// self-contained session (CLI one-shots, tests) can spawn one, attach,
// and tear it down when done. The server exits on its own when the
// control channel receives quit, so Stop normally just waits.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// DefaultBinary is the server binary looked up on PATH when none is
// configured.
const DefaultBinary = "fifolinkd"

// stopGrace is how long Stop waits for a clean exit before killing.
const stopGrace = 5 * time.Second

// ServerConfig configures a spawned server process.
type ServerConfig struct {
	// Binary is the fifolinkd binary (default: "fifolinkd" on PATH).
	Binary string
	// DataDir is the server's store root (required).
	DataDir string
	// PipeDir is the directory for the channel pipe nodes (required).
	PipeDir string
	// Capacity is the buffer capacity flag. Zero omits the flag and the
	// server uses its default. Must match the client's capacity.
	Capacity int
}

// ServerResult reports how a spawned server exited.
type ServerResult struct {
	// ExitCode is the process exit code, -1 if killed.
	ExitCode int
	// StderrBytes is the captured stderr output.
	StderrBytes []byte
}

// ServerManager owns one spawned server process.
type ServerManager struct {
	config *ServerConfig
	cmd    *exec.Cmd
	stderr io.ReadCloser
}

// NewServerManager creates a manager. Start spawns the process.
func NewServerManager(config *ServerConfig) *ServerManager {
	return &ServerManager{config: config}
}

// Args returns the argv the manager will spawn, binary first.
func (m *ServerManager) Args() []string {
	binary := m.config.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	args := []string{binary, "--data-dir", m.config.DataDir, "--pipe-dir", m.config.PipeDir}
	if m.config.Capacity > 0 {
		args = append(args, "-m", strconv.Itoa(m.config.Capacity))
	}
	return args
}

// Start spawns the server process. Stderr is captured for diagnostics.
// The caller still has to wait for the control pipe nodes to appear;
// channel attach handles that.
func (m *ServerManager) Start() error {
	if m.config.DataDir == "" || m.config.PipeDir == "" {
		return errors.New("bootstrap: data dir and pipe dir are required")
	}

	argv := m.Args()
	m.cmd = exec.Command(argv[0], argv[1:]...)

	stderr, err := m.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("bootstrap: stderr pipe: %w", err)
	}
	m.stderr = stderr

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("bootstrap: start %s: %w", argv[0], err)
	}
	return nil
}

// Wait blocks until the server exits and returns the result.
// Must be called after Start.
func (m *ServerManager) Wait() (*ServerResult, error) {
	if m.cmd == nil {
		return nil, errors.New("bootstrap: server not started")
	}

	stderrBytes, _ := io.ReadAll(m.stderr)
	err := m.cmd.Wait()

	result := &ServerResult{StderrBytes: stderrBytes}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				result.ExitCode = status.ExitStatus()
			} else {
				result.ExitCode = -1
			}
		} else {
			return nil, fmt.Errorf("bootstrap: wait failed: %w", err)
		}
	}
	return result, nil
}

// Stop waits for the server to exit on its own, killing it after a grace
// period. Call after the session has sent quit.
func (m *ServerManager) Stop() (*ServerResult, error) {
	if m.cmd == nil {
		return nil, errors.New("bootstrap: server not started")
	}

	type waited struct {
		result *ServerResult
		err    error
	}
	done := make(chan waited, 1)
	go func() {
		r, err := m.Wait()
		done <- waited{r, err}
	}()

	select {
	case w := <-done:
		return w.result, w.err
	case <-time.After(stopGrace):
		_ = m.Kill()
		w := <-done
		return w.result, w.err
	}
}

// Kill terminates the server process.
func (m *ServerManager) Kill() error {
	if m.cmd != nil && m.cmd.Process != nil {
		return m.cmd.Process.Kill()
	}
	return nil
}
