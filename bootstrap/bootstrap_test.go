package bootstrap

import (
	"reflect"
	"testing"
)

func TestArgs_FullConfig(t *testing.T) {
	m := NewServerManager(&ServerConfig{
		Binary:   "/opt/fifolink/bin/fifolinkd",
		DataDir:  "/var/lib/fifolink",
		PipeDir:  "/run/fifolink",
		Capacity: 512,
	})

	want := []string{
		"/opt/fifolink/bin/fifolinkd",
		"--data-dir", "/var/lib/fifolink",
		"--pipe-dir", "/run/fifolink",
		"-m", "512",
	}
	if got := m.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestArgs_Defaults(t *testing.T) {
	m := NewServerManager(&ServerConfig{DataDir: "/data", PipeDir: "/pipes"})

	got := m.Args()
	if got[0] != DefaultBinary {
		t.Errorf("binary = %q, want %q", got[0], DefaultBinary)
	}
	for _, arg := range got {
		if arg == "-m" {
			t.Error("zero capacity must omit the -m flag")
		}
	}
}

func TestStart_RequiresDirs(t *testing.T) {
	if err := NewServerManager(&ServerConfig{PipeDir: "/pipes"}).Start(); err == nil {
		t.Error("missing data dir should fail")
	}
	if err := NewServerManager(&ServerConfig{DataDir: "/data"}).Start(); err == nil {
		t.Error("missing pipe dir should fail")
	}
}

func TestStart_MissingBinary(t *testing.T) {
	m := NewServerManager(&ServerConfig{
		Binary:  "/nonexistent/fifolinkd-test-binary",
		DataDir: t.TempDir(),
		PipeDir: t.TempDir(),
	})
	if err := m.Start(); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestWait_BeforeStart(t *testing.T) {
	m := NewServerManager(&ServerConfig{DataDir: "/data", PipeDir: "/pipes"})
	if _, err := m.Wait(); err == nil {
		t.Error("Wait before Start should fail")
	}
}

func TestStartWait_RealProcess(t *testing.T) {
	// Any short-lived binary exercises the spawn/wait path; "true" ignores
	// the extra flags.
	m := NewServerManager(&ServerConfig{
		Binary:  "true",
		DataDir: t.TempDir(),
		PipeDir: t.TempDir(),
	})
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	result, err := m.Wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
}
