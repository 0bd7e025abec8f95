package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fifolink.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
pipe_dir: /run/fifolink
capacity: 512
attach_timeout: 10s
output_dir: /tmp/out
server:
  binary: /usr/local/bin/fifolinkd
  data_dir: /var/lib/fifolink
  spawn: true
cache:
  url: redis://localhost:6379/1
  ttl: 30m
report:
  path: /tmp/report.msgpack
archive:
  bucket: ecg-archive
  prefix: sessions/
  region: eu-west-1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PipeDir != "/run/fifolink" {
		t.Errorf("PipeDir = %q", cfg.PipeDir)
	}
	if cfg.Capacity != 512 {
		t.Errorf("Capacity = %d", cfg.Capacity)
	}
	if cfg.AttachTimeout.Duration != 10*time.Second {
		t.Errorf("AttachTimeout = %v", cfg.AttachTimeout.Duration)
	}
	if !cfg.Server.Spawn || cfg.Server.Binary != "/usr/local/bin/fifolinkd" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL.Duration)
	}
	if cfg.Archive.Bucket != "ecg-archive" {
		t.Errorf("Archive.Bucket = %q", cfg.Archive.Bucket)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("FIFOLINK_TEST_DIR", "/custom/pipes")

	path := writeConfig(t, "pipe_dir: ${FIFOLINK_TEST_DIR}\ncapacity: ${FIFOLINK_TEST_CAP:-256}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PipeDir != "/custom/pipes" {
		t.Errorf("PipeDir = %q, want /custom/pipes", cfg.PipeDir)
	}
	if cfg.Capacity != 256 {
		t.Errorf("Capacity = %d, want 256 from default", cfg.Capacity)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "pipe_dir: [unterminated\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("got %v, want invalid YAML error", err)
	}
}

func TestDuration_BadValue(t *testing.T) {
	path := writeConfig(t, "attach_timeout: soon\n")

	_, err := Load(path)
	if err == nil {
		t.Error("bad duration should fail to load")
	}
}
