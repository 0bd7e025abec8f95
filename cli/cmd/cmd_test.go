package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/channel"
	"github.com/waveline-io/fifolink/wire"
)

// resolveWith runs resolveChoice through a real cli.Context built from argv.
func resolveWith(t *testing.T, args ...string) (*sessionChoice, error) {
	t.Helper()

	var choice *sessionChoice
	var resolveErr error
	app := &cli.App{
		Commands: []*cli.Command{{
			Name:  "probe",
			Flags: SessionFlags(),
			Action: func(c *cli.Context) error {
				choice, resolveErr = resolveChoice(c)
				return nil
			},
		}},
	}

	argv := append([]string{"fifolink", "probe"}, args...)
	if err := app.Run(argv); err != nil {
		t.Fatalf("app run: %v", err)
	}
	return choice, resolveErr
}

func TestResolveChoice_RequiresPipeDir(t *testing.T) {
	_, err := resolveWith(t)
	if err == nil {
		t.Fatal("expected error without pipe dir")
	}
}

func TestResolveChoice_FlagsOnly(t *testing.T) {
	choice, err := resolveWith(t,
		"--pipe-dir", "/run/fifolink",
		"--capacity", "512",
		"--attach-timeout", "3s",
		"--new-channel",
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if choice.pipeDir != "/run/fifolink" || choice.capacity != 512 {
		t.Errorf("choice = %+v", choice)
	}
	if choice.attachTimeout != 3*time.Second {
		t.Errorf("attachTimeout = %v", choice.attachTimeout)
	}
	if !choice.newChannel {
		t.Error("newChannel should be set")
	}
}

func TestResolveChoice_DefaultCapacity(t *testing.T) {
	choice, err := resolveWith(t, "--pipe-dir", "/pipes")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if choice.capacity != wire.DefaultCapacity {
		t.Errorf("capacity = %d, want default %d", choice.capacity, wire.DefaultCapacity)
	}
}

func TestResolveChoice_FlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifolink.yaml")
	content := "pipe_dir: /from/config\ncapacity: 128\ncache:\n  url: redis://localhost:6379\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	choice, err := resolveWith(t, "--config", path, "--capacity", "1024")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if choice.pipeDir != "/from/config" {
		t.Errorf("pipeDir = %q, want config value", choice.pipeDir)
	}
	if choice.capacity != 1024 {
		t.Errorf("capacity = %d, flag should win over config", choice.capacity)
	}
	if choice.cacheURL != "redis://localhost:6379" {
		t.Errorf("cacheURL = %q", choice.cacheURL)
	}
}

func TestExitFor_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitSuccess},
		{"plain", errors.New("boom"), exitFailure},
		{"transport", &channel.TransportError{Op: "read", Channel: "control", Err: channel.ErrPeerClosed}, exitTransport},
		{"protocol", &wire.ProtocolError{Kind: wire.KindBadTag, Msg: "tag 9"}, exitProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var coder cli.ExitCoder
			if !errors.As(exitFor(tt.err), &coder) {
				t.Fatal("exitFor must return an ExitCoder")
			}
			if coder.ExitCode() != tt.code {
				t.Errorf("code = %d, want %d", coder.ExitCode(), tt.code)
			}
		})
	}
}

func TestCommands_Registered(t *testing.T) {
	for _, cmd := range []*cli.Command{
		FetchSampleCommand(),
		FetchSeriesCommand(),
		FetchFileCommand(),
		ReportCommand(),
		VersionCommand("abc"),
	} {
		if cmd.Name == "" || cmd.Action == nil {
			t.Errorf("command %+v missing name or action", cmd)
		}
	}
}
