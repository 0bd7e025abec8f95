package session

import (
	"errors"
	"testing"
	"time"

	"github.com/waveline-io/fifolink/channel"
)

func TestOpen_NoServer(t *testing.T) {
	_, err := Open(Config{
		Options: channel.Options{
			Dir:           t.TempDir(),
			AttachTimeout: 50 * time.Millisecond,
		},
	})
	if !errors.Is(err, channel.ErrAttachTimeout) {
		t.Errorf("got %v, want ErrAttachTimeout", err)
	}
}
