package wire

import (
	"errors"
	"fmt"
)

// ProtocolErrorKind classifies wire decoding errors.
type ProtocolErrorKind int

const (
	// KindShortMessage indicates a buffer shorter than the fixed portion of
	// the expected layout.
	KindShortMessage ProtocolErrorKind = iota
	// KindBadTag indicates an unknown message-type tag.
	KindBadTag
	// KindBadName indicates an invalid or unterminated name field.
	KindBadName
	// KindOutOfRange indicates a decoded value outside its documented range
	// (e.g. a negative file size).
	KindOutOfRange
)

// ProtocolError represents a wire-level decoding error. Protocol errors are
// always fatal for the current exchange; there is no recovery from a
// misaligned stream.
type ProtocolError struct {
	Kind ProtocolErrorKind
	Msg  string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is a wire protocol error, as opposed to
// a transport failure. Tests use this to tell the two taxonomies apart.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
