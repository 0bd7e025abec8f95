// Package wire defines the request-channel wire format.
//
// Every exchange begins with a 4-byte little-endian tag followed by a
// type-specific body. Layouts are explicitly packed: both peers agree
// byte-for-byte and no field relies on in-memory struct layout. The only
// variable-length field is the file-request name, whose length is implied
// by the total bytes the sender writes (bounded by the session capacity)
// rather than encoded separately.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Tag identifies a message type on the wire.
type Tag uint32

const (
	// TagSample requests one sample value for (subject, time, series).
	TagSample Tag = 0
	// TagNewChannel requests creation of a fresh ephemeral channel.
	TagNewChannel Tag = 1
	// TagFile requests a byte range of a named file, or its total size
	// when offset and length are both zero.
	TagFile Tag = 2
	// TagQuit terminates the channel. It is the only message with no reply.
	TagQuit Tag = 3
)

// String returns a human-readable tag name for logs and errors.
func (t Tag) String() string {
	switch t {
	case TagSample:
		return "sample"
	case TagNewChannel:
		return "new_channel"
	case TagFile:
		return "file"
	case TagQuit:
		return "quit"
	default:
		return fmt.Sprintf("tag(%d)", uint32(t))
	}
}

// Wire sizes in bytes.
const (
	// TagSize is the size of the message-type tag.
	TagSize = 4
	// SampleRequestSize is the full sample-request layout:
	// tag(4) + subject(int32) + seconds(float64) + series(int32).
	SampleRequestSize = TagSize + 4 + 8 + 4
	// FileRequestFixedSize is the fixed prefix of a file request:
	// tag(4) + offset(int64) + length(int32). The name and its NUL
	// terminator follow.
	FileRequestFixedSize = TagSize + 8 + 4
	// SampleReplySize is the size of a sample reply (one float64).
	SampleReplySize = 8
	// SizeReplySize is the size of a file-size reply (one int64).
	SizeReplySize = 8
	// ChannelNameSize is the fixed size of a new-channel reply buffer.
	// The name inside is NUL-terminated, so at most ChannelNameSize-1
	// bytes of it are usable.
	ChannelNameSize = 30
	// DefaultCapacity is the default negotiated buffer capacity. It caps
	// both the size of a single request write and the maximum file-chunk
	// length. Both peers must be started with the same value.
	DefaultCapacity = 256
)

// SampleRequest asks for the value of series Series for subject Subject at
// time Seconds. Immutable once constructed.
type SampleRequest struct {
	Subject int32
	Seconds float64
	Series  int32
}

// FileRequest asks for Length bytes of Name starting at Offset. The
// combination Offset == 0 && Length == 0 is a size query: the server replies
// with the total file length instead of data.
type FileRequest struct {
	Offset int64
	Length int32
	Name   string
}

// SizeQuery reports whether the request is the distinguished size query.
func (r FileRequest) SizeQuery() bool {
	return r.Offset == 0 && r.Length == 0
}

// EncodedSize returns the total encoded size of the request, including the
// NUL terminator. The sender must write exactly this many bytes.
func (r FileRequest) EncodedSize() int {
	return FileRequestFixedSize + len(r.Name) + 1
}

// EncodeControl encodes a bare-tag control message (quit or new-channel).
func EncodeControl(tag Tag) []byte {
	buf := make([]byte, TagSize)
	binary.LittleEndian.PutUint32(buf, uint32(tag))
	return buf
}

// EncodeSampleRequest encodes a sample request.
func EncodeSampleRequest(req SampleRequest) []byte {
	buf := make([]byte, SampleRequestSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(TagSample))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(req.Subject))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(req.Seconds))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(req.Series))
	return buf
}

// EncodeFileRequest encodes a file request. The name must be non-empty and
// must not contain a NUL byte, since NUL terminates it on the wire.
func EncodeFileRequest(req FileRequest) ([]byte, error) {
	if req.Name == "" {
		return nil, &ProtocolError{Kind: KindBadName, Msg: "empty file name"}
	}
	if bytes.IndexByte([]byte(req.Name), 0) >= 0 {
		return nil, &ProtocolError{Kind: KindBadName, Msg: "file name contains NUL"}
	}
	buf := make([]byte, req.EncodedSize())
	binary.LittleEndian.PutUint32(buf[0:4], uint32(TagFile))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(req.Offset))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(req.Length))
	copy(buf[FileRequestFixedSize:], req.Name)
	// Final byte is already the NUL terminator.
	return buf, nil
}

// DecodeTag extracts the message tag from a raw request buffer.
func DecodeTag(buf []byte) (Tag, error) {
	if len(buf) < TagSize {
		return 0, &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("message of %d bytes is shorter than the %d-byte tag", len(buf), TagSize),
		}
	}
	tag := Tag(binary.LittleEndian.Uint32(buf[:TagSize]))
	switch tag {
	case TagSample, TagNewChannel, TagFile, TagQuit:
		return tag, nil
	default:
		return 0, &ProtocolError{
			Kind: KindBadTag,
			Msg:  fmt.Sprintf("unknown message tag %d", uint32(tag)),
		}
	}
}

// DecodeSampleRequest decodes a sample request, tag included.
func DecodeSampleRequest(buf []byte) (SampleRequest, error) {
	if len(buf) < SampleRequestSize {
		return SampleRequest{}, &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("sample request is %d bytes, want %d", len(buf), SampleRequestSize),
		}
	}
	return SampleRequest{
		Subject: int32(binary.LittleEndian.Uint32(buf[4:8])),
		Seconds: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		Series:  int32(binary.LittleEndian.Uint32(buf[16:20])),
	}, nil
}

// DecodeFileRequest decodes a file request, tag included. The name length is
// implied by the buffer length; a missing NUL terminator is a protocol error.
func DecodeFileRequest(buf []byte) (FileRequest, error) {
	if len(buf) < FileRequestFixedSize+1 {
		return FileRequest{}, &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("file request is %d bytes, want at least %d", len(buf), FileRequestFixedSize+1),
		}
	}
	name := buf[FileRequestFixedSize:]
	nul := bytes.IndexByte(name, 0)
	if nul < 0 {
		return FileRequest{}, &ProtocolError{Kind: KindBadName, Msg: "file name is not NUL-terminated"}
	}
	if nul == 0 {
		return FileRequest{}, &ProtocolError{Kind: KindBadName, Msg: "empty file name"}
	}
	return FileRequest{
		Offset: int64(binary.LittleEndian.Uint64(buf[4:12])),
		Length: int32(binary.LittleEndian.Uint32(buf[12:16])),
		Name:   string(name[:nul]),
	}, nil
}

// EncodeSampleReply encodes a sample reply.
func EncodeSampleReply(v float64) []byte {
	buf := make([]byte, SampleReplySize)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

// DecodeSampleReply decodes a sample reply.
func DecodeSampleReply(buf []byte) (float64, error) {
	if len(buf) < SampleReplySize {
		return 0, &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("sample reply is %d bytes, want %d", len(buf), SampleReplySize),
		}
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:SampleReplySize])), nil
}

// EncodeSizeReply encodes a file-size reply.
func EncodeSizeReply(n int64) []byte {
	buf := make([]byte, SizeReplySize)
	binary.LittleEndian.PutUint64(buf, uint64(n))
	return buf
}

// DecodeSizeReply decodes a file-size reply. Negative values are returned
// as-is; range interpretation belongs to the caller, which knows whether a
// sentinel is expected.
func DecodeSizeReply(buf []byte) (int64, error) {
	if len(buf) < SizeReplySize {
		return 0, &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("size reply is %d bytes, want %d", len(buf), SizeReplySize),
		}
	}
	return int64(binary.LittleEndian.Uint64(buf[:SizeReplySize])), nil
}

// EncodeChannelName encodes a new-channel reply: the name NUL-terminated in
// a fixed ChannelNameSize buffer.
func EncodeChannelName(name string) ([]byte, error) {
	if name == "" {
		return nil, &ProtocolError{Kind: KindBadName, Msg: "empty channel name"}
	}
	if len(name) >= ChannelNameSize {
		return nil, &ProtocolError{
			Kind: KindBadName,
			Msg:  fmt.Sprintf("channel name %q exceeds %d bytes", name, ChannelNameSize-1),
		}
	}
	buf := make([]byte, ChannelNameSize)
	copy(buf, name)
	return buf, nil
}

// DecodeChannelName decodes a new-channel reply buffer.
func DecodeChannelName(buf []byte) (string, error) {
	if len(buf) < ChannelNameSize {
		return "", &ProtocolError{
			Kind: KindShortMessage,
			Msg:  fmt.Sprintf("channel-name reply is %d bytes, want %d", len(buf), ChannelNameSize),
		}
	}
	nul := bytes.IndexByte(buf[:ChannelNameSize], 0)
	if nul <= 0 {
		return "", &ProtocolError{Kind: KindBadName, Msg: "channel-name reply is empty or unterminated"}
	}
	return string(buf[:nul]), nil
}
