package transport

import (
	"io"
	"net"

	errors "golang.org/x/xerrors"

	"github.com/lanikai/framecast/internal/packet"
)

/*
Each file travels as one frame, all integers in network byte order:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                          name length                          |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         name (no NUL)                       ...
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                        payload length                         |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                           payload                           ...
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/

const (
	// MaxFileName bounds the name field.
	MaxFileName = 255

	// DefaultMaxPayload bounds the payload field accepted by a client. A raw
	// 640x480 BGR frame plus header slack.
	DefaultMaxPayload = 640*480*3 + 4096

	lengthSize = 4
)

// WriteFrame sends name and payload as one frame, in a single vectored write
// where the connection supports it.
func WriteFrame(w io.Writer, name string, payload []byte) error {
	if len(name) > MaxFileName {
		return errors.Errorf("name too long (%d bytes)", len(name))
	}
	hdr := packet.NewWriterSize(lengthSize + len(name) + lengthSize)
	hdr.WriteUint32(uint32(len(name)))
	if err := hdr.WriteString(name); err != nil {
		return errors.Errorf("frame header: %w", err)
	}
	hdr.WriteUint32(uint32(len(payload)))

	bufs := net.Buffers{hdr.Bytes(), payload}
	_, err := bufs.WriteTo(w)
	return err
}

// ReadFrame reads one frame. Lengths above maxName or maxPayload are rejected
// with ErrMalformed before the body is read. buf is reused for the payload
// when large enough.
func ReadFrame(r io.Reader, maxName, maxPayload int, buf []byte) (name string, payload []byte, err error) {
	var prefix [lengthSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", nil, err
	}
	n := packet.NewReader(prefix[:]).ReadUint32()
	if n == 0 || uint64(n) > uint64(maxName) {
		return "", nil, errors.Errorf("name length %d: %w", n, ErrMalformed)
	}

	// The name and the payload length arrive back to back.
	hdr := make([]byte, int(n)+lengthSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return "", nil, unexpected(err)
	}
	hr := packet.NewReader(hdr)
	name = hr.ReadString(int(n))
	size := hr.ReadUint32()
	if uint64(size) > uint64(maxPayload) {
		return "", nil, errors.Errorf("payload length %d: %w", size, ErrMalformed)
	}

	if cap(buf) < int(size) {
		buf = make([]byte, size)
	}
	payload = buf[:size]
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", nil, unexpected(err)
	}
	return name, payload, nil
}

// A stream ending inside a frame is never a clean EOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
