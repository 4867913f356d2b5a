package chat

import "bytes"

// initialBufSize matches chat_server.c's BUFFER_SIZE: the baseline chunk
// a freshly allocated in/out buffer is sized to.
const initialBufSize = 65536

// growBuffer doubles buf's capacity, starting from initialBufSize, until
// it can hold need bytes without reallocating again, preserving existing
// content — the same growth rule process_client_input and
// chat_client_feed apply by hand to their in_buf/out_buf.
func growBuffer(buf []byte, need int) []byte {
	if need <= cap(buf) {
		return buf
	}
	newCap := cap(buf)
	if newCap == 0 {
		newCap = initialBufSize
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(buf), newCap)
	copy(grown, buf)
	return grown
}

// frameBuffer accumulates inbound bytes and peels off complete
// newline-terminated lines, compacting the remainder forward — the Go
// equivalent of process_client_input's in_buf scan-and-memmove.
type frameBuffer struct {
	data []byte
}

func (f *frameBuffer) write(p []byte) {
	f.data = growBuffer(f.data, len(f.data)+len(p))
	f.data = append(f.data, p...)
}

// popLine extracts the first complete line (without its newline) and
// shifts any remaining bytes to the front of the buffer. ok is false if
// no newline has arrived yet.
func (f *frameBuffer) popLine() (line string, ok bool) {
	idx := bytes.IndexByte(f.data, '\n')
	if idx < 0 {
		return "", false
	}
	line = string(f.data[:idx])
	remaining := copy(f.data, f.data[idx+1:])
	f.data = f.data[:remaining]
	return line, true
}

// sendBuffer is an outbound byte queue with a read cursor, mirroring
// out_buf/out_buf_pos: bytes before pos have already been written to the
// socket and are reclaimed once every byte drains.
type sendBuffer struct {
	data []byte
	pos  int
}

func (s *sendBuffer) write(p []byte) {
	s.data = growBuffer(s.data, len(s.data)+len(p))
	s.data = append(s.data, p...)
}

func (s *sendBuffer) pending() []byte {
	return s.data[s.pos:]
}

func (s *sendBuffer) advance(n int) {
	s.pos += n
	if s.pos >= len(s.data) {
		s.data = s.data[:0]
		s.pos = 0
	}
}

func (s *sendBuffer) empty() bool {
	return s.pos >= len(s.data)
}
