package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/SashaMusina22/sysprog-hse/internal/enginelog"
)

const maxRecvChunk = 65536

// Server is a non-blocking TCP chat server: any newline-terminated line
// a peer sends is broadcast to every other connected peer and queued
// for PopNext, grounded on chat_server.c's accept/broadcast/process
// loop.
type Server struct {
	mu       sync.Mutex
	listenFD int
	poller   poller
	peers    []*peer
	messages []Message
	logger   *enginelog.Logger
}

// NewServer returns a Server that is not yet listening.
func NewServer(opts Options) *Server {
	return &Server{listenFD: -1, logger: opts.Logger}
}

// Listen binds and starts listening on port (0 lets the kernel choose
// one — see Port). It fails with ErrAlreadyStarted if already listening.
func (s *Server) Listen(port uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listenFD >= 0 {
		return ErrAlreadyStarted
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)}); err != nil {
		_ = unix.Close(fd)
		if errors.Is(err, unix.EADDRINUSE) {
			return ErrPortBusy
		}
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	p, err := newPoller()
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := p.add(fd, false); err != nil {
		_ = p.close()
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	s.listenFD = fd
	s.poller = p
	enginelog.Info(s.logger, "chat server listening", enginelog.Int("fd", fd))
	return nil
}

// Port reports the port this server is actually bound to, resolving the
// ephemeral port the kernel picked when Listen was called with 0.
func (s *Server) Port() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listenFD < 0 {
		return 0, ErrNotStarted
	}
	sa, err := unix.Getsockname(s.listenFD)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSys, err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, ErrSys
	}
	return uint16(sa4.Port), nil
}

// Update waits up to timeout for readiness events and processes them:
// accepting new connections, draining readable peers into broadcast
// lines, and flushing queued outbound data. A negative timeout blocks
// indefinitely. ErrTimeout is returned when nothing happened within the
// given timeout, matching chat_server_update's CHAT_ERR_TIMEOUT.
func (s *Server) Update(timeout time.Duration) error {
	s.mu.Lock()
	if s.listenFD < 0 {
		s.mu.Unlock()
		return ErrNotStarted
	}
	p := s.poller
	s.mu.Unlock()

	events, err := p.wait(timeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	processed := false
	for _, ev := range events {
		if ev.fd == s.listenFD {
			s.acceptLocked()
			processed = true
			continue
		}
		pr := s.findPeerLocked(ev.fd)
		if pr == nil {
			continue
		}
		if ev.hangup {
			s.closePeerLocked(pr)
			processed = true
			continue
		}
		if ev.readable && s.readPeerLocked(pr) {
			processed = true
		}
		if ev.writable {
			s.flushPeerLocked(pr)
			processed = true
		}
	}
	s.reapClosedLocked()

	if !processed {
		return ErrTimeout
	}
	return nil
}

func (s *Server) acceptLocked() {
	fd, _, err := unix.Accept(s.listenFD)
	if err != nil {
		return
	}
	_ = unix.SetNonblock(fd, true)
	if err := s.poller.add(fd, false); err != nil {
		_ = unix.Close(fd)
		return
	}
	s.peers = append(s.peers, newPeer(fd))
	enginelog.Debug(s.logger, "peer connected", enginelog.Int("fd", fd))
}

func (s *Server) findPeerLocked(fd int) *peer {
	for _, pr := range s.peers {
		if pr.fd == fd {
			return pr
		}
	}
	return nil
}

func (s *Server) readPeerLocked(pr *peer) bool {
	var buf [maxRecvChunk]byte
	n, err := unix.Read(pr.fd, buf[:])
	if n <= 0 {
		if n == 0 || (err != nil && !isWouldBlock(err)) {
			s.closePeerLocked(pr)
			return true
		}
		return false
	}

	pr.in.write(buf[:n])
	for {
		line, ok := pr.in.popLine()
		if !ok {
			break
		}
		s.messages = append(s.messages, Message{Data: line})
		s.broadcastLocked(line, pr)
	}
	return true
}

func (s *Server) broadcastLocked(line string, sender *peer) {
	payload := []byte(line + "\n")
	for _, pr := range s.peers {
		if pr == sender || pr.closed {
			continue
		}
		wasEmpty := pr.out.empty()
		pr.out.write(payload)
		if wasEmpty {
			_ = s.poller.modify(pr.fd, true)
		}
	}
}

func (s *Server) flushPeerLocked(pr *peer) {
	pending := pr.out.pending()
	if len(pending) == 0 {
		_ = s.poller.modify(pr.fd, false)
		return
	}

	n, err := unix.Write(pr.fd, pending)
	if n > 0 {
		pr.out.advance(n)
	}
	if err != nil && !isWouldBlock(err) {
		s.closePeerLocked(pr)
		return
	}
	if pr.out.empty() {
		_ = s.poller.modify(pr.fd, false)
	}
}

func (s *Server) closePeerLocked(pr *peer) {
	if pr.closed {
		return
	}
	pr.closed = true
	_ = s.poller.remove(pr.fd)
	_ = unix.Close(pr.fd)
}

func (s *Server) reapClosedLocked() {
	live := s.peers[:0]
	for _, pr := range s.peers {
		if pr.closed {
			continue
		}
		live = append(live, pr)
	}
	s.peers = live
}

// PopNext dequeues the oldest message received across every peer, in
// receipt order, or reports false if none is pending.
func (s *Server) PopNext() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return Message{}, false
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return msg, true
}

// Socket returns the listening socket's file descriptor, or -1 if not
// listening.
func (s *Server) Socket() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenFD
}

// Events reports which of EventInput/EventOutput the server currently
// cares about — EventInput whenever listening, EventOutput whenever any
// peer has data queued to send.
func (s *Server) Events() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listenFD < 0 {
		return 0
	}
	events := EventInput
	for _, pr := range s.peers {
		if !pr.out.empty() {
			events |= EventOutput
			break
		}
	}
	return events
}

// Close shuts down the listening socket, every connected peer, and the
// poller.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listenFD < 0 {
		return nil
	}
	for _, pr := range s.peers {
		_ = unix.Close(pr.fd)
	}
	s.peers = nil

	err := s.poller.close()
	_ = unix.Close(s.listenFD)
	s.listenFD = -1
	return err
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
