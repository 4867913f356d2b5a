package chat

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/SashaMusina22/sysprog-hse/internal/enginelog"
)

// Client is a non-blocking TCP chat client driven by repeated Update
// calls, grounded on chat_client.c's connect/poll/feed cycle.
type Client struct {
	mu         sync.Mutex
	fd         int
	poller     poller
	connecting bool
	in         frameBuffer
	out        sendBuffer
	messages   []Message
	logger     *enginelog.Logger
}

// NewClient returns a Client that is not yet connected.
func NewClient(opts Options) *Client {
	return &Client{fd: -1, logger: opts.Logger}
}

// Connect resolves addr ("host:port") and starts a non-blocking connect.
// If the connect does not complete synchronously, it finishes during a
// later Update — mirroring chat_client_connect's EINPROGRESS handling,
// but without blocking on it here.
func (c *Client) Connect(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if addr == "" {
		return ErrInvalidArgument
	}
	if c.fd >= 0 {
		return ErrAlreadyStarted
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return ErrNoAddr
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return ErrNoAddr
	}
	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return ErrNoAddr
	}
	ip4 := ips[0].To4()
	if ip4 == nil {
		return ErrNoAddr
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)

	connecting := false
	if err := unix.Connect(fd, sa); err != nil {
		if errors.Is(err, unix.EINPROGRESS) {
			connecting = true
		} else {
			_ = unix.Close(fd)
			return fmt.Errorf("%w: %w", ErrSys, err)
		}
	}

	p, err := newPoller()
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}
	if err := p.add(fd, true); err != nil {
		_ = p.close()
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	c.fd = fd
	c.poller = p
	c.connecting = connecting
	enginelog.Debug(c.logger, "connecting", enginelog.Str("addr", addr), enginelog.Int("fd", fd))
	return nil
}

// Update waits up to timeout for readiness on the connection, completing
// an in-progress connect, flushing queued outbound data, and draining
// inbound data into newline-framed messages for PopNext.
func (c *Client) Update(timeout time.Duration) error {
	c.mu.Lock()
	if c.fd < 0 {
		c.mu.Unlock()
		return ErrNotStarted
	}
	p := c.poller
	c.mu.Unlock()

	events, err := p.wait(timeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSys, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(events) == 0 {
		return ErrTimeout
	}

	for _, ev := range events {
		if c.fd < 0 || ev.fd != c.fd {
			continue
		}

		if c.connecting {
			if ev.writable || ev.hangup {
				errno, gerr := unix.GetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_ERROR)
				if gerr != nil || errno != 0 {
					enginelog.Error(c.logger, "connect failed", gerr)
					c.teardownLocked()
					return fmt.Errorf("%w: connect failed", ErrSys)
				}
				c.connecting = false
				_ = c.poller.modify(c.fd, !c.out.empty())
			}
			continue
		}

		if ev.hangup {
			c.teardownLocked()
			return nil
		}
		if ev.writable {
			c.flushLocked()
		}
		if ev.readable {
			c.readLocked()
		}
	}
	return nil
}

func (c *Client) teardownLocked() {
	if c.fd < 0 {
		return
	}
	_ = c.poller.remove(c.fd)
	_ = unix.Close(c.fd)
	_ = c.poller.close()
	c.fd = -1
}

func (c *Client) flushLocked() {
	pending := c.out.pending()
	if len(pending) == 0 {
		_ = c.poller.modify(c.fd, false)
		return
	}

	n, err := unix.Write(c.fd, pending)
	if n > 0 {
		c.out.advance(n)
	}
	if err != nil && !isWouldBlock(err) {
		c.teardownLocked()
		return
	}
	if c.out.empty() {
		_ = c.poller.modify(c.fd, false)
	}
}

// readLocked drains the socket into the inbound buffer and splits it
// into newline-framed messages — chat_client.c's update left this branch
// as a bare comment ("Existing code for reading data can be added
// here"); this is that code.
func (c *Client) readLocked() {
	var buf [maxRecvChunk]byte
	n, err := unix.Read(c.fd, buf[:])
	if n <= 0 {
		if n == 0 || (err != nil && !isWouldBlock(err)) {
			c.teardownLocked()
		}
		return
	}

	c.in.write(buf[:n])
	for {
		line, ok := c.in.popLine()
		if !ok {
			break
		}
		c.messages = append(c.messages, Message{Data: line})
	}
}

// Feed queues msg for sending, trimming leading/trailing whitespace and
// cutting it at the first embedded newline the way chat_client_feed
// does. An all-whitespace message is silently dropped.
func (c *Client) Feed(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fd < 0 {
		return ErrNotStarted
	}

	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return nil
	}

	wasEmpty := c.out.empty()
	c.out.write([]byte(trimmed))
	c.out.write([]byte{'\n'})
	if wasEmpty && !c.connecting {
		_ = c.poller.modify(c.fd, true)
	}
	return nil
}

// PopNext dequeues the oldest received message, or reports false if none
// is pending.
func (c *Client) PopNext() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return msg, true
}

// Descriptor returns the connection's file descriptor, or -1 if not
// connected.
func (c *Client) Descriptor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fd
}

// Events reports which of EventInput/EventOutput the client currently
// cares about.
func (c *Client) Events() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fd < 0 {
		return 0
	}
	if c.connecting {
		return EventOutput
	}
	events := EventInput
	if !c.out.empty() {
		events |= EventOutput
	}
	return events
}

// Close tears down the connection and its poller.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	return nil
}
