package chat

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListeningServer(t *testing.T) (*Server, uint16) {
	t.Helper()
	s := NewServer(Options{})
	require.NoError(t, s.Listen(0))
	t.Cleanup(func() { _ = s.Close() })
	port, err := s.Port()
	require.NoError(t, err)
	return s, port
}

func rawDial(t *testing.T, port uint16) int {
	t.Helper()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.Connect(fd, &unix.SockaddrInet4{Port: int(port), Addr: [4]byte{127, 0, 0, 1}}))
	require.NoError(t, unix.SetNonblock(fd, true))
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func pumpServer(t *testing.T, s *Server, deadline time.Time, until func() bool) {
	t.Helper()
	for !until() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for server condition")
		}
		_ = s.Update(50 * time.Millisecond)
	}
}

func TestServerListenTwiceFailsAlreadyStarted(t *testing.T) {
	s, _ := newListeningServer(t)
	assert.ErrorIs(t, s.Listen(0), ErrAlreadyStarted)
}

func TestServerUpdateBeforeListenFails(t *testing.T) {
	s := NewServer(Options{})
	assert.ErrorIs(t, s.Update(time.Millisecond), ErrNotStarted)
}

func TestServerAcceptsConnectionAndReceivesLine(t *testing.T) {
	s, port := newListeningServer(t)
	fd := rawDial(t, port)

	deadline := time.Now().Add(5 * time.Second)
	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 1 })

	_, err := unix.Write(fd, []byte("hello\n"))
	require.NoError(t, err)

	var msg Message
	var ok bool
	pumpServer(t, s, deadline, func() bool {
		msg, ok = s.PopNext()
		return ok
	})
	assert.Equal(t, "hello", msg.Data)
}

func TestServerBroadcastsToOtherPeersNotSender(t *testing.T) {
	s, port := newListeningServer(t)
	fdA := rawDial(t, port)
	fdB := rawDial(t, port)

	deadline := time.Now().Add(5 * time.Second)
	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 2 })

	_, err := unix.Write(fdA, []byte("from-a\n"))
	require.NoError(t, err)

	pumpServer(t, s, deadline, func() bool {
		_, ok := s.PopNext()
		return ok
	})

	var buf [256]byte
	var n int
	var rerr error
	for deadline.After(time.Now()) {
		_ = s.Update(50 * time.Millisecond)
		n, rerr = unix.Read(fdB, buf[:])
		if n > 0 {
			break
		}
	}
	require.NoError(t, rerr)
	assert.Equal(t, "from-a\n", string(buf[:n]))

	// The sender itself should not receive its own broadcast line.
	n, err = unix.Read(fdA, buf[:])
	assert.True(t, n <= 0)
	_ = err
}

func TestServerPeerDisconnectRemovesIt(t *testing.T) {
	s, port := newListeningServer(t)
	fd := rawDial(t, port)

	deadline := time.Now().Add(5 * time.Second)
	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 1 })

	require.NoError(t, unix.Close(fd))

	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 0 })
}

func TestServerEventsReportsInputAlwaysAndOutputWhenQueued(t *testing.T) {
	s, port := newListeningServer(t)
	assert.Equal(t, EventInput, s.Events())

	fdA := rawDial(t, port)
	fdB := rawDial(t, port)
	deadline := time.Now().Add(5 * time.Second)
	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 2 })

	_, err := unix.Write(fdA, []byte("hi\n"))
	require.NoError(t, err)
	_ = fdB

	pumpServer(t, s, deadline, func() bool {
		return s.Events()&EventOutput != 0
	})
}

func TestServerPortResolvesEphemeralPort(t *testing.T) {
	_, port := newListeningServer(t)
	assert.NotZero(t, port)
}
