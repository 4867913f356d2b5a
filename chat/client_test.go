package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pumpClient(t *testing.T, c *Client, deadline time.Time, until func() bool) {
	t.Helper()
	for !until() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for client condition")
		}
		_ = c.Update(50 * time.Millisecond)
	}
}

func TestClientConnectRequiresAddress(t *testing.T) {
	c := NewClient(Options{})
	assert.ErrorIs(t, c.Connect(""), ErrInvalidArgument)
}

func TestClientConnectTwiceFailsAlreadyStarted(t *testing.T) {
	s, port := newListeningServer(t)
	c := NewClient(Options{})
	require.NoError(t, c.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = c.Close() })
	assert.ErrorIs(t, c.Connect(fmt.Sprintf("127.0.0.1:%d", port)), ErrAlreadyStarted)
	_ = s
}

func TestClientFeedBeforeConnectFails(t *testing.T) {
	c := NewClient(Options{})
	assert.ErrorIs(t, c.Feed("hi"), ErrNotStarted)
}

func TestClientFeedDropsWhitespaceOnlyMessage(t *testing.T) {
	s, port := newListeningServer(t)
	c := NewClient(Options{})
	require.NoError(t, c.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Feed("   \t  "))
	assert.True(t, c.out.empty())
	_ = s
}

func TestClientFeedTrimsAndQueuesSendBuffer(t *testing.T) {
	s, port := newListeningServer(t)
	c := NewClient(Options{})
	require.NoError(t, c.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Feed("  hello there  "))
	assert.Equal(t, "hello there\n", string(c.out.pending()))
	_ = s
}

func TestClientEndToEndSendAndReceiveThroughServer(t *testing.T) {
	s, port := newListeningServer(t)

	alice := NewClient(Options{})
	require.NoError(t, alice.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = alice.Close() })

	bob := NewClient(Options{})
	require.NoError(t, bob.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = bob.Close() })

	deadline := time.Now().Add(5 * time.Second)
	pumpServer(t, s, deadline, func() bool { return len(s.peers) == 2 })

	require.NoError(t, alice.Feed("hello bob"))
	pumpClient(t, alice, deadline, func() bool { return alice.out.empty() })

	pumpServer(t, s, deadline, func() bool {
		_, ok := s.PopNext()
		return ok
	})

	var msg Message
	var ok bool
	pumpClient(t, bob, deadline, func() bool {
		msg, ok = bob.PopNext()
		return ok
	})
	assert.Equal(t, "hello bob", msg.Data)
}

func TestClientDescriptorAndEventsReflectState(t *testing.T) {
	s, port := newListeningServer(t)
	c := NewClient(Options{})
	assert.Equal(t, -1, c.Descriptor())
	assert.Equal(t, 0, c.Events())

	require.NoError(t, c.Connect(fmt.Sprintf("127.0.0.1:%d", port)))
	t.Cleanup(func() { _ = c.Close() })
	assert.GreaterOrEqual(t, c.Descriptor(), 0)
	_ = s
}
