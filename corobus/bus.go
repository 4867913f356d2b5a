// Package corobus implements a bounded, in-process multi-producer/
// multi-consumer message bus: a sparse vector of channel slots, each a
// bounded FIFO of uint32 values with independent producer/consumer waiter
// queues.
//
// It is the Go realization of the coro_bus channel design from the
// teaching OS course this module is adapted from: coroutine suspend/resume
// maps onto goroutines parked on a buffered channel.
package corobus

import (
	"errors"
	"sync"

	"github.com/SashaMusina22/sysprog-hse/internal/enginelog"
)

// Options configures a Bus. The zero value is a valid Bus with no logger.
type Options struct {
	// Logger receives structured diagnostics for channel lifecycle events.
	// A nil Logger disables logging entirely.
	Logger *enginelog.Logger
}

// Bus holds a sparse vector of channel slots, indexed by a stable integer
// id. A nil slot means the channel was never opened, or was closed.
type Bus struct {
	mu               sync.Mutex
	slots            []*channel
	broadcastWaiters waiterList
	logger           *enginelog.Logger
}

// New constructs an empty Bus.
func New(opts Options) *Bus {
	return &Bus{logger: opts.Logger}
}

func (b *Bus) chanAt(id int) *channel {
	if id < 0 || id >= len(b.slots) {
		return nil
	}
	return b.slots[id]
}

// Open allocates a channel with the given bounded capacity, reusing an
// empty slot if one exists, else extending the slot vector. The returned
// id is stable until Close.
func (b *Bus) Open(capacity int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.slots {
		if c == nil {
			b.slots[i] = newChannel(capacity)
			enginelog.Debug(b.logger, "channel opened", enginelog.Int("id", i), enginelog.Int("capacity", capacity))
			return i
		}
	}
	b.slots = append(b.slots, newChannel(capacity))
	id := len(b.slots) - 1
	enginelog.Debug(b.logger, "channel opened", enginelog.Int("id", id), enginelog.Int("capacity", capacity))
	return id
}

// Close marks the channel's slot empty immediately, then wakes every
// waiter (producers, then consumers) so each observes the channel as gone
// on its own resumption and returns ErrNoChannel.
func (b *Bus) Close(id int) error {
	b.mu.Lock()
	c := b.chanAt(id)
	if c == nil {
		b.mu.Unlock()
		return ErrNoChannel
	}
	b.slots[id] = nil
	b.mu.Unlock()

	c.sendersQ.wakeAll()
	c.recvQ.wakeAll()
	b.broadcastWaiters.wakeFirst()

	enginelog.Debug(b.logger, "channel closed", enginelog.Int("id", id))
	return nil
}

// TrySend enqueues v without blocking. It fails with ErrNoChannel if the
// slot is empty, or ErrWouldBlock if the channel is at capacity.
func (b *Bus) TrySend(id int, v uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chanAt(id)
	if c == nil {
		return ErrNoChannel
	}
	if !c.tryPush(v) {
		return ErrWouldBlock
	}
	return nil
}

// Send enqueues v, blocking until there is room or the channel closes.
func (b *Bus) Send(id int, v uint32) error {
	for {
		err := b.TrySend(id, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return err
		}
		if !b.waitOnSend(id) {
			return ErrNoChannel
		}
	}
}

// TryRecv dequeues one item without blocking. It fails with ErrNoChannel if
// the slot is empty, or ErrWouldBlock if the channel has no items.
func (b *Bus) TryRecv(id int) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chanAt(id)
	if c == nil {
		return 0, ErrNoChannel
	}
	v, ok := c.tryPop()
	if !ok {
		return 0, ErrWouldBlock
	}
	b.broadcastWaiters.wakeFirst()
	return v, nil
}

// Recv dequeues one item, blocking until one is available or the channel
// closes.
func (b *Bus) Recv(id int) (uint32, error) {
	for {
		v, err := b.TryRecv(id)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return 0, err
		}
		if !b.waitOnRecv(id) {
			return 0, ErrNoChannel
		}
	}
}

// TrySendV enqueues as many of vals as fit in a single critical section,
// returning the count actually transferred.
func (b *Bus) TrySendV(id int, vals []uint32) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chanAt(id)
	if c == nil {
		return 0, ErrNoChannel
	}
	n := c.tryPushMany(vals)
	if n == 0 {
		return 0, ErrWouldBlock
	}
	return n, nil
}

// SendV enqueues all of vals, blocking as needed, but returns partial
// progress as soon as any item has been sent rather than blocking again —
// mirroring coro_bus_send_v's "return what's been sent so far" contract.
func (b *Bus) SendV(id int, vals []uint32) (int, error) {
	sent := 0
	for sent < len(vals) {
		n, err := b.TrySendV(id, vals[sent:])
		if n > 0 {
			sent += n
			if sent == len(vals) {
				return sent, nil
			}
			continue
		}
		if err != nil && !errors.Is(err, ErrWouldBlock) {
			return sent, err
		}
		if sent > 0 {
			return sent, nil
		}
		if !b.waitOnSend(id) {
			return sent, ErrNoChannel
		}
	}
	return sent, nil
}

// TryRecvV dequeues whatever is available, up to len(dst), in a single
// critical section, returning the count actually transferred.
func (b *Bus) TryRecvV(id int, dst []uint32) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chanAt(id)
	if c == nil {
		return 0, ErrNoChannel
	}
	n := c.tryPopMany(dst)
	if n == 0 {
		return 0, ErrWouldBlock
	}
	b.broadcastWaiters.wakeFirst()
	return n, nil
}

// RecvV dequeues whatever is available into dst in one shot, blocking only
// until at least one item is available.
func (b *Bus) RecvV(id int, dst []uint32) (int, error) {
	for {
		n, err := b.TryRecvV(id, dst)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, ErrWouldBlock) {
			return 0, err
		}
		if !b.waitOnRecv(id) {
			return 0, ErrNoChannel
		}
	}
}

// TryBroadcast pushes v into every open channel atomically: it fails with
// ErrWouldBlock if any channel is full, or ErrNoChannel if none are open.
func (b *Bus) TryBroadcast(v uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for _, c := range b.slots {
		if c == nil {
			continue
		}
		found = true
		if c.full() {
			return ErrWouldBlock
		}
	}
	if !found {
		return ErrNoChannel
	}
	for _, c := range b.slots {
		if c != nil {
			c.tryPush(v)
		}
	}
	return nil
}

// Broadcast pushes v into every open channel, blocking if any is full
// until all can accept it. This realizes blocking semantics the source's
// coro_bus_broadcast never actually implemented: it only ever attempted
// one non-blocking pass.
func (b *Bus) Broadcast(v uint32) error {
	for {
		err := b.TryBroadcast(v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return err
		}
		b.waitOnBroadcast()
	}
}

func (b *Bus) waitOnSend(id int) bool {
	b.mu.Lock()
	c := b.chanAt(id)
	if c == nil {
		b.mu.Unlock()
		return false
	}
	w := newWaiter()
	c.sendersQ.pushBack(w)
	b.mu.Unlock()

	<-w.wake

	b.mu.Lock()
	c.sendersQ.remove(w)
	b.mu.Unlock()
	return true
}

func (b *Bus) waitOnRecv(id int) bool {
	b.mu.Lock()
	c := b.chanAt(id)
	if c == nil {
		b.mu.Unlock()
		return false
	}
	w := newWaiter()
	c.recvQ.pushBack(w)
	b.mu.Unlock()

	<-w.wake

	b.mu.Lock()
	c.recvQ.remove(w)
	b.mu.Unlock()
	return true
}

func (b *Bus) waitOnBroadcast() {
	b.mu.Lock()
	w := newWaiter()
	b.broadcastWaiters.pushBack(w)
	b.mu.Unlock()

	<-w.wake

	b.mu.Lock()
	b.broadcastWaiters.remove(w)
	b.mu.Unlock()
}
