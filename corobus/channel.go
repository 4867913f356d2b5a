package corobus

// channel is one bounded, buffered FIFO of uint32 items plus its two
// waiter lists. Grounded on corobus.c's struct coro_bus_channel.
//
// Invariant: 0 <= queue.Len() <= capacity; a waiter list for side X is
// non-empty only while side X is saturated at the moment a waiter is
// queued.
type channel struct {
	capacity int
	queue    *ringQueue[uint32]
	sendersQ waiterList // producers waiting for space
	recvQ    waiterList // consumers waiting for data
}

func newChannel(capacity int) *channel {
	hint := capacity
	if hint <= 0 {
		hint = 1
	}
	return &channel{capacity: capacity, queue: newRingQueue[uint32](hint)}
}

// tryPush enqueues one item if there is room, waking one waiting consumer.
// Must be called with the owning Bus's mutex held.
func (c *channel) tryPush(v uint32) bool {
	if c.queue.Len() >= c.capacity {
		return false
	}
	c.queue.Push(v)
	c.recvQ.wakeFirst()
	return true
}

// tryPushMany enqueues as many of vals as fit (up to capacity), returning
// the count actually enqueued. Must be called with the mutex held.
func (c *channel) tryPushMany(vals []uint32) int {
	space := c.capacity - c.queue.Len()
	if space <= 0 {
		return 0
	}
	n := c.queue.PushMany(vals, space)
	if n > 0 {
		c.recvQ.wakeFirst()
	}
	return n
}

// tryPop dequeues one item if available, waking one waiting producer. Must
// be called with the mutex held.
func (c *channel) tryPop() (uint32, bool) {
	if c.queue.Len() == 0 {
		return 0, false
	}
	v := c.queue.Pop()
	c.sendersQ.wakeFirst()
	return v, true
}

// tryPopMany dequeues up to len(dst) items, returning the count actually
// dequeued. Must be called with the mutex held.
func (c *channel) tryPopMany(dst []uint32) int {
	n := c.queue.PopMany(dst)
	if n > 0 {
		c.sendersQ.wakeFirst()
	}
	return n
}

func (c *channel) full() bool {
	return c.queue.Len() >= c.capacity
}

func (c *channel) empty() bool {
	return c.queue.Len() == 0
}
