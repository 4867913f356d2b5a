package corobus

// waiter is a suspended caller's parking ticket: park on wake, and the
// caller is unparked by a send on wake.
//
// Go has no cooperative suspend/resume primitive like the source's
// coro_suspend/coro_wakeup pair, so a waiter is realized as a buffered
// channel of capacity 1: wakeFirst sends without blocking (the waiter is
// always either parked on the receive or about to be), and closing a bus
// channel wakes every remaining waiter on it by sending once to each in
// turn.
type waiter struct {
	wake chan struct{}
}

func newWaiter() *waiter {
	return &waiter{wake: make(chan struct{}, 1)}
}

// waiterList is an ordered FIFO of parked waiters, woken head-first.
//
// Grounded on corobus.c's wakeup_queue: a list of suspended tasks, linked
// on suspension and unlinked on resumption regardless of why resumed.
type waiterList struct {
	items []*waiter
}

// pushBack enqueues a waiter at the tail.
func (l *waiterList) pushBack(w *waiter) {
	l.items = append(l.items, w)
}

// remove unlinks w if present; called by a waiter on resumption, whether it
// woke due to a real event or a spurious wakeup.
func (l *waiterList) remove(w *waiter) {
	for i, it := range l.items {
		if it == w {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// wakeFirst wakes the head of the list without unlinking it; the woken
// waiter unlinks itself via remove once it resumes and rechecks its
// condition, matching wq_wakeup_first + the caller's own unlink-on-wake.
func (l *waiterList) wakeFirst() {
	if len(l.items) == 0 {
		return
	}
	w := l.items[0]
	select {
	case w.wake <- struct{}{}:
	default:
		// already has a pending wake (e.g. from a prior close pass); no-op.
	}
}

// wakeAll wakes every waiter currently linked, without unlinking them; used
// by channel close so each waiter observes the close on its own resumption.
func (l *waiterList) wakeAll() {
	for _, w := range l.items {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

func (l *waiterList) empty() bool {
	return len(l.items) == 0
}
