//go:build darwin

package chat

import (
	"time"

	"golang.org/x/sys/unix"
)

const maxPollEvents = 64

// kqueuePoller is the Darwin poller, grounded directly on
// chat_server.c's own kqueue use and on eventloop/poller_darwin.go's
// FastPoller. Filters are registered without EV_CLEAR so delivery stays
// level-triggered, matching epollPoller's semantics exactly: a ready fd
// keeps reporting ready until it's actually drained.
type kqueuePoller struct {
	kq        int
	buf       [maxPollEvents]unix.Kevent_t
	wantWrite map[int]bool
}

func newPoller() (poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{kq: kq, wantWrite: make(map[int]bool)}, nil
}

func makeKevent(fd int, filter int16, flags uint16) unix.Kevent_t {
	var kv unix.Kevent_t
	kv.Ident = uint64(fd)
	kv.Filter = filter
	kv.Flags = flags
	return kv
}

func (p *kqueuePoller) add(fd int, wantWrite bool) error {
	changes := []unix.Kevent_t{makeKevent(fd, unix.EVFILT_READ, unix.EV_ADD)}
	if wantWrite {
		changes = append(changes, makeKevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return err
	}
	p.wantWrite[fd] = wantWrite
	return nil
}

func (p *kqueuePoller) modify(fd int, wantWrite bool) error {
	if p.wantWrite[fd] == wantWrite {
		return nil
	}
	flags := uint16(unix.EV_ADD)
	if !wantWrite {
		flags = unix.EV_DELETE
	}
	if _, err := unix.Kevent(p.kq, []unix.Kevent_t{makeKevent(fd, unix.EVFILT_WRITE, flags)}, nil, nil); err != nil {
		return err
	}
	p.wantWrite[fd] = wantWrite
	return nil
}

func (p *kqueuePoller) remove(fd int) error {
	changes := []unix.Kevent_t{makeKevent(fd, unix.EVFILT_READ, unix.EV_DELETE)}
	if p.wantWrite[fd] {
		changes = append(changes, makeKevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}
	delete(p.wantWrite, fd)
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) wait(timeout time.Duration) ([]event, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	n, err := unix.Kevent(p.kq, nil, p.buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	events := make([]event, 0, n)
	for i := 0; i < n; i++ {
		e := p.buf[i]
		ev := event{fd: int(e.Ident)}
		switch e.Filter {
		case unix.EVFILT_READ:
			ev.readable = true
		case unix.EVFILT_WRITE:
			ev.writable = true
		}
		if e.Flags&unix.EV_EOF != 0 {
			ev.hangup = true
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.kq)
}
