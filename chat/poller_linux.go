//go:build linux

package chat

import (
	"time"

	"golang.org/x/sys/unix"
)

const maxPollEvents = 64

// epollPoller is the Linux poller, grounded on eventloop/poller_linux.go's
// FastPoller: one epoll instance, a preallocated event buffer, level-
// triggered by construction (no EPOLLET) so a tick that only partially
// drains a socket simply sees it ready again next Wait.
type epollPoller struct {
	epfd int
	buf  [maxPollEvents]unix.EpollEvent
}

func newPoller() (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: fd}, nil
}

func epollMask(wantWrite bool) uint32 {
	mask := uint32(unix.EPOLLIN)
	if wantWrite {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (p *epollPoller) add(fd int, wantWrite bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: epollMask(wantWrite), Fd: int32(fd)})
}

func (p *epollPoller) modify(fd int, wantWrite bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: epollMask(wantWrite), Fd: int32(fd)})
}

func (p *epollPoller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) wait(timeout time.Duration) ([]event, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	n, err := unix.EpollWait(p.epfd, p.buf[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	events := make([]event, 0, n)
	for i := 0; i < n; i++ {
		e := p.buf[i]
		events = append(events, event{
			fd:       int(e.Fd),
			readable: e.Events&unix.EPOLLIN != 0,
			writable: e.Events&unix.EPOLLOUT != 0,
			hangup:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
		})
	}
	return events, nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
