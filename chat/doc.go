// Package chat implements a non-blocking TCP chat server and client.
// Both sides are driven by repeated Update calls: an internal readiness
// multiplexer (epoll on Linux, kqueue on Darwin) reports which sockets
// are readable or writable, data is shuttled through growable in/out
// buffers, and complete newline-terminated lines are queued for PopNext.
// Neither Server nor Client ever blocks in Update past the given
// timeout.
package chat
