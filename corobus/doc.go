// Package corobus is a bounded, in-process message bus for communicating
// between goroutines by integer-addressed channels of uint32 values.
//
// A Bus holds any number of independently-opened channels, each a bounded
// FIFO. Producers and consumers block on Send/Recv when the channel is
// saturated or empty, and are woken in FIFO order as space or data becomes
// available. Non-blocking TrySend/TryRecv variants and their vectorized
// counterparts (TrySendV/TryRecvV and friends) allow transferring several
// items in a single critical section. Broadcast pushes one value into
// every open channel at once, blocking until every channel can accept it.
package corobus
