package userfs

// OpenFlag controls which operations a descriptor permits. The zero
// value grants full read/write access, a legacy convention carried over
// unchanged from the course filesystem's flag semantics.
type OpenFlag int

const (
	ReadOnly OpenFlag = 1 << iota
	WriteOnly
	ReadWrite
	Create
)

// descriptor is one open handle onto a file: its own read/write cursor
// (block index plus in-block offset), independent of every other open
// handle on the same file.
type descriptor struct {
	file     *file
	blockNum int
	offset   int
	flags    OpenFlag
}

func (d *descriptor) writable() bool {
	return d.flags == 0 || d.flags&(Create|WriteOnly|ReadWrite) != 0
}

func (d *descriptor) readable() bool {
	return d.flags == 0 || d.flags&(Create|ReadOnly|ReadWrite) != 0
}
