package userfs

import "errors"

var (
	// ErrNoFile is returned when a name or descriptor doesn't resolve to
	// an open file.
	ErrNoFile = errors.New("userfs: no such file")

	// ErrNoMem is returned when a Write or Resize would take a file past
	// maxFileSize.
	ErrNoMem = errors.New("userfs: out of memory")

	// ErrNoPermission is returned when a descriptor's flags forbid the
	// requested operation.
	ErrNoPermission = errors.New("userfs: operation not permitted on this descriptor")
)
