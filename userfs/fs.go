package userfs

import (
	"sync"

	"github.com/SashaMusina22/sysprog-hse/internal/enginelog"
)

// Options configures an FS. The zero value is a valid FS with no logger.
type Options struct {
	Logger *enginelog.Logger
}

// FS is an in-memory, block-structured file store. Every operation is
// safe for concurrent use; Open/Close/Delete mutate the shared file and
// descriptor tables under a single lock, mirroring the single-threaded
// course filesystem's invariants in a concurrent setting.
type FS struct {
	mu     sync.Mutex
	files  map[string]*file
	fds    *descTable
	logger *enginelog.Logger
}

// New returns an empty FS.
func New(opts Options) *FS {
	return &FS{files: make(map[string]*file), fds: newDescTable(), logger: opts.Logger}
}

// Open resolves name to a file, creating it when flags includes Create
// and no file by that name exists, and returns a new descriptor number
// for it.
func (fs *FS) Open(name string, flags OpenFlag) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, ok := fs.files[name]
	if !ok {
		if flags&Create == 0 {
			return -1, ErrNoFile
		}
		f = newFile(name)
		fs.files[name] = f
	}

	fd := fs.fds.insert(&descriptor{file: f, flags: flags})
	f.refs++
	enginelog.Debug(fs.logger, "file opened", enginelog.Str("name", name), enginelog.Int("fd", fd))
	return fd, nil
}

// Write appends buf at fd's current cursor, advancing it and allocating
// new blocks as needed. It fails with ErrNoMem rather than let a file
// grow past maxFileSize.
func (fs *FS) Write(fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d := fs.fds.at(fd)
	if d == nil {
		return 0, ErrNoFile
	}
	if !d.writable() {
		return 0, ErrNoPermission
	}

	f := d.file
	blk := f.blocks[d.blockNum]
	total := int64(blk.used) + int64(d.blockNum)*blockSize
	if total+int64(len(buf)) > maxFileSize {
		return 0, ErrNoMem
	}

	written := 0
	for written < len(buf) {
		if d.offset == blockSize {
			d.blockNum++
			if d.blockNum == len(f.blocks) {
				f.blocks = append(f.blocks, &block{})
			}
			blk = f.blocks[d.blockNum]
			d.offset = 0
		}
		left := blockSize - d.offset
		if n := len(buf) - written; n < left {
			left = n
		}
		copy(blk.mem[d.offset:], buf[written:written+left])
		d.offset += left
		written += left
		if d.offset > blk.used {
			blk.used = d.offset
		}
	}
	return written, nil
}

// Read fills buf from fd's current cursor, advancing it, and returns the
// number of bytes actually read — fewer than len(buf) at end of file.
func (fs *FS) Read(fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d := fs.fds.at(fd)
	if d == nil {
		return 0, ErrNoFile
	}
	if !d.readable() {
		return 0, ErrNoPermission
	}

	f := d.file
	blk := f.blocks[d.blockNum]
	total := 0
	for total < len(buf) {
		if d.offset == blockSize {
			d.blockNum++
			if d.blockNum >= len(f.blocks) {
				return total, nil
			}
			blk = f.blocks[d.blockNum]
			d.offset = 0
		}
		avail := blk.used - d.offset
		if n := len(buf) - total; n < avail {
			avail = n
		}
		if avail <= 0 {
			return total, nil
		}
		copy(buf[total:total+avail], blk.mem[d.offset:d.offset+avail])
		d.offset += avail
		total += avail
	}
	return total, nil
}

// Close releases fd. If the underlying file was deleted while this was
// its last open descriptor, the file becomes unreachable once this call
// returns.
func (fs *FS) Close(fd int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d := fs.fds.at(fd)
	if d == nil {
		return ErrNoFile
	}
	d.file.refs--
	fs.fds.free(fd)
	return nil
}

// Delete unlinks name. A file with open descriptors survives, invisible
// to future Opens, until its last descriptor closes.
func (fs *FS) Delete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, ok := fs.files[name]
	if !ok {
		return ErrNoFile
	}
	delete(fs.files, name)
	if f.refs > 0 {
		f.deleted = true
	}
	return nil
}

// Resize truncates or zero-extends fd's file to exactly newSize bytes,
// adjusting the cursors of every other descriptor open on the same file
// so none is left pointing past the new end.
func (fs *FS) Resize(fd int, newSize int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d := fs.fds.at(fd)
	if d == nil {
		return ErrNoFile
	}
	if !d.writable() {
		return ErrNoPermission
	}
	if newSize > maxFileSize {
		return ErrNoMem
	}

	f := d.file
	size := int64(0)
	blocks := 0
	shrinkAt := -1
	for i, b := range f.blocks {
		size += int64(b.used)
		if size > newSize {
			shrinkAt = i
			break
		}
		blocks++
	}

	if shrinkAt >= 0 {
		f.blocks = f.blocks[:shrinkAt+1]
		blk := f.blocks[shrinkAt]
		blk.used = int(newSize - int64(blocks)*blockSize)
		clear(blk.mem[blk.used:])

		for _, other := range fs.fds.slots {
			if other == nil || other.file != f {
				continue
			}
			if other.blockNum >= blocks {
				other.blockNum = blocks
				if other.offset > blk.used {
					other.offset = blk.used
				}
			}
		}
		return nil
	}

	if n := len(f.blocks); n > 0 {
		last := f.blocks[n-1]
		size += int64(blockSize - last.used)
		last.used = blockSize
	}
	for size < newSize {
		f.blocks = append(f.blocks, &block{used: blockSize})
		size += blockSize
		blocks++
	}
	f.blocks[len(f.blocks)-1].used = int(newSize - int64(len(f.blocks)-1)*blockSize)
	return nil
}

// Size reports fd's file's current total size in bytes.
func (fs *FS) Size(fd int) (int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d := fs.fds.at(fd)
	if d == nil {
		return 0, ErrNoFile
	}
	return d.file.size(), nil
}
