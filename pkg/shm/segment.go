package shm

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	// ErrSegmentMissing is returned by Open when no segment exists at the key.
	ErrSegmentMissing = errors.New("shm: segment does not exist")

	// ErrSizeMismatch is returned when a segment found at a well-known key is
	// smaller than the caller expects. This means the processes sharing the
	// key were built against different layouts and must not proceed.
	ErrSizeMismatch = errors.New("shm: segment size mismatch")
)

// Segment is an attached SysV shared memory segment. It is created by
// whichever process wins the create race at a given key; every other process
// attaches to the same region.
type Segment struct {
	Key  int
	ID   int
	mem  []byte
	size int
}

// Create attaches to the segment at key, creating it first if it does not
// exist. Creation is attempted exclusively; on EEXIST the call falls back to
// a plain attach, so processes may start in any order and the first one in
// transparently wins creation. The requested size is rounded up to the page
// size. The second return value reports whether this call created the
// segment (a creator must initialize the region before publishing its key).
func Create(key, size int) (*Segment, bool, error) {
	size = pageAlign(size)

	created := true
	id, err := unix.SysvShmGet(key, size, unix.IPC_CREAT|unix.IPC_EXCL|0o666)
	if err != nil {
		if !errors.Is(err, unix.EEXIST) {
			return nil, false, fmt.Errorf("shm: shmget(key=0x%x, size=%d, create): %w", key, size, err)
		}
		created = false
		id, err = unix.SysvShmGet(key, size, 0o666)
		if err != nil {
			return nil, false, fmt.Errorf("shm: shmget(key=0x%x, size=%d, attach): %w", key, size, err)
		}
	}

	seg, err := attach(key, id, size)
	if err != nil {
		return nil, false, err
	}
	return seg, created, nil
}

// Open attaches to an existing segment at key; it never creates one. A
// process that requires a segment another process is responsible for creating
// uses Open so that a missing or undersized segment fails fast at startup.
func Open(key, size int) (*Segment, error) {
	size = pageAlign(size)

	id, err := unix.SysvShmGet(key, size, 0o666)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("shm: open key=0x%x: %w", key, ErrSegmentMissing)
		}
		if errors.Is(err, unix.EINVAL) {
			// shmget rejects a size larger than the existing segment.
			return nil, fmt.Errorf("shm: open key=0x%x want %d bytes: %w", key, size, ErrSizeMismatch)
		}
		return nil, fmt.Errorf("shm: shmget(key=0x%x, size=%d): %w", key, size, err)
	}

	return attach(key, id, size)
}

func attach(key, id, size int) (*Segment, error) {
	mem, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: shmat(key=0x%x, id=%d): %w", key, id, err)
	}
	if len(mem) < size {
		unix.SysvShmDetach(mem)
		return nil, fmt.Errorf("shm: key=0x%x has %d bytes, want %d: %w", key, len(mem), size, ErrSizeMismatch)
	}
	return &Segment{Key: key, ID: id, mem: mem, size: size}, nil
}

// Detach unmaps the segment from this process. Other attached processes are
// unaffected. Calling Detach more than once is a no-op.
func (s *Segment) Detach() error {
	if s.mem == nil {
		return nil
	}
	if err := unix.SysvShmDetach(s.mem); err != nil {
		return fmt.Errorf("shm: shmdt(key=0x%x): %w", s.Key, err)
	}
	s.mem = nil
	return nil
}

// Remove marks the segment for destruction once every attacher has detached.
// Processes may race to clean up: a segment already removed by someone else
// is not an error.
func (s *Segment) Remove() error {
	_, err := unix.SysvShmCtl(s.ID, unix.IPC_RMID, nil)
	if err != nil {
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EIDRM) {
			return nil // already removed
		}
		return fmt.Errorf("shm: shmctl(key=0x%x, IPC_RMID): %w", s.Key, err)
	}
	return nil
}

// Size returns the attached size in bytes (page aligned).
func (s *Segment) Size() int { return s.size }

// Bytes returns the raw mapped region. Callers outside this package should
// use MWMRQueue or ClientStore instead of touching bytes directly.
func (s *Segment) Bytes() []byte { return s.mem }

// Base returns an unsafe pointer to the start of the mapped region.
func (s *Segment) Base() unsafe.Pointer { return unsafe.Pointer(&s.mem[0]) }

// pageAlign rounds size up to the next page boundary, matching the C++
// gateway so both sides request identical segment sizes.
func pageAlign(size int) int {
	page := os.Getpagesize()
	if size%page == 0 {
		return size
	}
	return size + page - size%page
}
