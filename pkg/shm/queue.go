package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// mwmrHeaderSize is the size of the queue header in shared memory: a single
// atomic int64 head counter holding the next sequence number to claim.
const mwmrHeaderSize = 8

// headInitial is the first sequence number ever assigned. The C++ gateway
// initializes the head to 1, so slot 0 of a fresh (zeroed) queue never
// carries a valid sequence number and reads as empty.
const headInitial = 1

// MWMRQueue is a lock-free circular queue living in a SysV shared memory
// segment. Its capacity is a power of two so slot indices derive from the
// sequence number with a bitmask.
//
// Layout: [int64 head][elem 0][elem 1]...[elem cap-1], where each element is
// the payload followed by a uint64 sequence number. Element sizes are always
// multiples of 8, keeping every sequence number 8-byte aligned for atomics.
//
// Any number of processes may call Enqueue concurrently; the fetch-add on the
// head counter is the only synchronization and guarantees each writer a
// distinct slot+sequence pair. Dequeue and IsEmpty are single-consumer: the
// reader's cursor lives in process-local memory, so exactly one reader may
// consume a given queue. Delivery is best effort: a reader that falls more
// than capacity elements behind loses the overwritten messages and
// resynchronizes (see Dequeue).
type MWMRQueue[T any] struct {
	seg      *Segment
	head     *int64  // atomic head counter, at offset 0 in the segment
	elems    uintptr // base address of element 0
	mask     int64   // capacity - 1
	capacity int64
	elemSize uintptr // payload + seqNo (+ cross-language tail padding)
	dataSize uintptr // unsafe.Sizeof(T)
	tail     int64   // reader cursor, process local
}

// QueueOption adjusts queue geometry for cross-language parity.
type QueueOption func(*queueOptions)

type queueOptions struct {
	elemSize uintptr
}

// WithElemSize forces the per-slot size in bytes. Required when the C++
// payload type carries a whole-struct alignment attribute that pads
// QueueElem<T> beyond sizeof(T)+8 (wire.ReqQueueElemSize for RequestMsg).
func WithElemSize(n uintptr) QueueOption {
	return func(o *queueOptions) { o.elemSize = n }
}

// CreateMWMRQueue creates (or attaches to, if it loses the create race) the
// queue segment at key and initializes it when this process is the creator.
// capacity is rounded up to the next power of two.
func CreateMWMRQueue[T any](key, capacity int, opts ...QueueOption) (*MWMRQueue[T], error) {
	q, total := layout[T](capacity, opts)

	seg, created, err := Create(key, total)
	if err != nil {
		return nil, fmt.Errorf("mwmr queue key=0x%x: %w", key, err)
	}
	q.bind(seg)

	if created {
		for i := range seg.mem[:total] {
			seg.mem[i] = 0
		}
		atomic.StoreInt64(q.head, headInitial)
	}
	q.tail = atomic.LoadInt64(q.head)
	return q, nil
}

// OpenMWMRQueue attaches to an existing queue segment. The reader cursor
// starts at the current head, skipping whatever was published before attach.
func OpenMWMRQueue[T any](key, capacity int, opts ...QueueOption) (*MWMRQueue[T], error) {
	q, total := layout[T](capacity, opts)

	seg, err := Open(key, total)
	if err != nil {
		return nil, fmt.Errorf("mwmr queue key=0x%x: %w", key, err)
	}
	q.bind(seg)

	q.tail = atomic.LoadInt64(q.head)
	return q, nil
}

func layout[T any](capacity int, opts []QueueOption) (*MWMRQueue[T], int) {
	var o queueOptions
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	dataSize := unsafe.Sizeof(zero)
	elemSize := dataSize + 8
	if o.elemSize > 0 {
		elemSize = o.elemSize
	}

	size := nextPowerOf2(int64(capacity))
	q := &MWMRQueue[T]{
		mask:     size - 1,
		capacity: size,
		elemSize: elemSize,
		dataSize: dataSize,
	}
	return q, int(mwmrHeaderSize + uintptr(size)*elemSize)
}

func (q *MWMRQueue[T]) bind(seg *Segment) {
	q.seg = seg
	q.head = (*int64)(seg.Base())
	q.elems = uintptr(seg.Base()) + mwmrHeaderSize
}

// Enqueue publishes msg to the queue. Safe to call from any number of
// goroutines and processes concurrently.
//
// The claimed counter value is stored into the slot's sequence number with a
// release store after the payload copy, so a reader that observes the
// sequence number also observes every payload byte.
func (q *MWMRQueue[T]) Enqueue(msg *T) {
	seq := atomic.AddInt64(q.head, 1) - 1

	slot := q.elems + uintptr(seq&q.mask)*q.elemSize
	copy(unsafe.Slice((*byte)(unsafe.Pointer(slot)), q.dataSize),
		unsafe.Slice((*byte)(unsafe.Pointer(msg)), q.dataSize))

	atomic.StoreUint64((*uint64)(unsafe.Pointer(slot+q.dataSize)), uint64(seq))
}

// Dequeue copies the next unread message into out and reports whether one
// was available. Single consumer only.
//
// The slot's sequence number is acquire-loaded before the payload is read.
// A value below the reader cursor means nothing new has been published. A
// value above it means the writers lapped this reader by more than the queue
// capacity: the intervening messages are gone, and the cursor resynchronizes
// past the overwrite instead of returning stale bytes. Callers that care
// about the gap compare sequence numbers embedded in their payloads.
func (q *MWMRQueue[T]) Dequeue(out *T) bool {
	slot := q.elems + uintptr(q.tail&q.mask)*q.elemSize
	seq := atomic.LoadUint64((*uint64)(unsafe.Pointer(slot + q.dataSize)))
	if seq < uint64(q.tail) {
		return false
	}

	copy(unsafe.Slice((*byte)(unsafe.Pointer(out)), q.dataSize),
		unsafe.Slice((*byte)(unsafe.Pointer(slot)), q.dataSize))
	q.tail = int64(seq) + 1
	return true
}

// IsEmpty reports whether the reader has consumed everything published so
// far. Like Dequeue it is single-consumer.
func (q *MWMRQueue[T]) IsEmpty() bool {
	slot := q.elems + uintptr(q.tail&q.mask)*q.elemSize
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(slot+q.dataSize))) < uint64(q.tail)
}

// Capacity returns the power-of-two slot count.
func (q *MWMRQueue[T]) Capacity() int64 { return q.capacity }

// Head returns the current value of the shared head counter, i.e. the next
// sequence number a writer will claim.
func (q *MWMRQueue[T]) Head() int64 { return atomic.LoadInt64(q.head) }

// Tail returns the reader's next expected sequence number.
func (q *MWMRQueue[T]) Tail() int64 { return q.tail }

// Close detaches from the underlying segment, leaving it in place for other
// processes.
func (q *MWMRQueue[T]) Close() error {
	return q.seg.Detach()
}

// Destroy detaches and marks the segment for system-wide removal. Safe to
// call from more than one process; late callers see a no-op.
func (q *MWMRQueue[T]) Destroy() error {
	if err := q.seg.Detach(); err != nil {
		return err
	}
	return q.seg.Remove()
}

// Segment exposes the underlying shared memory segment.
func (q *MWMRQueue[T]) Segment() *Segment { return q.seg }

// nextPowerOf2 returns the smallest power of two >= v, with 1 for
// non-positive inputs.
func nextPowerOf2(v int64) int64 {
	if v <= 0 {
		return 1
	}
	if v&(v-1) == 0 {
		return v
	}
	p := int64(1)
	for p < v {
		p <<= 1
	}
	return p
}
