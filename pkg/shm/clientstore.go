package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// clientStoreSize is the shared layout: an atomic int64 counter followed by
// the immutable int64 baseline written once at creation.
const clientStoreSize = 16

// ClientStore hands out globally unique numeric client IDs across every
// process attached to its segment. The atomic counter is the only
// coordination; there is no registry and no reclamation of IDs.
type ClientStore struct {
	seg     *Segment
	counter *int64
	first   *int64
}

// CreateClientStore creates the store segment at key and seeds both the
// counter and the baseline with first. If another process already created
// the segment the existing contents are left untouched.
func CreateClientStore(key int, first int64) (*ClientStore, error) {
	seg, created, err := Create(key, clientStoreSize)
	if err != nil {
		return nil, fmt.Errorf("client store key=0x%x: %w", key, err)
	}
	cs := newClientStore(seg)
	if created {
		atomic.StoreInt64(cs.counter, first)
		*cs.first = first
	}
	return cs, nil
}

// OpenClientStore attaches to an existing store. Attachers only read and
// increment the counter; the baseline is fixed by the creator.
func OpenClientStore(key int) (*ClientStore, error) {
	seg, err := Open(key, clientStoreSize)
	if err != nil {
		return nil, fmt.Errorf("client store key=0x%x: %w", key, err)
	}
	return newClientStore(seg), nil
}

func newClientStore(seg *Segment) *ClientStore {
	base := uintptr(seg.Base())
	return &ClientStore{
		seg:     seg,
		counter: (*int64)(unsafe.Pointer(base)),
		first:   (*int64)(unsafe.Pointer(base + 8)),
	}
}

// GetClientIDAndIncrement atomically claims and returns the next client ID.
// The returned value is unique across every attached process.
func (cs *ClientStore) GetClientIDAndIncrement() int64 {
	return atomic.AddInt64(cs.counter, 1) - 1
}

// GetClientID returns the current counter value without claiming an ID.
func (cs *ClientStore) GetClientID() int64 {
	return atomic.LoadInt64(cs.counter)
}

// GetFirstClientIDValue returns the baseline the store was created with.
func (cs *ClientStore) GetFirstClientIDValue() int64 {
	return *cs.first
}

// Close detaches from the store segment.
func (cs *ClientStore) Close() error {
	return cs.seg.Detach()
}

// Destroy detaches and marks the store segment for removal.
func (cs *ClientStore) Destroy() error {
	if err := cs.seg.Detach(); err != nil {
		return err
	}
	return cs.seg.Remove()
}
