// Package journal records the order flow the gateway handles. The shared
// memory transport itself is deliberately non-durable; the journal is the
// gateway's own record of what it saw, used for end-of-day reconciliation.
package journal

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/luxfi/hft/pkg/wire"
)

// Entries are keyed prefix + big-endian sequence, so replay is in arrival
// order regardless of the records' own timestamps.
const (
	prefixRequest  = "req/"
	prefixResponse = "rsp/"
)

// Journal persists raw wire records in arrival order.
type Journal struct {
	db      database.Database
	reqSeq  uint64
	respSeq uint64
	logger  log.Logger
}

// New wraps db. Callers choose the backend (memdb in tests, a persistent
// store in the gateway). The journal is driven from the gateway's single
// consumer loop and is not goroutine safe.
func New(db database.Database) *Journal {
	return &Journal{db: db, logger: log.Root().New("module", "journal")}
}

// Request appends an order request.
func (j *Journal) Request(req *wire.RequestMsg) error {
	val := unsafe.Slice((*byte)(unsafe.Pointer(req)), wire.SizeofRequestMsg)
	if err := j.db.Put(entryKey(prefixRequest, j.reqSeq), val); err != nil {
		return fmt.Errorf("journal: put request order=%d: %w", req.OrderID, err)
	}
	j.reqSeq++
	return nil
}

// Response appends an order response.
func (j *Journal) Response(resp *wire.ResponseMsg) error {
	val := unsafe.Slice((*byte)(unsafe.Pointer(resp)), wire.SizeofResponseMsg)
	if err := j.db.Put(entryKey(prefixResponse, j.respSeq), val); err != nil {
		return fmt.Errorf("journal: put response order=%d: %w", resp.OrderID, err)
	}
	j.respSeq++
	return nil
}

// Counts reports how many requests and responses have been journaled.
func (j *Journal) Counts() (requests, responses uint64) {
	return j.reqSeq, j.respSeq
}

// Requests replays every journaled request in arrival order.
func (j *Journal) Requests() ([]wire.RequestMsg, error) {
	out := make([]wire.RequestMsg, 0, j.reqSeq)
	for i := uint64(0); i < j.reqSeq; i++ {
		val, err := j.db.Get(entryKey(prefixRequest, i))
		if err != nil {
			return nil, fmt.Errorf("journal: get request %d: %w", i, err)
		}
		if len(val) != wire.SizeofRequestMsg {
			return nil, fmt.Errorf("journal: request entry %d is %d bytes, want %d",
				i, len(val), wire.SizeofRequestMsg)
		}
		var req wire.RequestMsg
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&req)), wire.SizeofRequestMsg), val)
		out = append(out, req)
	}
	return out, nil
}

// Responses replays every journaled response in arrival order.
func (j *Journal) Responses() ([]wire.ResponseMsg, error) {
	out := make([]wire.ResponseMsg, 0, j.respSeq)
	for i := uint64(0); i < j.respSeq; i++ {
		val, err := j.db.Get(entryKey(prefixResponse, i))
		if err != nil {
			return nil, fmt.Errorf("journal: get response %d: %w", i, err)
		}
		if len(val) != wire.SizeofResponseMsg {
			return nil, fmt.Errorf("journal: response entry %d is %d bytes, want %d",
				i, len(val), wire.SizeofResponseMsg)
		}
		var resp wire.ResponseMsg
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&resp)), wire.SizeofResponseMsg), val)
		out = append(out, resp)
	}
	return out, nil
}

// Close flushes and closes the underlying store.
func (j *Journal) Close() error {
	j.logger.Info("journal closed", "requests", j.reqSeq, "responses", j.respSeq)
	return j.db.Close()
}

func entryKey(prefix string, seq uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}
