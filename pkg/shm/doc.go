// Package shm implements the System-V shared memory transport used between
// the market data feeder, the order routing gateway and trading engines.
//
// It provides three building blocks:
//
//   - Segment: a key-addressed SysV shared memory region with a
//     create-or-attach / detach / remove lifecycle.
//   - MWMRQueue: a lock-free, fixed-capacity circular queue of
//     sequence-numbered slots. Any number of writer processes may enqueue
//     concurrently; each queue is consumed by a single reader.
//   - ClientStore: an atomic counter handing out unique client IDs across
//     processes.
//
// All cross-process fields are accessed through sync/atomic with
// acquire/release semantics. The memory layout of every structure placed in
// shared memory is byte-compatible with the C++ gateway (GCC x86-64); the
// layouts are pinned by the tests in pkg/wire.
package shm
