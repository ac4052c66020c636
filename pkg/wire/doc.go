// Package wire defines the fixed binary records exchanged through the shared
// memory queues: market updates, order requests and order responses.
//
// Every struct here is a committed cross-language contract. Field order,
// padding and total size replicate the C++ gateway structs compiled by GCC on
// x86-64, byte for byte. There is no version field and no runtime
// negotiation; a layout mismatch between processes corrupts data silently.
// layout_test.go pins the size and the offset of every field, and any
// change to these structs requires rebuilding every process that attaches to
// the queues.
package wire
