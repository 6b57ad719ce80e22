// Package util contains internal helpers shared by the commands.
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// Counter is an atomic uint64 padded to one cache line, for counters that
// many goroutines bump side by side.
type Counter struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Must be exactly one cache line.
var _ [CacheLineSize - int(unsafe.Sizeof(Counter{}))]byte
