// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import "github.com/cznic/mathutil"

// A Grower is the external heap-extension collaborator the allocator
// consumes: the moral equivalent of brk/sbrk(2). Grow extends the region
// by exactly n bytes and returns the byte offset of the first newly
// added byte. Subsequent calls return contiguous, ever-increasing
// offsets; the region never shrinks and bytes once committed never move.
//
// A Grower is not safe for concurrent use.
type Grower interface {
	// Grow extends the region by n bytes. ok is false if the region
	// cannot grow (the moral equivalent of brk/sbrk returning -1 or
	// mmap returning MAP_FAILED); when ok is false, the region is left
	// unchanged.
	Grow(n int64) (offset int64, ok bool)

	// Bytes returns a slice aliasing the region [offset, offset+length).
	// Both bounds must lie within [0, Size()]. Writes through the
	// returned slice mutate the region directly; the slice is only
	// valid until the next Grow call that reallocates backing storage,
	// which BumpGrower and the mmap Grower both guarantee never
	// happens for previously committed bytes.
	Bytes(offset, length int64) []byte

	// Size returns the number of bytes committed so far.
	Size() int64
}

// defaultArenaCap bounds how much address space a BumpGrower reserves
// up front. Reservation, not commitment: the backing slice is allocated
// once at this length so that growing the logical heap never triggers a
// Go slice reallocation, which would move already-handed-out block
// storage - the one thing a real brk/sbrk never does either.
const defaultArenaCap = 256 << 20 // 256 MiB

// BumpGrower is the default, in-process Grower: a single reserved byte
// slice with a bump-allocated logical end. It is the stand-in used by
// every test and by cmd/galloctrace.
type BumpGrower struct {
	buf []byte
	end int64
}

// NewBumpGrower returns a BumpGrower able to grow up to capHint bytes.
// A capHint of 0 uses defaultArenaCap.
func NewBumpGrower(capHint int64) *BumpGrower {
	c := mathutil.MaxInt64(capHint, 0)
	if c == 0 {
		c = defaultArenaCap
	}

	return &BumpGrower{buf: make([]byte, c)}
}

// Grow implements Grower.
func (g *BumpGrower) Grow(n int64) (offset int64, ok bool) {
	if n < 0 {
		return 0, false
	}

	newEnd := g.end + n
	if newEnd > int64(len(g.buf)) {
		return 0, false
	}

	offset = g.end
	g.end = newEnd
	return offset, true
}

// Bytes implements Grower.
func (g *BumpGrower) Bytes(offset, length int64) []byte {
	return g.buf[offset : offset+length]
}

// Size implements Grower.
func (g *BumpGrower) Size() int64 { return g.end }
