// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import "encoding/binary"

// classTableSize is the fixed size, in bytes, of the free-list index
// table kept at the bottom of the heap.
const classTableSize = int64(classes) * wordSize

// heap is the heap region manager: it owns the backing Grower, the
// offset of the class table, and the addresses of the first and last
// (lowest- and highest-address) blocks.
type heap struct {
	g Grower

	classTableBase int64 // offset of slot 0 of the class table
	firstBlock     Ptr   // header offset of the lowest-address block
	lastBlock      Ptr   // header offset of the highest-address block
}

// newHeap bootstraps a fresh heap from g: padding (so the first payload
// is 8-byte aligned), the class table, and a single MBS-sized free
// first block placed on class 0's free list. ok is false only if g
// fails to grow.
func newHeap(g Grower) (h *heap, ok bool) {
	// The padding rounds the class table up to a whole number of
	// words, so the first payload lands on an 8-byte boundary whenever
	// the offset Grow returns is itself 8-aligned. It is derived from
	// the table size alone, not from that offset; with 20 word-sized
	// slots it is always zero.
	padding := align8(classTableSize) - classTableSize
	need := padding + classTableSize + minBlockSize

	off, grew := g.Grow(need)
	if !grew {
		return nil, false
	}

	h = &heap{g: g, classTableBase: off + padding}

	tbl := h.bytes(h.classTableBase, classTableSize)
	for i := range tbl {
		tbl[i] = 0
	}

	first := Ptr(h.classTableBase + classTableSize)
	h.firstBlock = first
	h.lastBlock = first
	setHeader(h, first, minBlockSize, false)
	setLinks(h, first, 0, 0)
	h.setClassHead(classFor(minBlockSize), first)

	return h, true
}

// bytes returns a slice aliasing heap bytes [offset, offset+length).
func (h *heap) bytes(offset, length int64) []byte {
	return h.g.Bytes(offset, length)
}

// size is the number of bytes currently committed to the heap,
// including the bootstrap padding and class table.
func (h *heap) size() int64 { return h.g.Size() }

// grow extends the heap by n bytes and returns the offset of the first
// newly committed byte.
func (h *heap) grow(n int64) (addr Ptr, ok bool) {
	off, grew := h.g.Grow(n)
	if !grew {
		return 0, false
	}

	return Ptr(off), true
}

// classHead returns the head pointer stored in class-table slot c.
func (h *heap) classHead(c int) Ptr {
	b := h.bytes(h.classTableBase+int64(c)*wordSize, wordSize)
	return Ptr(int64(binary.LittleEndian.Uint64(b)))
}

// setClassHead stores p as the head of class-table slot c.
func (h *heap) setClassHead(c int, p Ptr) {
	var buf [wordSize]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(p))
	copy(h.bytes(h.classTableBase+int64(c)*wordSize, wordSize), buf[:])
}
