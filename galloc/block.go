// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import (
	"encoding/binary"

	"github.com/cznic/mathutil"
)

// Word and block layout constants.
const (
	wordSize   = 8 // one machine word, also the alignment granularity
	headerSize = wordSize
	footerSize = wordSize
	linkSize   = wordSize // one link (prev or next), stored as an 8 byte Ptr

	// minBlockSize (MBS) is the smallest size any block, allocated or
	// free, may have: header + footer + two free-list links, the
	// links being required so every free block can host list nodes
	// regardless of its class.
	minBlockSize = headerSize + footerSize + 2*linkSize

	allocatedBit = uint64(1)
	sizeMask     = ^allocatedBit
)

// Ptr is an opaque, offset-based handle to a block's payload. The zero
// value is the null pointer; no payload ever starts at offset 0
// because the class table and the first block's header always precede
// it.
type Ptr int64

// align8 rounds n up to the next multiple of 8.
func align8(n int64) int64 {
	return (n + 7) &^ 7
}

// packHeader packs size and the allocated flag into one word. size must
// already be 8-byte aligned; the low bit it would otherwise occupy
// carries the flag instead.
func packHeader(size int64, allocated bool) uint64 {
	v := uint64(size)
	if allocated {
		v |= allocatedBit
	}

	return v
}

func unpackHeader(v uint64) (size int64, allocated bool) {
	return int64(v & sizeMask), v&allocatedBit != 0
}

// header reads the header word of the block whose header starts at addr.
func header(heap *heap, addr Ptr) (size int64, allocated bool) {
	b := heap.bytes(int64(addr), headerSize)
	return unpackHeader(binary.LittleEndian.Uint64(b))
}

// footerAddr returns the offset of the footer word of a block of the
// given size starting at addr.
func footerAddr(addr Ptr, size int64) Ptr {
	return addr + Ptr(size) - footerSize
}

// setHeader writes both the header and the (duplicate) footer of the
// block at addr, keeping the boundary tag consistent.
func setHeader(heap *heap, addr Ptr, size int64, allocated bool) {
	v := packHeader(size, allocated)
	var buf [wordSize]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	copy(heap.bytes(int64(addr), headerSize), buf[:])
	copy(heap.bytes(int64(footerAddr(addr, size)), footerSize), buf[:])
}

// userPtr returns the user-visible payload pointer of the block whose
// header is at addr.
func userPtr(addr Ptr) Ptr { return addr + headerSize }

// blockAddr is the inverse of userPtr: it recovers a block's header
// offset from the pointer handed to Free/Reallocate.
func blockAddr(p Ptr) Ptr { return p - headerSize }

// leftNeighbor returns the header offset, size and allocated flag of
// the block immediately to the left of addr, by reading the footer
// word that immediately precedes addr - the whole reason blocks carry
// a duplicate boundary tag at both ends. ok is false when addr is the
// first block in the heap.
func leftNeighbor(heap *heap, addr Ptr) (leftAddr Ptr, size int64, allocated bool, ok bool) {
	if addr <= heap.firstBlock {
		return 0, 0, false, false
	}

	footer := heap.bytes(int64(addr)-footerSize, footerSize)
	size, allocated = unpackHeader(binary.LittleEndian.Uint64(footer))
	return addr - Ptr(size), size, allocated, true
}

// rightNeighbor returns the header offset of the block immediately to
// the right of a block of the given size starting at addr. ok is false
// when addr is the rightmost (end_heap) block.
func rightNeighbor(heap *heap, addr Ptr, size int64) (rightAddr Ptr, ok bool) {
	if addr == heap.lastBlock {
		return 0, false
	}

	return addr + Ptr(size), true
}

// links reads the (prev, next) free-list node stored in the first two
// payload words of the free block whose header is at addr.
func links(heap *heap, addr Ptr) (prev, next Ptr) {
	b := heap.bytes(int64(addr)+headerSize, 2*linkSize)
	return Ptr(int64(binary.LittleEndian.Uint64(b[:linkSize]))), Ptr(int64(binary.LittleEndian.Uint64(b[linkSize:])))
}

// setLinks writes the (prev, next) free-list node of the free block
// whose header is at addr.
func setLinks(heap *heap, addr Ptr, prev, next Ptr) {
	var buf [2 * linkSize]byte
	binary.LittleEndian.PutUint64(buf[:linkSize], uint64(prev))
	binary.LittleEndian.PutUint64(buf[linkSize:], uint64(next))
	copy(heap.bytes(int64(addr)+headerSize, 2*linkSize), buf[:])
}

// blockSize returns max(minBlockSize, align8(payload + headerSize +
// footerSize)) - the total on-heap footprint needed to host a payload
// of n bytes.
func blockSize(n int64) int64 {
	return mathutil.MaxInt64(minBlockSize, align8(n+headerSize+footerSize))
}

// payloadCapacity returns how many payload bytes a block of the given
// total size can host.
func payloadCapacity(size int64) int64 {
	return size - headerSize - footerSize
}
