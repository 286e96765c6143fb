// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCheckCleanHeap asserts a freshly exercised heap reports no
// findings - the baseline every corruption test below deviates from.
func TestCheckCleanHeap(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(100)
	q := a.Allocate(200)
	a.Free(p)
	_ = q

	require.NoError(t, a.Check(nil))
}

// TestCheckDetectsOrphanInFreeList corrupts a free block's header to
// look allocated while it is still linked into its class list.
func TestCheckDetectsOrphanInFreeList(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(64)
	a.Free(p)

	addr := blockAddr(p)
	size, _ := header(a.heap, addr)
	setHeader(a.heap, addr, size, true) // mark allocated without unlinking

	err := a.Check(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), KindOrphanInFreeList.String())
}

// TestCheckDetectsMisclassified moves a free block's header size so it
// no longer matches the class list it is linked into.
func TestCheckDetectsMisclassified(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(40) // class 0, size 56
	a.Free(p)

	addr := blockAddr(p)
	size, _ := header(a.heap, addr)
	require.Equal(t, 0, classFor(size))

	// Inflate the recorded size (keeping it 8-aligned and inside the
	// Grower's 8 MiB buffer, though past the committed heap end)
	// without moving the block between class lists.
	setHeader(a.heap, addr, size+4096, false)

	err := a.Check(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), KindMisclassified.String())
}

// TestCheckDetectsHeaderFooterMismatch corrupts only the footer word of
// an otherwise valid block.
func TestCheckDetectsHeaderFooterMismatch(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(64)
	addr := blockAddr(p)
	size, _ := header(a.heap, addr)

	bad := packHeader(size, false) // flip the allocated bit in the footer only
	buf := a.heap.bytes(int64(footerAddr(addr, size)), footerSize)
	for i := range buf {
		buf[i] = 0
	}
	buf[0] = byte(bad)

	err := a.Check(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), KindHeaderFooterMismatch.String())
}

// TestCheckDetectsBrokenLink severs a free list's prev pointer without
// updating the corresponding next pointer.
func TestCheckDetectsBrokenLink(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(40)
	q := a.Allocate(40)
	a.Free(p)
	a.Free(q) // q now heads class 0's list, linked back to p

	qAddr := blockAddr(q)
	_, next := links(a.heap, qAddr)
	setLinks(a.heap, qAddr, 12345, next) // corrupt prev on the head node

	err := a.Check(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), KindBrokenLink.String())
}

// TestCheckDetectsAdjacentLargeFree forces two large, address-adjacent
// blocks to both be free without going through the coalescing Free
// path that would normally merge them.
func TestCheckDetectsAdjacentLargeFree(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Allocate(4000)
	q := a.Allocate(4000)

	pAddr := blockAddr(p)
	pSize, _ := header(a.heap, pAddr)
	qAddr := blockAddr(q)
	qSize, _ := header(a.heap, qAddr)

	require.Greater(t, pSize, maxDim(limitCoalesce))
	require.Greater(t, qSize, maxDim(limitCoalesce))

	// Mark both allocated blocks free directly, bypassing Free's
	// coalescing so the two stay adjacent and uncoalesced.
	setHeader(a.heap, pAddr, pSize, false)
	setHeader(a.heap, qAddr, qSize, false)

	err := a.Check(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), KindAdjacentLargeFree.String())
}
