// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import "errors"

// ErrGrowFailed is returned by New when the Grower cannot supply even
// the bootstrap bytes the heap needs.
var ErrGrowFailed = errors.New("galloc: grow primitive failed during bootstrap")

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithFitPolicy selects the free-list search policy. BestFit is the
// default.
func WithFitPolicy(p FitPolicy) Option {
	return func(a *Allocator) { a.policy = p }
}

// Allocator is the public allocation policy: Allocate, Free and
// Reallocate plus their split/coalesce helpers, layered over a heap
// region manager and a segregated free-list index. An Allocator is not
// safe for concurrent use.
type Allocator struct {
	heap   *heap
	policy FitPolicy
}

// New bootstraps an Allocator over g. Construction can fail - the
// Grower may be unable to supply even the bootstrap bytes - so New
// returns an error rather than panicking or requiring a separate init
// step.
func New(g Grower, opts ...Option) (*Allocator, error) {
	h, ok := newHeap(g)
	if !ok {
		return nil, ErrGrowFailed
	}

	a := &Allocator{heap: h, policy: BestFit}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Allocate returns an 8-byte-aligned pointer to at least size bytes,
// or the null Ptr if size <= 0 or the heap cannot grow.
func (a *Allocator) Allocate(size int) Ptr {
	if size <= 0 {
		return 0
	}

	newsize := blockSize(int64(size))
	startClass := classFor(newsize)

	for c := startClass; c < classes; c++ {
		b := searchClass(a.heap, c, newsize, a.policy)
		if b == 0 {
			continue
		}

		bsize, _ := header(a.heap, b)
		prev, next := links(a.heap, b)
		removeFree(a.heap, c, b, prev, next)

		if rem := bsize - newsize; rem <= minBlockSize {
			setHeader(a.heap, b, bsize, true)
			return userPtr(b)
		}

		return a.split(b, newsize)
	}

	addr, grew := a.heap.grow(newsize)
	if !grew {
		return 0
	}

	setHeader(a.heap, addr, newsize, true)
	a.heap.lastBlock = addr
	return userPtr(addr)
}

// Free releases the block ptr refers to. ptr must be the null Ptr or a
// value previously returned by Allocate/Reallocate and not yet freed.
func (a *Allocator) Free(ptr Ptr) {
	if ptr == 0 {
		return
	}

	addr := blockAddr(ptr)
	size, _ := header(a.heap, addr)
	setHeader(a.heap, addr, size, false)

	c := classFor(size)
	if size > maxDim(limitCoalesce) {
		addr, size = a.coalesce(addr)
		c = classFor(size)
	}

	pushFree(a.heap, c, addr)
}

// Reallocate resizes the block ptr refers to, preserving the first
// min(old payload, size) bytes, and returns the (possibly moved)
// pointer. It returns the null Ptr on an out-of-memory move, and when
// ptr is the null Ptr and size <= 0.
func (a *Allocator) Reallocate(ptr Ptr, size int) Ptr {
	if ptr == 0 {
		if size > 0 {
			return a.Allocate(size)
		}

		return 0
	}

	if size == 0 {
		a.Free(ptr)
		return ptr // dangling by design: a zero-size reallocate frees and leaves the caller its old value.
	}

	addr := blockAddr(ptr)
	newsize := blockSize(int64(size))
	old, _ := header(a.heap, addr)

	switch {
	case newsize == old:
		return ptr
	case newsize > old:
		diff := newsize - old
		if a.growInPlace(addr, old, diff) {
			return ptr
		}

		q := a.Allocate(size)
		if q == 0 {
			return 0
		}

		n := payloadCapacity(old)
		copy(a.heap.bytes(int64(q), n), a.heap.bytes(int64(ptr), n))
		a.Free(ptr)
		return q
	default: // shrink
		if old-newsize <= minBlockSize {
			return ptr
		}

		return a.split(addr, newsize)
	}
}

// Payload returns a slice aliasing the live, writable payload bytes of
// the block ptr refers to. Its length is the block's full usable
// capacity, which may exceed the size last requested for it.
func (a *Allocator) Payload(ptr Ptr) []byte {
	if ptr == 0 {
		return nil
	}

	addr := blockAddr(ptr)
	size, _ := header(a.heap, addr)
	return a.heap.bytes(int64(ptr), payloadCapacity(size))
}

// split partitions the block at addr - known not to be linked into any
// free list - into an allocated prefix of newsize bytes and a free
// remainder. Callers that split an originally free block must unlink
// it first; Allocate and Reallocate's shrink path both satisfy this.
// The remainder is coalesced the same way Free's is: addr stays
// allocated, so this only ever merges the remainder rightward with a
// free neighbour too large to have been left uncoalesced, which is
// exactly what the shrink path needs to avoid stranding two
// address-adjacent large free blocks.
func (a *Allocator) split(addr Ptr, newsize int64) Ptr {
	size, _ := header(a.heap, addr)
	setHeader(a.heap, addr, newsize, true)

	sibling := addr + Ptr(newsize)
	siblingSize := size - newsize
	setHeader(a.heap, sibling, siblingSize, false)
	setLinks(a.heap, sibling, 0, 0)

	if addr == a.heap.lastBlock {
		a.heap.lastBlock = sibling
	}

	c := classFor(siblingSize)
	if siblingSize > maxDim(limitCoalesce) {
		sibling, siblingSize = a.coalesce(sibling)
		c = classFor(siblingSize)
	}

	pushFree(a.heap, c, sibling)
	return userPtr(addr)
}

// coalesce merges the free block at addr with a contiguous run of free
// neighbours whose individual sizes exceed maxDim(limitCoalesce), in
// both directions. It returns the merged block's new address and size.
func (a *Allocator) coalesce(addr Ptr) (Ptr, int64) {
	size, _ := header(a.heap, addr)
	becameEnd := addr == a.heap.lastBlock
	cur, curSize := addr, size

	for {
		r, ok := rightNeighbor(a.heap, cur, curSize)
		if !ok {
			break
		}

		rsize, rallocated := header(a.heap, r)
		if rallocated || rsize <= maxDim(limitCoalesce) {
			break
		}

		prev, next := links(a.heap, r)
		removeFree(a.heap, classFor(rsize), r, prev, next)
		if r == a.heap.lastBlock {
			becameEnd = true
		}

		size += rsize
		cur, curSize = r, rsize
	}

	for addr != a.heap.firstBlock {
		l, lsize, lallocated, ok := leftNeighbor(a.heap, addr)
		if !ok || lallocated || lsize <= maxDim(limitCoalesce) {
			break
		}

		prev, next := links(a.heap, l)
		removeFree(a.heap, classFor(lsize), l, prev, next)
		addr = l
		size += lsize
	}

	setHeader(a.heap, addr, size, false)
	if becameEnd {
		a.heap.lastBlock = addr
	}

	return addr, size
}

// growInPlace attempts a simulated right coalesce: it first walks
// right through contiguous free neighbours, summing whole block sizes
// until the sum covers diff or a non-free block or the heap end is
// hit, then - only if that succeeds - redoes the walk for real,
// unlinking each absorbed neighbour and extending addr's block in
// place. It never splits a neighbour to take a partial piece, so the
// resulting size may exceed old+diff.
func (a *Allocator) growInPlace(addr Ptr, old, diff int64) bool {
	type neighbor struct {
		addr Ptr
		size int64
	}

	var swept []neighbor
	sum := int64(0)
	cur, curSize := addr, old

	for sum < diff {
		r, ok := rightNeighbor(a.heap, cur, curSize)
		if !ok {
			break
		}

		rsize, rallocated := header(a.heap, r)
		if rallocated {
			break
		}

		swept = append(swept, neighbor{r, rsize})
		sum += rsize
		cur, curSize = r, rsize
	}

	if sum < diff {
		return false
	}

	becameEnd := false
	for _, n := range swept {
		prev, next := links(a.heap, n.addr)
		removeFree(a.heap, classFor(n.size), n.addr, prev, next)
		if n.addr == a.heap.lastBlock {
			becameEnd = true
		}
	}

	setHeader(a.heap, addr, old+sum, true)
	if becameEnd {
		a.heap.lastBlock = addr
	}

	return true
}
