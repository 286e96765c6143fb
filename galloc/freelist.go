// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

// FitPolicy selects how search chooses among the free blocks of a
// class once that class is known to hold a usable block. It is a
// constructor option (WithFitPolicy) rather than a build-time switch,
// so both policies live in the same binary and can be selected per
// Allocator.
type FitPolicy int

const (
	// BestFit scans the whole class list and returns the smallest
	// block that still satisfies the request, stopping early on an
	// exact match. This is the default, matching the source.
	BestFit FitPolicy = iota

	// FirstFit returns the first block in the class list that
	// satisfies the request.
	FirstFit
)

// setPrevOf rewrites only the prev link of the free block at addr,
// preserving its next link.
func setPrevOf(heap *heap, addr, prev Ptr) {
	_, next := links(heap, addr)
	setLinks(heap, addr, prev, next)
}

// setNextOf rewrites only the next link of the free block at addr,
// preserving its prev link.
func setNextOf(heap *heap, addr, next Ptr) {
	prev, _ := links(heap, addr)
	setLinks(heap, addr, prev, next)
}

// pushFree inserts the free block at addr at the head of class c's
// list (LIFO).
func pushFree(heap *heap, c int, addr Ptr) {
	head := heap.classHead(c)
	setLinks(heap, addr, 0, head)
	if head != 0 {
		setPrevOf(heap, head, addr)
	}

	heap.setClassHead(c, addr)
}

// removeFree splices the free block at addr out of class c's list.
// prev and next must be addr's current links.
func removeFree(heap *heap, c int, addr, prev, next Ptr) {
	switch {
	case prev == 0 && next == 0:
		heap.setClassHead(c, 0)
	case prev == 0:
		setPrevOf(heap, next, 0)
		heap.setClassHead(c, next)
	case next == 0:
		setNextOf(heap, prev, 0)
	default:
		setNextOf(heap, prev, next)
		setPrevOf(heap, next, prev)
	}
}

// searchClass walks class c's free list applying policy, looking for a
// block able to host sizeReq bytes total. It returns the zero Ptr if
// no member fits or the list is empty.
func searchClass(heap *heap, c int, sizeReq int64, policy FitPolicy) Ptr {
	var best Ptr
	var bestSize int64

	for addr := heap.classHead(c); addr != 0; {
		size, allocated := header(heap, addr)
		_, next := links(heap, addr)

		if !allocated && size >= sizeReq {
			switch policy {
			case FirstFit:
				return addr
			default: // BestFit
				if best == 0 || size < bestSize {
					best, bestSize = addr, size
					if size == sizeReq {
						return best
					}
				}
			}
		}

		addr = next
	}

	return best
}
