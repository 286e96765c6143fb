// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Check scans the heap and every free list and reports any violation
// of the allocator's structural invariants to w (a nil w is accepted;
// findings are still collected and returned). Check never mutates the
// heap.
func (a *Allocator) Check(w io.Writer) error {
	h := a.heap

	var findings []error
	report := func(e *CorruptionError) {
		findings = append(findings, e)
		if w != nil {
			fmt.Fprintln(w, e.Error())
		}
	}

	a.checkHeapWalk(h, report)
	a.checkFreeLists(h, report)

	if len(findings) == 0 {
		return nil
	}

	return errors.Join(findings...)
}

// checkHeapWalk verifies that each block's header matches its footer,
// that blocks abut with no gaps and sane sizes, and that no two
// adjacent blocks are both free and large enough that they should have
// been coalesced, by walking every block from the first block to the
// end of the heap.
func (a *Allocator) checkHeapWalk(h *heap, report func(*CorruptionError)) {
	addr := h.firstBlock
	heapEnd := h.size()

	var prevFree bool
	var prevSize int64
	var prevAddr Ptr

	for {
		size, allocated := header(h, addr)

		if size <= 0 || size%wordSize != 0 || size < minBlockSize {
			report(&CorruptionError{Kind: KindGap, At: addr, Note: "invalid block size"})
			return
		}

		fv := binary.LittleEndian.Uint64(h.bytes(int64(footerAddr(addr, size)), footerSize))
		fsize, fallocated := unpackHeader(fv)
		if fsize != size || fallocated != allocated {
			report(&CorruptionError{Kind: KindHeaderFooterMismatch, At: addr})
		}

		if !allocated && prevFree && size > maxDim(limitCoalesce) && prevSize > maxDim(limitCoalesce) {
			report(&CorruptionError{Kind: KindAdjacentLargeFree, At: prevAddr})
		}

		prevFree, prevSize, prevAddr = !allocated, size, addr

		if addr == h.lastBlock {
			if int64(addr)+size != heapEnd {
				report(&CorruptionError{Kind: KindGap, At: addr, Note: "last block does not end at heap end"})
			}

			break
		}

		next := addr + Ptr(size)
		if int64(next) > heapEnd {
			report(&CorruptionError{Kind: KindGap, At: addr, Note: "block runs past heap end"})
			return
		}

		addr = next
	}
}

// checkFreeLists verifies that every free-list member is actually free
// and correctly classified, and that each list's doubly-linked chain is
// consistent.
func (a *Allocator) checkFreeLists(h *heap, report func(*CorruptionError)) {
	for c := 0; c < classes; c++ {
		var prevAddr Ptr

		for addr := h.classHead(c); addr != 0; {
			size, allocated := header(h, addr)
			if allocated {
				report(&CorruptionError{Kind: KindOrphanInFreeList, At: addr})
			}

			if classFor(size) != c {
				report(&CorruptionError{Kind: KindMisclassified, At: addr, Note: fmt.Sprintf("in list %d", c)})
			}

			prev, next := links(h, addr)
			if prev != prevAddr {
				report(&CorruptionError{Kind: KindBrokenLink, At: addr})
			}

			prevAddr = addr
			addr = next
		}
	}
}
