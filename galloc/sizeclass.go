// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import "math/bits"

// classes is the fixed number of size-class buckets.
const classes = 20

// classShift is the exponent offset of class 0's upper bound: class c
// covers sizes s with 2^(c+classShift)/2 < s <= 2^(c+classShift).
const classShift = 6 // class 0 upper bound == 1<<6 == 64

// limitCoalesce gates the free-time coalescing policy: a free block is
// coalesced only when its size exceeds maxDim(limitCoalesce) (255
// bytes). Smaller blocks are cheap enough to reissue that coalescing
// them is not worth the cost; larger blocks are always coalesced to
// keep large free space from splintering.
const limitCoalesce = 2

// maxDim returns 1<<(c+classShift) - 1, one byte less than class c's
// upper bound.
func maxDim(c int) int64 {
	return int64(1)<<(uint(c)+classShift) - 1
}

// classFor returns the smallest class c in [0, classes-1] whose upper
// bound (1<<(c+classShift)) is >= size. Implemented with a single
// bits.Len64 rather than a linear scan over the 20 classes: lookup cost
// should stay O(1) regardless of heap size.
func classFor(size int64) int {
	if size <= 1<<classShift {
		return 0
	}

	// Smallest n with size <= 1<<n is bits.Len64(size-1).
	n := bits.Len64(uint64(size - 1))
	c := n - classShift
	if c > classes-1 {
		c = classes - 1
	}

	return c
}
