// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package galloc implements a segregated-fits dynamic memory allocator
// over a single, contiguous, monotonically growing heap region.
//
// The heap is obtained from a Grower, the moral equivalent of a
// brk/sbrk(2) primitive: it never shrinks and it never moves already
// committed bytes. Every byte past a small bootstrap area belongs to
// exactly one block, delimited by a header and a matching footer (the
// boundary-tag technique), so that any block's left neighbour can be
// found in O(1) without a side table.
//
// Free blocks are organized by a fixed partition of 20 size classes,
// each the head of a LIFO doubly linked list threaded through the
// blocks' own payload bytes. Allocate searches classes from the
// requested size upward; Free coalesces blocks above a size threshold
// and leaves smaller ones alone, trading a little fragmentation for
// throughput; Reallocate grows in place by absorbing free neighbours
// before ever falling back to allocate-copy-free.
//
// galloc is not safe for concurrent use. Callers needing that must
// serialize access to an *Allocator themselves.
package galloc
