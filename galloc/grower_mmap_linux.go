// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package galloc

import "golang.org/x/sys/unix"

// MmapGrower is a Grower backed by a real anonymous mapping obtained
// from mmap(2) instead of a Go-heap byte slice. As with BumpGrower, the
// full capacity is reserved up front so that growing the logical heap
// never moves already committed bytes - mmap's MAP_PRIVATE|MAP_ANON
// region is stable for its lifetime regardless of how much of it is
// actually touched.
type MmapGrower struct {
	buf []byte
	end int64
}

// NewMmapGrower reserves capHint bytes of anonymous memory. A capHint
// of 0 uses defaultArenaCap. The returned Grower must be closed with
// Close once no longer needed to release the mapping.
func NewMmapGrower(capHint int64) (*MmapGrower, error) {
	c := capHint
	if c <= 0 {
		c = defaultArenaCap
	}

	buf, err := unix.Mmap(-1, 0, int(c), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}

	return &MmapGrower{buf: buf}, nil
}

// Grow implements Grower.
func (g *MmapGrower) Grow(n int64) (offset int64, ok bool) {
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
func (g *MmapGrower) Bytes(offset, length int64) []byte {
	return g.buf[offset : offset+length]
}

// Size implements Grower.
func (g *MmapGrower) Size() int64 { return g.end }

// Close unmaps the underlying region. The Grower must not be used
// afterwards.
func (g *MmapGrower) Close() error {
	if g.buf == nil {
		return nil
	}

	err := unix.Munmap(g.buf)
	g.buf = nil
	return err
}
