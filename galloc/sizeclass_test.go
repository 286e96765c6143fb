// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassForBoundaries(t *testing.T) {
	cases := []struct {
		size     int64
		wantCls  int
		wantDesc string
	}{
		{1, 0, "smallest possible size"},
		{64, 0, "class 0 upper bound, inclusive"},
		{65, 1, "just past class 0"},
		{128, 1, "class 1 upper bound"},
		{129, 2, "just past class 1"},
		{1 << 25, 19, "class 19 upper bound"},
		{1<<25 + 1, 19, "class 19 absorbs anything larger"},
		{1 << 30, 19, "far beyond class 19, still absorbed"},
	}

	for _, c := range cases {
		t.Run(c.wantDesc, func(t *testing.T) {
			require.Equal(t, c.wantCls, classFor(c.size))
		})
	}
}

func TestClassForMonotonic(t *testing.T) {
	prev := classFor(1)
	for s := int64(2); s <= 1<<26; s *= 2 {
		c := classFor(s)
		require.GreaterOrEqual(t, c, prev, "class function must be monotonic in size")
		prev = c
	}
}

func TestMaxDimMatchesLimitCoalesceGate(t *testing.T) {
	require.Equal(t, int64(255), maxDim(limitCoalesce))
}
