// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command galloctrace drives a galloc.Allocator against a
// line-oriented allocation trace and reports a structural check()
// summary. It is a thin workload driver, not a conformance harness -
// the trace format and random-workload generator here are deliberately
// minimal.
//
// Trace lines:
//
//	a <slot> <size>      allocate <size> bytes, remember the pointer as <slot>
//	f <slot>              free the pointer remembered as <slot>
//	r <slot> <size>       reallocate <slot> to <size> bytes, same slot
//	c                     run Check and print any findings
//
// With -random N, galloctrace instead generates N synthetic operations
// itself and ignores stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/giamo/segregated-fits-memory-allocator/galloc"
)

var (
	oRandom = flag.Int("random", 0, "generate N random alloc/free/realloc operations instead of reading stdin")
	oSeed   = flag.Int64("seed", 1, "PRNG seed for -random")
	oMaxSz  = flag.Int("maxsize", 4096, "maximum single allocation size for -random")
	oPolicy = flag.String("policy", "best", "fit policy: best or first")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	policy := galloc.BestFit
	if strings.EqualFold(*oPolicy, "first") {
		policy = galloc.FirstFit
	}

	a, err := galloc.New(galloc.NewBumpGrower(0), galloc.WithFitPolicy(policy))
	if err != nil {
		log.Fatalf("galloctrace: init: %v", err)
	}

	slots := map[string]galloc.Ptr{}

	switch {
	case *oRandom > 0:
		runRandom(a, slots, *oRandom, *oSeed, *oMaxSz)
	default:
		runTrace(a, slots, os.Stdin)
	}

	if err := a.Check(os.Stdout); err != nil {
		log.Printf("galloctrace: check reported findings (see above)")
	} else {
		fmt.Println("check: ok")
	}
}

func runTrace(a *galloc.Allocator, slots map[string]galloc.Ptr, in *os.File) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "a":
			size, err := strconv.Atoi(fields[2])
			if err != nil {
				log.Fatalf("galloctrace: bad size in %q: %v", line, err)
			}

			slots[fields[1]] = a.Allocate(size)
		case "f":
			p, ok := slots[fields[1]]
			if !ok {
				log.Fatalf("galloctrace: unknown slot in %q", line)
			}

			a.Free(p)
			delete(slots, fields[1])
		case "r":
			p, ok := slots[fields[1]]
			if !ok {
				log.Fatalf("galloctrace: unknown slot in %q", line)
			}

			size, err := strconv.Atoi(fields[2])
			if err != nil {
				log.Fatalf("galloctrace: bad size in %q: %v", line, err)
			}

			slots[fields[1]] = a.Reallocate(p, size)
		case "c":
			if err := a.Check(os.Stdout); err != nil {
				log.Printf("galloctrace: check reported findings (see above)")
			}
		default:
			log.Fatalf("galloctrace: unrecognized op in %q", line)
		}
	}

	if err := sc.Err(); err != nil {
		log.Fatalf("galloctrace: reading trace: %v", err)
	}
}

func runRandom(a *galloc.Allocator, slots map[string]galloc.Ptr, n int, seed int64, maxSize int) {
	rnd := rand.New(rand.NewSource(seed))
	var live []string

	for i := 0; i < n; i++ {
		op := rnd.Intn(3)
		if len(live) == 0 {
			op = 0
		}

		switch op {
		case 0:
			slot := strconv.Itoa(i)
			slots[slot] = a.Allocate(1 + rnd.Intn(maxSize))
			live = append(live, slot)
		case 1:
			idx := rnd.Intn(len(live))
			slot := live[idx]
			a.Free(slots[slot])
			delete(slots, slot)
			live = append(live[:idx], live[idx+1:]...)
		case 2:
			idx := rnd.Intn(len(live))
			slot := live[idx]
			slots[slot] = a.Reallocate(slots[slot], 1+rnd.Intn(maxSize))
		}
	}
}
