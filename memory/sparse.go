// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"iter"
	"log"
	"math/bits"
)

// Sparse is a byte memory that allocates fragments on first write.
//
// Fragments are kept sorted by start address and never overlap. They are
// never merged or freed, so the allocated size only grows.
type Sparse struct {
	Verbose bool // Set to log fragment allocation.

	initializer  byte
	fragmentSize uint32
	fragments    []*Fragment
}

// NewSparse creates an empty byte memory. Unwritten bytes read as
// initializer; writes allocate fragmentSize bytes at a time, aligned to
// fragmentSize, which must be a power of two.
func NewSparse(initializer byte, fragmentSize uint32) (mem *Sparse, err error) {
	if bits.OnesCount32(fragmentSize) != 1 {
		err = ErrFragmentSize
		return
	}

	mem = &Sparse{
		initializer:  initializer,
		fragmentSize: fragmentSize,
	}

	return
}

// Initializer is the value read from unallocated addresses.
func (mem *Sparse) Initializer() byte {
	return mem.initializer
}

// FragmentSize is the allocation granule in bytes.
func (mem *Sparse) FragmentSize() uint32 {
	return mem.fragmentSize
}

// Read returns the byte at address, or the initializer if it was never
// written.
func (mem *Sparse) Read(address uint32) byte {
	for _, frag := range mem.fragments {
		if frag.Contains(address) {
			return frag.Read(address - frag.Start)
		}
		if address < frag.Start {
			break
		}
	}

	return mem.initializer
}

// Write stores value at address, allocating the aligned fragment holding
// address if needed.
func (mem *Sparse) Write(address uint32, value byte) {
	slot := len(mem.fragments)
	for n, frag := range mem.fragments {
		if frag.Contains(address) {
			frag.Write(address-frag.Start, value)
			return
		}
		if address < frag.Start {
			slot = n
			break
		}
	}

	start := address &^ (mem.fragmentSize - 1)
	frag := &Fragment{Start: start}
	frag.Grow(mem.fragmentSize, mem.initializer)
	frag.Write(address-start, value)

	if mem.Verbose {
		log.Printf("memory: fragment %#x+%#x at slot %d", start, mem.fragmentSize, slot)
	}

	mem.fragments = append(mem.fragments, nil)
	copy(mem.fragments[slot+1:], mem.fragments[slot:])
	mem.fragments[slot] = frag
}

// Fragments iterates over the allocated fragments in address order.
func (mem *Sparse) Fragments() iter.Seq[*Fragment] {
	return func(yield func(frag *Fragment) bool) {
		for _, frag := range mem.fragments {
			if !yield(frag) {
				return
			}
		}
	}
}

// Allocated returns the total bytes held by all fragments.
func (mem *Sparse) Allocated() (total uint32) {
	for _, frag := range mem.fragments {
		total += frag.Size()
	}

	return
}
