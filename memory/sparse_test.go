package memory

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSparse(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		size uint32
		ok   bool
	}){
		{"one", 1, true},
		{"page", 0x100, true},
		{"full", BYTE_COUNT, true},
		{"zero", 0, false},
		{"odd", 0x180, false},
		{"three", 3, false},
	}

	for _, entry := range table {
		mem, err := NewSparse(0, entry.size)
		if entry.ok {
			assert.NoError(err, entry.name)
			assert.Equal(entry.size, mem.FragmentSize(), entry.name)
		} else {
			assert.ErrorIs(err, ErrFragmentSize, entry.name)
			assert.Nil(mem, entry.name)
		}
	}
}

func TestSparse_ReadUnwritten(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewSparse(0xa5, 0x10)
	assert.NoError(err)

	for _, address := range []uint32{0, 1, 0x0f, 0x10, 0xffff, BYTE_COUNT - 1} {
		assert.Equal(byte(0xa5), mem.Read(address))
	}
	assert.Equal(uint32(0), mem.Allocated())

	// Allocating a fragment fills it with the initializer.
	mem.Write(0x22, 0x01)
	assert.Equal(byte(0xa5), mem.Read(0x20))
	assert.Equal(byte(0x01), mem.Read(0x22))
	assert.Equal(byte(0xa5), mem.Read(0x2f))
	assert.Equal(byte(0xa5), mem.Read(0x30))
}

func TestSparse_Alignment(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewSparse(0, 0x100)
	assert.NoError(err)

	mem.Write(0x1234, 0x56)

	frags := slices.Collect(mem.Fragments())
	assert.Equal(1, len(frags))
	assert.Equal(uint32(0x1200), frags[0].Start)
	assert.Equal(uint32(0x100), frags[0].Size())
	assert.Equal(byte(0x56), frags[0].Read(0x34))

	// Same fragment, no new allocation.
	mem.Write(0x12ff, 0x78)
	mem.Write(0x1200, 0x9a)
	assert.Equal(uint32(0x100), mem.Allocated())
	assert.Equal(byte(0x78), mem.Read(0x12ff))
	assert.Equal(byte(0x9a), mem.Read(0x1200))
}

func TestSparse_Ordering(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewSparse(0, 0x10)
	assert.NoError(err)

	// Out of order writes must still leave the fragments sorted.
	for _, address := range []uint32{0x50, 0x10, 0x90, 0x30, 0x00, 0x70, 0x35} {
		mem.Write(address, byte(address))
	}

	var starts []uint32
	for frag := range mem.Fragments() {
		starts = append(starts, frag.Start)
	}
	assert.Equal([]uint32{0x00, 0x10, 0x30, 0x50, 0x70, 0x90}, starts)
	assert.Equal(uint32(6*0x10), mem.Allocated())

	for _, address := range []uint32{0x50, 0x10, 0x90, 0x30, 0x00, 0x70, 0x35} {
		assert.Equal(byte(address), mem.Read(address))
	}
}

func TestSparse_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewSparse(0, 0x40)
	assert.NoError(err)

	values := map[uint32]byte{}
	for n := range 200 {
		address := uint32((n * 7919) % BYTE_COUNT)
		value := byte(n*13 + 1)
		mem.Write(address, value)
		values[address] = value
	}

	for address, value := range values {
		assert.Equal(value, mem.Read(address), "address %#x", address)
	}

	// Allocated size never decreases, and fragments never overlap.
	var last *Fragment
	for frag := range mem.Fragments() {
		if last != nil {
			assert.LessOrEqual(last.Start+last.Size(), frag.Start)
		}
		last = frag
	}
}

func TestFragment_Grow(t *testing.T) {
	assert := assert.New(t)

	frag := &Fragment{Start: 0x100}
	assert.Equal(uint32(0), frag.Size())
	assert.False(frag.Contains(0x100))

	frag.Grow(4, 0xee)
	assert.Equal(uint32(4), frag.Size())
	assert.Equal([]byte{0xee, 0xee, 0xee, 0xee}, frag.Data)
	assert.True(frag.Contains(0x100))
	assert.True(frag.Contains(0x103))
	assert.False(frag.Contains(0x104))
	assert.False(frag.Contains(0xff))

	// Never shrinks.
	frag.Grow(2, 0)
	assert.Equal(uint32(4), frag.Size())
}
