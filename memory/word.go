package memory

const (
	WORD_COUNT    = 0x10000        // Words in the VuPP address space.
	BYTE_COUNT    = 2 * WORD_COUNT // Bytes backing the word space.
	INITIALIZER   = 0x00           // Default value of unwritten bytes.
	FRAGMENT_SIZE = BYTE_COUNT     // Default fragment, one covers everything.
)

// Word is the 16-bit, big-endian view of a Sparse byte memory used by the
// VuPP processor. Word address a is stored at bytes 2a (high) and 2a+1 (low).
type Word struct {
	bytes *Sparse
}

// NewWord creates a word memory with the default initializer and fragment
// size. Nothing is allocated until the first write.
func NewWord() *Word {
	mem, err := NewSparse(INITIALIZER, FRAGMENT_SIZE)
	if err != nil {
		panic(err)
	}

	return NewWordOn(mem)
}

// NewWordOn creates a word memory backed by an existing byte memory.
func NewWordOn(bytes *Sparse) *Word {
	return &Word{bytes: bytes}
}

// Bytes returns the underlying byte memory.
func (mem *Word) Bytes() *Sparse {
	return mem.bytes
}

// Read returns the word at address.
func (mem *Word) Read(address uint16) uint16 {
	base := 2 * uint32(address)
	return uint16(mem.bytes.Read(base))<<8 | uint16(mem.bytes.Read(base+1))
}

// Write stores value at address, high byte first.
func (mem *Word) Write(address uint16, value uint16) {
	base := 2 * uint32(address)
	mem.bytes.Write(base, byte(value>>8))
	mem.bytes.Write(base+1, byte(value))
}

// ReadRange returns count words starting at start. The address wraps from
// 0xffff back to 0.
func (mem *Word) ReadRange(start uint16, count int) (words []uint16) {
	words = make([]uint16, 0, max(count, 0))
	for n := range count {
		words = append(words, mem.Read(start+uint16(n)))
	}

	return
}
