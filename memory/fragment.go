package memory

// Fragment is a contiguous run of allocated bytes starting at Start.
type Fragment struct {
	Start uint32 // Byte address of Data[0].
	Data  []byte // Stored bytes, Data[n] is address Start+n.
}

// Size is the number of bytes covered by the fragment.
func (frag *Fragment) Size() uint32 {
	return uint32(len(frag.Data))
}

// Contains returns true if address lies inside the fragment.
func (frag *Fragment) Contains(address uint32) bool {
	return address >= frag.Start && address-frag.Start < frag.Size()
}

// Read the byte at offset from the fragment start.
func (frag *Fragment) Read(offset uint32) byte {
	return frag.Data[offset]
}

// Write the byte at offset from the fragment start.
func (frag *Fragment) Write(offset uint32, value byte) {
	frag.Data[offset] = value
}

// Grow extends the fragment to size bytes, filling new space with
// initializer. Fragments never shrink; a smaller size is ignored.
func (frag *Fragment) Grow(size uint32, initializer byte) {
	for frag.Size() < size {
		frag.Data = append(frag.Data, initializer)
	}
}
