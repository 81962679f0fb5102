// Package memory implements the simulated storage of the VuPP machine.
//
// Sparse is a byte addressed space that only keeps the fragments which have
// been written. Reads from anywhere else return a fixed initializer value.
// Word layers the VuPP view on top: 65536 big-endian 16-bit words, each one
// occupying two consecutive bytes of a 128 KB Sparse.
package memory
