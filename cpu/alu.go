package cpu

// Effect is the result of an operation on a destination value: the new
// value, and which flags the operation defines.
type Effect struct {
	Value    uint16 // New destination value.
	Carry    bool   // New carry flag, when SetCarry.
	SetCarry bool   // Operation updates the carry flag.
	SetZero  bool   // Operation updates the zero flag from Value.
}

// Update computes the Effect for a current destination value.
type Update func(current uint16) Effect

// isZero is the zero flag rule shared by every operation that sets it.
func isZero(value uint16) bool {
	return value == 0
}

// Set replaces the destination without touching flags.
func Set(value uint16) Effect {
	return Effect{Value: value}
}

// Add computes dst + src + carry.
func Add(dst, src uint16, carry bool) Effect {
	sum := uint32(dst) + uint32(src)
	if carry {
		sum++
	}

	return Effect{Value: uint16(sum), Carry: sum > 0xffff, SetCarry: true, SetZero: true}
}

// Sub computes dst - src - carry. Carry is set on borrow.
func Sub(dst, src uint16, carry bool) Effect {
	diff := int32(dst) - int32(src)
	if carry {
		diff--
	}

	return Effect{Value: uint16(diff), Carry: diff < 0, SetCarry: true, SetZero: true}
}

// And computes dst & src.
func And(dst, src uint16) Effect {
	return Effect{Value: dst & src, SetZero: true}
}

// Or computes dst | src.
func Or(dst, src uint16) Effect {
	return Effect{Value: dst | src, SetZero: true}
}

// Xor computes dst ^ src.
func Xor(dst, src uint16) Effect {
	return Effect{Value: dst ^ src, SetZero: true}
}

// Inc adds one, leaving carry alone.
func Inc(dst uint16) Effect {
	return Effect{Value: dst + 1, SetZero: true}
}

// Dec subtracts one, leaving carry alone.
func Dec(dst uint16) Effect {
	return Effect{Value: dst - 1, SetZero: true}
}

// Shl shifts left; the dropped high bit goes to carry.
func Shl(dst uint16) Effect {
	return Effect{Value: dst << 1, Carry: dst&0x8000 != 0, SetCarry: true, SetZero: true}
}

// Shr shifts right logically; the dropped low bit goes to carry.
func Shr(dst uint16) Effect {
	return Effect{Value: dst >> 1, Carry: dst&0x0001 != 0, SetCarry: true, SetZero: true}
}

// Rtl rotates left. The dropped high bit goes to carry and to bit 0.
func Rtl(dst uint16) Effect {
	carry := dst&0x8000 != 0
	value := dst << 1
	if carry {
		value |= 0x0001
	}

	return Effect{Value: value, Carry: carry, SetCarry: true, SetZero: true}
}

// Rtr rotates right. The dropped low bit goes to carry and to bit 15.
func Rtr(dst uint16) Effect {
	carry := dst&0x0001 != 0
	value := dst >> 1
	if carry {
		value |= 0x8000
	}

	return Effect{Value: value, Carry: carry, SetCarry: true, SetZero: true}
}

// Compare returns the flags of comparing a second operand against a first
// one: zero when equal, carry when second <= first.
func Compare(first, second uint16) (zero, carry bool) {
	zero = second == first
	carry = second <= first
	return
}
