// exec_m.go - multiply/divide executor M

package rv64

import "math/bits"

func execM(h *Hart, tag Tag, raw uint32) Result {
	rs2, rs1, rd := decodeR(raw)
	a, b := h.GetX(rs1), h.GetX(rs2)

	switch tag {
	case MUL:
		h.SetX(rd, a*b)
	case MULH:
		h.SetX(rd, mulhSigned(int64(a), int64(b)))
	case MULHU:
		hi, _ := bits.Mul64(a, b)
		h.SetX(rd, hi)
	case MULHSU:
		h.SetX(rd, mulhsu(int64(a), b))
	case DIV:
		h.SetX(rd, uint64(divSigned(int64(a), int64(b))))
	case DIVU:
		if b == 0 {
			h.SetX(rd, ^uint64(0))
		} else {
			h.SetX(rd, a/b)
		}
	case REM:
		h.SetX(rd, uint64(remSigned(int64(a), int64(b))))
	case REMU:
		if b == 0 {
			h.SetX(rd, a)
		} else {
			h.SetX(rd, a%b)
		}
	case MULW:
		res := int32(a) * int32(b)
		h.SetX(rd, uint64(int64(res)))
	case DIVW:
		res := divSigned32(int32(a), int32(b))
		h.SetX(rd, uint64(int64(res)))
	case DIVUW:
		ua, ub := uint32(a), uint32(b)
		var res int32
		if ub == 0 {
			res = -1
		} else {
			res = int32(ua / ub)
		}
		h.SetX(rd, uint64(int64(res)))
	case REMW:
		res := remSigned32(int32(a), int32(b))
		h.SetX(rd, uint64(int64(res)))
	case REMUW:
		ua, ub := uint32(a), uint32(b)
		var res int32
		if ub == 0 {
			res = int32(ua)
		} else {
			res = int32(ua % ub)
		}
		h.SetX(rd, uint64(int64(res)))
	default:
		return InvalidInstruction
	}
	return Success
}

// mulhSigned returns the high 64 bits of the full signed 128-bit product.
func mulhSigned(a, b int64) uint64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	hi -= uint64((a >> 63)) & uint64(b)
	hi -= uint64((b >> 63)) & uint64(a)
	_ = lo
	return hi
}

// mulhsu returns the high 64 bits of signed-a * unsigned-b.
func mulhsu(a int64, b uint64) uint64 {
	hi, _ := bits.Mul64(uint64(a), b)
	hi -= uint64(a>>63) & b
	return hi
}

// divSigned implements DIV's defined edge cases: divide by
// zero yields -1; INT64_MIN / -1 overflow yields INT64_MIN.
func divSigned(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == minInt64 && b == -1 {
		return minInt64
	}
	return a / b
}

func remSigned(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a == minInt64 && b == -1 {
		return 0
	}
	return a % b
}

const minInt64 = -1 << 63
const minInt32 = -1 << 31

func divSigned32(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == minInt32 && b == -1 {
		return minInt32
	}
	return a / b
}

func remSigned32(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == minInt32 && b == -1 {
		return 0
	}
	return a % b
}
