// exec_f.go - float executor F (single precision) + host-FP rounding
// bridge
//
// Go's math package does not expose a settable hardware rounding mode or
// readable FP exception flags the way C's fenv.h does, so the host rounding
// bridge is approximated: fadd/fsub/etc are computed in float64 (enough
// headroom for a single rounding step at double precision) and then
// explicitly rounded to float32 by the selected rm, with flags derived from
// inspecting the rounded result against IEEE-754 boundaries rather than
// read from a CPU status register. fcsr still accumulates NX/UF/OF/DZ/NV,
// and RMM is implemented as sign(x)*floor(|x|+0.5), without relying on host
// FP environment control Go doesn't provide.

package rv64

import "math"

const (
	rmRNE = 0b000
	rmRTZ = 0b001
	rmRDN = 0b010
	rmRUP = 0b011
	rmRMM = 0b100
	rmDyn = 0b111
)

const (
	fflagNX = 1 << 0
	fflagUF = 1 << 1
	fflagOF = 1 << 2
	fflagDZ = 1 << 3
	fflagNV = 1 << 4
)

// rmFor resolves an instruction's rm field to a concrete mode, consulting
// fcsr.frm when rm selects Dynamic.
func rmFor(h *Hart, rm uint32) uint32 {
	if rm == rmDyn {
		return uint32(h.Csrs.Frm)
	}
	return rm
}

// roundToFloat32 rounds an exact float64 result to float32 under mode rm,
// reporting whether the rounding was inexact.
func roundToFloat32(v float64, rm uint32) (float32, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return float32(v), false
	}
	exact := float32(v)
	switch rm {
	case rmRTZ:
		if float64(exact) != v {
			// truncate toward zero: if default rounding overshot magnitude, step back
			if (v > 0 && float64(exact) > v) || (v < 0 && float64(exact) < v) {
				exact = math.Nextafter32(exact, 0)
			}
		}
	case rmRDN:
		if float64(exact) > v {
			exact = math.Nextafter32(exact, float32(math.Inf(-1)))
		}
	case rmRUP:
		if float64(exact) < v {
			exact = math.Nextafter32(exact, float32(math.Inf(1)))
		}
	case rmRMM:
		sign := float32(1)
		av := v
		if v < 0 {
			sign = -1
			av = -v
		}
		exact = sign * float32(math.Floor(av+0.5))
	}
	inexact := float64(exact) != v
	return exact, inexact
}

// fpBinOp performs op on a,b through the rounding/flag bridge, ORs the
// raised flags into fflags, and returns the rounded result (the caller
// writes it to the destination register).
func fpBinOp(h *Hart, rm uint32, a, b float32, op func(a, b float64) float64) float32 {
	mode := rmFor(h, rm)
	exact := op(float64(a), float64(b))
	result, inexact := roundToFloat32(exact, mode)

	var flags uint64
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		if isSignalingNaN32(a) || isSignalingNaN32(b) {
			flags |= fflagNV
		}
	}
	if math.IsNaN(exact) && !math.IsNaN(float64(a)) && !math.IsNaN(float64(b)) {
		flags |= fflagNV // e.g. Inf - Inf, Inf * 0, 0/0
	}
	if math.IsInf(float64(result), 0) && !math.IsInf(float64(a), 0) && !math.IsInf(float64(b), 0) {
		flags |= fflagOF | fflagNX
	}
	if result != 0 && math.Abs(float64(result)) < math.SmallestNonzeroFloat32*(1<<23) {
		flags |= fflagUF
	}
	if inexact {
		flags |= fflagNX
	}
	h.Csrs.AccumulateFflags(flags)
	return result
}

func isSignalingNaN32(f float32) bool {
	if !math.IsNaN(float64(f)) {
		return false
	}
	bits := math.Float32bits(f)
	return bits&(1<<22) == 0 // quiet bit (bit 22 of a 23-bit mantissa) clear => signaling
}

func f32(h *Hart, r uint32) float32 { return math.Float32frombits(h.F[r]) }
func setF32(h *Hart, r uint32, v float32) {
	if r < 32 {
		h.F[r] = math.Float32bits(v)
	}
}

func execF(h *Hart, tag Tag, raw uint32) Result {
	switch tag {
	case FLW:
		imm, rs1, rd := decodeI(raw)
		v, ok := h.ReadWord(h.GetX(rs1) + uint64(imm))
		if !ok {
			return OutOfBounds
		}
		h.F[rd] = v
		return Success
	case FSW:
		imm, rs1, rs2 := decodeS(raw)
		if !h.WriteWord(h.GetX(rs1)+uint64(imm), h.F[rs2]) {
			return OutOfBounds
		}
		return Success

	case FADD_S, FSUB_S, FMUL_S, FDIV_S:
		rs2, rs1, _, rm, rd := decodeRTypeF(raw)
		a, b := f32(h, rs1), f32(h, rs2)
		var res float32
		switch tag {
		case FADD_S:
			res = fpBinOp(h, rm, a, b, func(x, y float64) float64 { return x + y })
		case FSUB_S:
			res = fpBinOp(h, rm, a, b, func(x, y float64) float64 { return x - y })
		case FMUL_S:
			res = fpBinOp(h, rm, a, b, func(x, y float64) float64 { return x * y })
		case FDIV_S:
			if b == 0 && a != 0 && !math.IsNaN(float64(a)) {
				h.Csrs.AccumulateFflags(fflagDZ)
			}
			res = fpBinOp(h, rm, a, b, func(x, y float64) float64 { return x / y })
		}
		setF32(h, rd, res)
		return Success

	case FSQRT_S:
		_, rs1, _, rm, rd := decodeRTypeF(raw)
		a := f32(h, rs1)
		res := fpBinOp(h, rm, a, 0, func(x, _ float64) float64 { return math.Sqrt(x) })
		if a < 0 {
			h.Csrs.AccumulateFflags(fflagNV)
			res = float32(math.NaN())
		}
		setF32(h, rd, res)
		return Success

	case FMADD_S, FMSUB_S, FNMADD_S, FNMSUB_S:
		return execFusedF(h, tag, raw)

	case FSGNJ_S, FSGNJN_S, FSGNJX_S:
		rs2, rs1, rd := decodeR(raw)
		a, b := h.F[rs1], h.F[rs2]
		sign := b & 0x80000000
		switch tag {
		case FSGNJN_S:
			sign ^= 0x80000000
		case FSGNJX_S:
			sign = (a ^ b) & 0x80000000
		}
		h.F[rd] = (a &^ 0x80000000) | sign
		return Success

	case FMIN_S, FMAX_S:
		rs2, rs1, rd := decodeR(raw)
		a, b := f32(h, rs1), f32(h, rs2)
		res, flags := fMinMax(a, b, tag == FMAX_S)
		h.Csrs.AccumulateFflags(flags)
		setF32(h, rd, res)
		return Success

	case FEQ_S, FLT_S, FLE_S:
		rs2, rs1, rd := decodeR(raw)
		a, b := f32(h, rs1), f32(h, rs2)
		res, flags := fCompare(a, b, tag)
		h.Csrs.AccumulateFflags(flags)
		h.SetX(rd, res)
		return Success

	case FCLASS_S:
		_, rs1, rd := decodeR(raw)
		h.SetX(rd, fclass32(f32(h, rs1)))
		return Success

	case FCVT_W_S, FCVT_WU_S, FCVT_L_S, FCVT_LU_S:
		_, rs1, _, rm, rd := decodeRTypeF(raw)
		mode := rmFor(h, rm)
		h.SetX(rd, fcvtToInt(h, f32(h, rs1), tag, mode))
		return Success

	case FCVT_S_W, FCVT_S_WU, FCVT_S_L, FCVT_S_LU:
		_, rs1, _, rm, rd := decodeRTypeF(raw)
		setF32(h, rd, fcvtFromInt(h, h.GetX(rs1), tag, rmFor(h, rm)))
		return Success

	case FMV_X_W:
		_, rs1, rd := decodeR(raw)
		h.SetX(rd, uint64(int64(int32(h.F[rs1]))))
		return Success
	case FMV_W_X:
		_, rs1, rd := decodeR(raw)
		h.F[rd] = uint32(h.GetX(rs1))
		return Success

	// Decode-only: D/Q/Zfh have tags for classifier coverage
	// but no execution body in this subset.
	case FLD, FSD, FMADD_D, FMSUB_D, FNMSUB_D, FNMADD_D, FADD_D, FSUB_D,
		FMUL_D, FDIV_D, FSQRT_D, FSGNJ_D, FSGNJN_D, FSGNJX_D, FMIN_D, FMAX_D,
		FCVT_S_D, FCVT_D_S, FEQ_D, FLT_D, FLE_D, FCLASS_D, FCVT_W_D,
		FCVT_WU_D, FCVT_D_W, FCVT_D_WU, FCVT_L_D, FCVT_LU_D, FCVT_D_L,
		FCVT_D_LU, FMV_X_D, FMV_D_X:
		return Failure
	}
	return InvalidInstruction
}

// decodeRTypeF is the common (rs2, rs1, fmt, rm, rd) shape shared by most
// non-fused OP-FP tags; fmt is unused by the single-precision path but kept
// for symmetry with decodeR4.
func decodeRTypeF(raw uint32) (rs2, rs1, fmt, rm, rd uint32) {
	rs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	fmt = (raw >> 25) & 0x3
	rm = (raw >> 12) & 0x7
	rd = (raw >> 7) & 0x1f
	return
}

func execFusedF(h *Hart, tag Tag, raw uint32) Result {
	rs3, _, rs2, rs1, rm, rd := decodeR4(raw)
	a, b, c := f32(h, rs1), f32(h, rs2), f32(h, rs3)
	mode := rmFor(h, rm)
	exact := float64(a)*float64(b) + float64(c)
	switch tag {
	case FMSUB_S:
		exact = float64(a)*float64(b) - float64(c)
	case FNMADD_S:
		exact = -(float64(a)*float64(b) + float64(c))
	case FNMSUB_S:
		exact = -(float64(a)*float64(b) - float64(c))
	}
	res, inexact := roundToFloat32(exact, mode)
	var flags uint64
	if math.IsNaN(exact) {
		flags |= fflagNV
	}
	if inexact {
		flags |= fflagNX
	}
	h.Csrs.AccumulateFflags(flags)
	setF32(h, rd, res)
	return Success
}

// fMinMax implements IEEE-754-2008 min/max NaN rules: a qNaN operand is
// ignored in favor of the other operand; two NaNs yield a qNaN.
func fMinMax(a, b float32, max bool) (float32, uint64) {
	var flags uint64
	if isSignalingNaN32(a) || isSignalingNaN32(b) {
		flags |= fflagNV
	}
	aNaN, bNaN := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	switch {
	case aNaN && bNaN:
		return float32(math.NaN()), flags
	case aNaN:
		return b, flags
	case bNaN:
		return a, flags
	}
	if max {
		if a > b {
			return a, flags
		}
		return b, flags
	}
	if a < b {
		return a, flags
	}
	return b, flags
}

// fCompare implements FEQ (quiet compare, no NV on qNaN) and FLT/FLE
// (signaling compare, NV on any NaN)
func fCompare(a, b float32, tag Tag) (uint64, uint64) {
	var flags uint64
	aNaN, bNaN := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	if aNaN || bNaN {
		switch tag {
		case FEQ_S, FEQ_D:
			if isSignalingNaN32(a) || isSignalingNaN32(b) {
				flags |= fflagNV
			}
		default:
			flags |= fflagNV
		}
		return 0, flags
	}
	switch tag {
	case FEQ_S, FEQ_D:
		return boolToU64(a == b), flags
	case FLT_S, FLT_D:
		return boolToU64(a < b), flags
	case FLE_S, FLE_D:
		return boolToU64(a <= b), flags
	}
	return 0, flags
}

// fclass32 returns the 10-bit one-hot classification mask: exactly one of
// bits 0..9 is set, in the order {-inf,-normal,-subnormal,-0,+0,+subnormal,
// +normal,+inf, signaling-NaN, quiet-NaN}.
func fclass32(f float32) uint64 {
	bits := math.Float32bits(f)
	sign := bits>>31 != 0
	switch {
	case math.IsNaN(float64(f)):
		if isSignalingNaN32(f) {
			return 1 << 8
		}
		return 1 << 9
	case math.IsInf(float64(f), 1):
		return 1 << 7
	case math.IsInf(float64(f), -1):
		return 1 << 0
	case f == 0:
		if sign {
			return 1 << 3
		}
		return 1 << 4
	default:
		exp := (bits >> 23) & 0xff
		subnormal := exp == 0
		switch {
		case sign && subnormal:
			return 1 << 2
		case sign:
			return 1 << 1
		case subnormal:
			return 1 << 5
		default:
			return 1 << 6
		}
	}
}

// fcvtToInt rounds f to an integer under mode and saturates to the target
// range, setting NV on NaN/Inf/out-of-range
func fcvtToInt(h *Hart, f float32, tag Tag, mode uint32) uint64 {
	if math.IsNaN(float64(f)) {
		h.Csrs.AccumulateFflags(fflagNV)
		return fcvtSaturateMax(tag)
	}
	rounded, _ := roundToFloat32(float64(f), mode)
	rf := roundNearestInt(float64(rounded), mode)

	switch tag {
	case FCVT_W_S:
		if rf > math.MaxInt32 || rf < math.MinInt32 {
			h.Csrs.AccumulateFflags(fflagNV)
			if rf > 0 || math.IsInf(float64(f), 1) {
				return uint64(int64(int32(math.MaxInt32)))
			}
			minW := int64(math.MinInt32)
			return uint64(minW)
		}
		return uint64(int64(int32(rf)))
	case FCVT_WU_S:
		if rf < 0 || rf > math.MaxUint32 {
			h.Csrs.AccumulateFflags(fflagNV)
			if rf < 0 {
				return 0
			}
			return uint64(uint32(math.MaxUint32))
		}
		return uint64(uint32(rf))
	case FCVT_L_S:
		if rf >= math.MaxInt64 || rf < math.MinInt64 {
			h.Csrs.AccumulateFflags(fflagNV)
			if rf > 0 {
				return math.MaxInt64
			}
			return 1 << 63 // MinInt64 bit pattern
		}
		return uint64(int64(rf))
	case FCVT_LU_S:
		if rf < 0 {
			h.Csrs.AccumulateFflags(fflagNV)
			return 0
		}
		if rf >= math.MaxUint64 {
			h.Csrs.AccumulateFflags(fflagNV)
			return math.MaxUint64
		}
		return uint64(rf)
	}
	return 0
}

func fcvtSaturateMax(tag Tag) uint64 {
	switch tag {
	case FCVT_W_S:
		return uint64(int64(int32(math.MaxInt32)))
	case FCVT_WU_S:
		return uint64(uint32(math.MaxUint32))
	case FCVT_L_S:
		return math.MaxInt64
	case FCVT_LU_S:
		return math.MaxUint64
	}
	return 0
}

func roundNearestInt(v float64, mode uint32) float64 {
	switch mode {
	case rmRTZ:
		return math.Trunc(v)
	case rmRDN:
		return math.Floor(v)
	case rmRUP:
		return math.Ceil(v)
	case rmRMM:
		if v < 0 {
			return -math.Floor(-v + 0.5)
		}
		return math.Floor(v + 0.5)
	default: // RNE
		return math.RoundToEven(v)
	}
}

func fcvtFromInt(h *Hart, x uint64, tag Tag, mode uint32) float32 {
	var exact float64
	switch tag {
	case FCVT_S_W:
		exact = float64(int32(x))
	case FCVT_S_WU:
		exact = float64(uint32(x))
	case FCVT_S_L:
		exact = float64(int64(x))
	case FCVT_S_LU:
		exact = float64(x)
	}
	res, inexact := roundToFloat32(exact, mode)
	if inexact {
		h.Csrs.AccumulateFflags(fflagNX)
	}
	return res
}
