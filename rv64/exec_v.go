// exec_v.go - vector executor V
//
// Implements vector configuration (vsetvli/vsetivli/vsetvl), unit-stride
// load/store, and the OPIVV/OPIVX/OPIVI integer arithmetic this subset
// specifies (VADD/VSUB/VRSUB). The vector register file is modeled as
// [][]byte with explicit typed-view helpers (elemAt/setElemAt) rather than
// the C union of byte/half/word/dword arrays the source used: element i
// sits at byte offset i*(sew/8) within its register group.

package rv64

func execV(h *Hart, tag Tag, raw uint32) Result {
	switch tag {
	case VSETVLI:
		rd, rs1, vtypei := decodeVsetvli(raw)
		return execVsetvl(h, rd, rs1, rs1 != 0 || rd != 0, h.GetX(rs1), DecodeVType(vtypei))
	case VSETIVLI:
		rd, uimm5, vtypei := decodeVsetivli(raw)
		return execVsetvl(h, rd, 0, true, uint64(uimm5), DecodeVType(vtypei))
	case VSETVL:
		rd, rs1, rs2 := decodeVsetvl(raw)
		return execVsetvl(h, rd, rs1, rs1 != 0 || rd != 0, h.GetX(rs1), DecodeVType(uint32(h.GetX(rs2))))
	case VLE8_V, VLE16_V, VLE32_V, VLE64_V:
		return execVLoad(h, tag, raw)
	case VSE8_V, VSE16_V, VSE32_V, VSE64_V:
		return execVStore(h, tag, raw)
	case VADD_VV, VSUB_VV:
		return execVArithVV(h, tag, raw)
	case VADD_VX, VSUB_VX, VRSUB_VX:
		return execVArithVX(h, tag, raw)
	case VADD_VI, VRSUB_VI:
		return execVArithVI(h, tag, raw)
	}
	return InvalidInstruction
}

// execVsetvl computes vlmax, sets vl = min(avl, vlmax) (or preserves vl
// when rd==x0 && rs1==x0 for the vsetvli/vsetvl forms), writes the new
// vtype CSR, and writes vl to rd.
func execVsetvl(h *Hart, rd, rs1 uint32, useAVL bool, avl uint64, vt VType) Result {
	if vt.Vill {
		h.Csrs.VType = vt
		h.Csrs.Vl = 0
		h.SetX(rd, 0)
		return Success
	}
	vlmax := vt.VLMAX(h.Cfg.VLENBits)
	var vl uint64
	if !useAVL {
		vl = h.Csrs.Vl
		if vl > vlmax {
			vl = vlmax
		}
	} else {
		vl = avl
		if vl > vlmax {
			vl = vlmax
		}
	}
	h.Csrs.VType = vt
	h.Csrs.Vl = vl
	h.Csrs.Vstart = 0
	h.SetX(rd, vl)
	return Success
}

func sewBytes(tag Tag) int {
	switch tag {
	case VLE8_V, VSE8_V:
		return 1
	case VLE16_V, VSE16_V:
		return 2
	case VLE32_V, VSE32_V:
		return 4
	case VLE64_V, VSE64_V:
		return 8
	}
	return 1
}

// groupAndOffset maps logical element index i within a LMUL-grouped vector
// register starting at base to the (register, byte-offset) pair it strides
// into.
func groupAndOffset(base uint32, i int, sewBytesN int, regBytes int) (reg uint32, off int) {
	elemsPerReg := regBytes / sewBytesN
	if elemsPerReg == 0 {
		elemsPerReg = 1
	}
	reg = base + uint32(i/elemsPerReg)
	off = (i % elemsPerReg) * sewBytesN
	return
}

func maskActive(h *Hart, vm bool, i int) bool {
	if vm {
		return true
	}
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	if byteIdx >= len(h.V[0]) {
		return false
	}
	return h.V[0][byteIdx]&(1<<bitIdx) != 0
}

func execVLoad(h *Hart, tag Tag, raw uint32) Result {
	if err := checkVill(h); err != Success {
		return err
	}
	vm, vd, rs1 := decodeVMem(raw)
	vl := int(h.Csrs.Vl)
	n := sewBytes(tag)
	regBytes := len(h.V[0])
	base := h.GetX(rs1)

	for i := 0; i < vl; i++ {
		reg, off := groupAndOffset(vd, i, n, regBytes)
		if int(reg) >= len(h.V) {
			return OutOfBounds
		}
		if !maskActive(h, vm, i) {
			continue
		}
		data, ok := h.Sys.ReadBytes(base+uint64(i*n), n)
		if !ok {
			return OutOfBounds
		}
		copy(h.V[reg][off:off+n], data)
	}
	h.Csrs.Vstart = 0
	return Success
}

func execVStore(h *Hart, tag Tag, raw uint32) Result {
	if err := checkVill(h); err != Success {
		return err
	}
	vm, vs3, rs1 := decodeVMem(raw)
	vl := int(h.Csrs.Vl)
	n := sewBytes(tag)
	regBytes := len(h.V[0])
	base := h.GetX(rs1)

	for i := 0; i < vl; i++ {
		reg, off := groupAndOffset(vs3, i, n, regBytes)
		if int(reg) >= len(h.V) {
			return OutOfBounds
		}
		if !maskActive(h, vm, i) {
			continue
		}
		if !h.Sys.WriteBytes(base+uint64(i*n), h.V[reg][off:off+n]) {
			return OutOfBounds
		}
	}
	h.Csrs.Vstart = 0
	return Success
}

func checkVill(h *Hart) Result {
	if h.Csrs.VType.Vill {
		return InvalidInstruction
	}
	return Success
}

// elemAt/setElemAt read/write one SEW-wide element at logical index i of
// the register group starting at base, sign-extended to int64 for use in
// the shared arithmetic loop below.
func elemAt(h *Hart, base uint32, i int, sewBits uint32) int64 {
	n := int(sewBits / 8)
	regBytes := len(h.V[0])
	reg, off := groupAndOffset(base, i, n, regBytes)
	var v uint64
	for k := n - 1; k >= 0; k-- {
		v = v<<8 | uint64(h.V[reg][off+k])
	}
	return signExtend(v, uint(sewBits))
}

func setElemAt(h *Hart, base uint32, i int, sewBits uint32, v int64) {
	n := int(sewBits / 8)
	regBytes := len(h.V[0])
	reg, off := groupAndOffset(base, i, n, regBytes)
	uv := uint64(v)
	for k := 0; k < n; k++ {
		h.V[reg][off+k] = byte(uv)
		uv >>= 8
	}
}

func execVArithVV(h *Hart, tag Tag, raw uint32) Result {
	if err := checkVill(h); err != Success {
		return err
	}
	vm, vs2, vs1, vd := decodeOPIVV(raw)
	sew := h.Csrs.VType.SEW
	vl := int(h.Csrs.Vl)
	for i := 0; i < vl; i++ {
		if !maskActive(h, vm, i) {
			continue
		}
		a := elemAt(h, vs2, i, sew)
		b := elemAt(h, vs1, i, sew)
		var res int64
		switch tag {
		case VADD_VV:
			res = a + b
		case VSUB_VV:
			res = a - b
		}
		setElemAt(h, vd, i, sew, res)
	}
	h.Csrs.Vstart = 0
	return Success
}

func execVArithVX(h *Hart, tag Tag, raw uint32) Result {
	if err := checkVill(h); err != Success {
		return err
	}
	vm, vs2, rs1, vd := decodeOPIVX(raw)
	sew := h.Csrs.VType.SEW
	vl := int(h.Csrs.Vl)
	scalar := signExtend(h.GetX(rs1), uint(sew))
	for i := 0; i < vl; i++ {
		if !maskActive(h, vm, i) {
			continue
		}
		a := elemAt(h, vs2, i, sew)
		var res int64
		switch tag {
		case VADD_VX:
			res = a + scalar
		case VSUB_VX:
			res = a - scalar
		case VRSUB_VX:
			res = scalar - a
		}
		setElemAt(h, vd, i, sew, res)
	}
	h.Csrs.Vstart = 0
	return Success
}

func execVArithVI(h *Hart, tag Tag, raw uint32) Result {
	if err := checkVill(h); err != Success {
		return err
	}
	vm, vs2, imm5, vd := decodeOPIVI(raw)
	sew := h.Csrs.VType.SEW
	vl := int(h.Csrs.Vl)
	for i := 0; i < vl; i++ {
		if !maskActive(h, vm, i) {
			continue
		}
		a := elemAt(h, vs2, i, sew)
		var res int64
		switch tag {
		case VADD_VI:
			res = a + imm5
		case VRSUB_VI:
			res = imm5 - a
		}
		setElemAt(h, vd, i, sew, res)
	}
	h.Csrs.Vstart = 0
	return Success
}
