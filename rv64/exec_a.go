// exec_a.go - atomic executor A
//
// Every AMO runs inside Sys.WithLock so no other hart can observe a
// partial read-modify-write. LR/SC implement a per-hart
// reservation set, invalidated by any overlapping store anywhere in the
// shared system.

package rv64

func execA(h *Hart, tag Tag, raw uint32) Result {
	_, _, rs2, rs1, rd := decodeAtomic(raw)
	addr := h.GetX(rs1)

	isDouble := isDoubleWidthAMO(tag)
	width := 4
	if isDouble {
		width = 8
	}

	switch tag {
	case LR_W, LR_D:
		return execLR(h, addr, width, rd, isDouble)
	case SC_W, SC_D:
		return execSC(h, addr, width, rs2, rd, isDouble)
	}

	var result Result = Success
	h.Sys.WithLock(func() {
		raw64, ok := h.readAtomicLocked(addr, width)
		if !ok {
			result = OutOfBounds
			return
		}
		operand := h.GetX(rs2)
		newVal := amoCombine(tag, raw64, operand, isDouble)
		if !h.writeAtomicLocked(addr, newVal, width) {
			result = OutOfBounds
			return
		}
		if isDouble {
			h.SetX(rd, raw64)
		} else {
			h.SetX(rd, uint64(signExtend(raw64, 32)))
		}
	})
	return result
}

func isDoubleWidthAMO(tag Tag) bool {
	switch tag {
	case LR_D, SC_D, AMOSWAP_D, AMOADD_D, AMOXOR_D, AMOAND_D, AMOOR_D,
		AMOMIN_D, AMOMAX_D, AMOMINU_D, AMOMAXU_D:
		return true
	}
	return false
}

func amoCombine(tag Tag, old, operand uint64, isDouble bool) uint64 {
	if !isDouble {
		old = old & 0xffffffff
		operand = operand & 0xffffffff
	}
	switch tag {
	case AMOSWAP_W, AMOSWAP_D:
		return operand
	case AMOADD_W, AMOADD_D:
		return old + operand
	case AMOXOR_W, AMOXOR_D:
		return old ^ operand
	case AMOAND_W, AMOAND_D:
		return old & operand
	case AMOOR_W, AMOOR_D:
		return old | operand
	case AMOMIN_W:
		if int32(old) < int32(operand) {
			return old
		}
		return operand
	case AMOMIN_D:
		if int64(old) < int64(operand) {
			return old
		}
		return operand
	case AMOMAX_W:
		if int32(old) > int32(operand) {
			return old
		}
		return operand
	case AMOMAX_D:
		if int64(old) > int64(operand) {
			return old
		}
		return operand
	case AMOMINU_W, AMOMINU_D:
		if old < operand {
			return old
		}
		return operand
	case AMOMAXU_W, AMOMAXU_D:
		if old > operand {
			return old
		}
		return operand
	}
	return old
}

func (h *Hart) readAtomicLocked(addr uint64, width int) (uint64, bool) {
	data, ok := h.Sys.readLocked(addr, width)
	if !ok {
		return 0, false
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v, true
}

func (h *Hart) writeAtomicLocked(addr uint64, v uint64, width int) bool {
	data := make([]byte, width)
	for i := 0; i < width; i++ {
		data[i] = byte(v)
		v >>= 8
	}
	return h.Sys.writeLocked(addr, data)
}

func execLR(h *Hart, addr uint64, width int, rd uint32, isDouble bool) Result {
	var result Result = Success
	h.Sys.WithLock(func() {
		v, ok := h.readAtomicLocked(addr, width)
		if !ok {
			result = OutOfBounds
			return
		}
		r := h.Sys.reservationForLocked(h.reservationIdx)
		r.valid = true
		r.addr = addr
		r.width = width
		if isDouble {
			h.SetX(rd, v)
		} else {
			h.SetX(rd, uint64(signExtend(v, 32)))
		}
	})
	return result
}

func execSC(h *Hart, addr uint64, width int, rs2 uint32, rd uint32, isDouble bool) Result {
	var result Result = Success
	h.Sys.WithLock(func() {
		r := h.Sys.reservationForLocked(h.reservationIdx)
		if !r.valid || r.addr != addr || r.width != width {
			h.SetX(rd, 1) // failure
			return
		}
		var data []byte
		if isDouble {
			data = make([]byte, 8)
			v := h.GetX(rs2)
			for i := 0; i < 8; i++ {
				data[i] = byte(v)
				v >>= 8
			}
		} else {
			data = make([]byte, 4)
			v := uint32(h.GetX(rs2))
			for i := 0; i < 4; i++ {
				data[i] = byte(v)
				v >>= 8
			}
		}
		if !h.Sys.writeLocked(addr, data) {
			result = OutOfBounds
			return
		}
		r.valid = false
		h.SetX(rd, 0) // success
	})
	return result
}
