// exec_i.go - base-integer executor: I + Zicsr + Zifencei

package rv64

// pcOfInstruction and nextPC are passed in by the driver: "pc of instruction"
// is PC before the driver's post-fetch increment.
type execContext struct {
	pcOfInstruction uint64
	nextPC          uint64
	raw             uint32
	length          int
}

// execI dispatches the base-integer + Zicsr + Zifencei tags. It mutates h
// and returns the step's Result; on JAL/JALR/branches taken it sets h.PC
// itself and returns a sentinel the driver recognizes via branched.
func execI(h *Hart, tag Tag, ctx execContext) (Result, bool /*branched*/) {
	raw := ctx.raw
	switch tag {
	case LUI:
		imm20, rd := decodeU(raw)
		h.SetX(rd, uint64(signExtend(uint64(imm20)<<12, 32)))
		return Success, false

	case AUIPC:
		imm20, rd := decodeU(raw)
		h.SetX(rd, ctx.pcOfInstruction+uint64(signExtend(uint64(imm20)<<12, 32)))
		return Success, false

	case JAL:
		offset, rd := decodeJ(raw)
		h.SetX(rd, ctx.nextPC)
		h.PC = uint64(int64(ctx.pcOfInstruction) + offset)
		return Success, true

	case JALR:
		imm, rs1, rd := decodeI(raw)
		target := (h.GetX(rs1) + uint64(imm)) &^ 1
		h.SetX(rd, ctx.nextPC)
		h.PC = target
		return Success, true

	case BEQ, BNE, BLT, BGE, BLTU, BGEU:
		offset, rs1, rs2 := decodeB(raw)
		a, b := h.GetX(rs1), h.GetX(rs2)
		var taken bool
		switch tag {
		case BEQ:
			taken = a == b
		case BNE:
			taken = a != b
		case BLT:
			taken = int64(a) < int64(b)
		case BGE:
			taken = int64(a) >= int64(b)
		case BLTU:
			taken = a < b
		case BGEU:
			taken = a >= b
		}
		if taken {
			h.PC = uint64(int64(ctx.pcOfInstruction) + offset)
			return Success, true
		}
		return Success, false

	case LB, LH, LW, LBU, LHU, LWU, LD:
		imm, rs1, rd := decodeI(raw)
		addr := h.GetX(rs1) + uint64(imm)
		return execLoad(h, tag, addr, rd), false

	case SB, SH, SW, SD:
		imm, rs1, rs2 := decodeS(raw)
		addr := h.GetX(rs1) + uint64(imm)
		return execStore(h, tag, addr, h.GetX(rs2)), false

	case ADDI, SLTI, SLTIU, XORI, ORI, ANDI:
		imm, rs1, rd := decodeI(raw)
		a := h.GetX(rs1)
		var res uint64
		switch tag {
		case ADDI:
			res = a + uint64(imm)
		case SLTI:
			res = boolToU64(int64(a) < imm)
		case SLTIU:
			res = boolToU64(a < uint64(imm))
		case XORI:
			res = a ^ uint64(imm)
		case ORI:
			res = a | uint64(imm)
		case ANDI:
			res = a & uint64(imm)
		}
		h.SetX(rd, res)
		return Success, false

	case SLLI:
		shamt, rs1, rd := decodeIShamt(raw, 6)
		h.SetX(rd, h.GetX(rs1)<<shamt)
		return Success, false
	case SRLI:
		shamt, rs1, rd := decodeIShamt(raw, 6)
		h.SetX(rd, h.GetX(rs1)>>shamt)
		return Success, false
	case SRAI:
		shamt, rs1, rd := decodeIShamt(raw, 6)
		h.SetX(rd, uint64(int64(h.GetX(rs1))>>shamt))
		return Success, false

	case ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND:
		rs2, rs1, rd := decodeR(raw)
		a, b := h.GetX(rs1), h.GetX(rs2)
		var res uint64
		switch tag {
		case ADD:
			res = a + b
		case SUB:
			res = a - b
		case SLL:
			res = a << (b & 0x3f)
		case SLT:
			res = boolToU64(int64(a) < int64(b))
		case SLTU:
			res = boolToU64(a < b)
		case XOR:
			res = a ^ b
		case SRL:
			res = a >> (b & 0x3f)
		case SRA:
			res = uint64(int64(a) >> (b & 0x3f))
		case OR:
			res = a | b
		case AND:
			res = a & b
		}
		h.SetX(rd, res)
		return Success, false

	case ADDIW:
		imm, rs1, rd := decodeI(raw)
		res := int32(h.GetX(rs1)) + int32(imm)
		h.SetX(rd, uint64(int64(res)))
		return Success, false
	case SLLIW:
		shamt, rs1, rd := decodeIShamt(raw, 5)
		res := int32(uint32(h.GetX(rs1)) << shamt)
		h.SetX(rd, uint64(int64(res)))
		return Success, false
	case SRLIW:
		shamt, rs1, rd := decodeIShamt(raw, 5)
		res := int32(uint32(h.GetX(rs1)) >> shamt)
		h.SetX(rd, uint64(int64(res)))
		return Success, false
	case SRAIW:
		shamt, rs1, rd := decodeIShamt(raw, 5)
		res := int32(h.GetX(rs1)) >> shamt
		h.SetX(rd, uint64(int64(res)))
		return Success, false

	case ADDW, SUBW, SLLW, SRLW, SRAW:
		rs2, rs1, rd := decodeR(raw)
		a, b := int32(h.GetX(rs1)), int32(h.GetX(rs2))
		var res int32
		switch tag {
		case ADDW:
			res = a + b
		case SUBW:
			res = a - b
		case SLLW:
			res = int32(uint32(a) << (uint32(b) & 0x1f))
		case SRLW:
			res = int32(uint32(a) >> (uint32(b) & 0x1f))
		case SRAW:
			res = a >> (uint32(b) & 0x1f)
		}
		h.SetX(rd, uint64(int64(res)))
		return Success, false

	case FENCE, FENCE_TSO, PAUSE, FENCE_I:
		// no-op: single-threaded-per-hart, sequentially consistent shared
		// memory at this specification level.
		return Success, false

	case ECALL:
		return h.Trap(h, false), false
	case EBREAK:
		return h.Trap(h, true), false

	case CSRRW, CSRRS, CSRRC, CSRRWI, CSRRSI, CSRRCI:
		return execCSR(h, tag, raw), false
	}
	return InvalidInstruction, false
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func execLoad(h *Hart, tag Tag, addr uint64, rd uint32) Result {
	switch tag {
	case LB:
		v, ok := h.ReadByte(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(signExtend(uint64(v), 8)))
	case LH:
		v, ok := h.ReadHalf(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(signExtend(uint64(v), 16)))
	case LW:
		v, ok := h.ReadWord(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(signExtend(uint64(v), 32)))
	case LBU:
		v, ok := h.ReadByte(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(v))
	case LHU:
		v, ok := h.ReadHalf(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(v))
	case LWU:
		v, ok := h.ReadWord(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, uint64(v))
	case LD:
		v, ok := h.ReadDword(addr)
		if !ok {
			return OutOfBounds
		}
		h.SetX(rd, v)
	}
	return Success
}

func execStore(h *Hart, tag Tag, addr uint64, value uint64) Result {
	var ok bool
	switch tag {
	case SB:
		ok = h.WriteByte(addr, uint8(value))
	case SH:
		ok = h.WriteHalf(addr, uint16(value))
	case SW:
		ok = h.WriteWord(addr, uint32(value))
	case SD:
		ok = h.WriteDword(addr, value)
	}
	if !ok {
		return OutOfBounds
	}
	return Success
}

// execCSR implements the six Zicsr variants. Read-then-modify-then-write
// order matches the unprivileged spec: rd gets the OLD value even when
// rd==rs1/rs2 triggers an RMW against the same register.
func execCSR(h *Hart, tag Tag, raw uint32) Result {
	switch tag {
	case CSRRW, CSRRS, CSRRC:
		csr12, rs1, rd := decodeCSR(raw)
		old, ok := h.Csrs.Get(csr12)
		if !ok {
			return InvalidCsr
		}
		src := h.GetX(rs1)
		var next uint64
		switch tag {
		case CSRRW:
			next = src
		case CSRRS:
			next = old | src
		case CSRRC:
			next = old &^ src
		}
		if tag == CSRRW || rs1 != 0 {
			if !h.Csrs.Set(csr12, next) {
				return InvalidCsr
			}
		}
		h.SetX(rd, old)
		return Success
	case CSRRWI, CSRRSI, CSRRCI:
		csr12, uimm5, rd := decodeCSRI(raw)
		old, ok := h.Csrs.Get(csr12)
		if !ok {
			return InvalidCsr
		}
		var next uint64
		switch tag {
		case CSRRWI:
			next = uint64(uimm5)
		case CSRRSI:
			next = old | uint64(uimm5)
		case CSRRCI:
			next = old &^ uint64(uimm5)
		}
		if tag == CSRRWI || uimm5 != 0 {
			if !h.Csrs.Set(csr12, next) {
				return InvalidCsr
			}
		}
		h.SetX(rd, old)
		return Success
	}
	return InvalidInstruction
}
