package rv64

import "testing"

func TestFields_SignExtend(t *testing.T) {
	if got := signExtend(0xfff, 12); got != -1 {
		t.Fatalf("signExtend(0xfff,12) = %d, want -1", got)
	}
	if got := signExtend(0x7ff, 12); got != 0x7ff {
		t.Fatalf("signExtend(0x7ff,12) = %d, want %d", got, 0x7ff)
	}
	if got := signExtend(0, 12); got != 0 {
		t.Fatalf("signExtend(0,12) = %d, want 0", got)
	}
}

func TestFields_DecodeI_AddiT0T1Plus5(t *testing.T) {
	// addi t0, t1, 5 -> t0=x5, t1=x6
	raw := encodeI(5, 6, 0b000, 5, opOpImm)
	imm, rs1, rd := decodeI(raw)
	if imm != 5 || rs1 != 6 || rd != 5 {
		t.Fatalf("decodeI = (%d,%d,%d), want (5,6,5)", imm, rs1, rd)
	}
}

func TestFields_DecodeI_NegativeImmediate(t *testing.T) {
	raw := encodeI(-16, 1, 0b000, 2, opOpImm)
	imm, rs1, rd := decodeI(raw)
	if imm != -16 || rs1 != 1 || rd != 2 {
		t.Fatalf("decodeI = (%d,%d,%d), want (-16,1,2)", imm, rs1, rd)
	}
}

func TestFields_DecodeR(t *testing.T) {
	raw := encodeR(0, 7, 8, 0b000, 9, opOp)
	rs2, rs1, rd := decodeR(raw)
	if rs2 != 7 || rs1 != 8 || rd != 9 {
		t.Fatalf("decodeR = (%d,%d,%d), want (7,8,9)", rs2, rs1, rd)
	}
}

func TestFields_DecodeS_RoundTrip(t *testing.T) {
	raw := encodeS(-8, 3, 4, 0b011, opStore)
	imm, rs1, rs2 := decodeS(raw)
	if imm != -8 || rs1 != 4 || rs2 != 3 {
		t.Fatalf("decodeS = (%d,%d,%d), want (-8,4,3)", imm, rs1, rs2)
	}
}

func TestFields_DecodeB_RoundTrip(t *testing.T) {
	raw := encodeB(-4, 1, 2, 0b000, opBranch)
	offset, rs1, rs2 := decodeB(raw)
	if offset != -4 || rs1 != 2 || rs2 != 1 {
		t.Fatalf("decodeB = (%d,%d,%d), want (-4,2,1)", offset, rs1, rs2)
	}
}

func TestFields_DecodeJ_RoundTrip(t *testing.T) {
	raw := encodeJ(2044, 1, opJal)
	offset, rd := decodeJ(raw)
	if offset != 2044 || rd != 1 {
		t.Fatalf("decodeJ = (%d,%d), want (2044,1)", offset, rd)
	}
}

func TestFields_DecodeU(t *testing.T) {
	raw := encodeU(0x12345, 10, opLui)
	imm20, rd := decodeU(raw)
	if imm20 != 0x12345 || rd != 10 {
		t.Fatalf("decodeU = (%#x,%d), want (%#x,10)", imm20, rd, 0x12345)
	}
}

func TestFields_DecodeIShamt_Doubleword(t *testing.T) {
	raw := encodeR(0, 63, 5, 0b001, 6, opOpImm)
	shamt, rs1, rd := decodeIShamt(raw, 6)
	if shamt != 63 || rs1 != 5 || rd != 6 {
		t.Fatalf("decodeIShamt = (%d,%d,%d), want (63,5,6)", shamt, rs1, rd)
	}
}

func TestFields_DecodeAtomic(t *testing.T) {
	raw := uint32(1)<<26 | 2<<20 | 3<<15 | 4<<7 // aq=1, rl=0, rs2=2, rs1=3, rd=4
	aq, rl, rs2, rs1, rd := decodeAtomic(raw)
	if !aq || rl || rs2 != 2 || rs1 != 3 || rd != 4 {
		t.Fatalf("decodeAtomic = (%v,%v,%d,%d,%d), want (true,false,2,3,4)", aq, rl, rs2, rs1, rd)
	}
}
