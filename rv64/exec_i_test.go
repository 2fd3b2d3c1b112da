package rv64

import "testing"

func TestExecI_Addi(t *testing.T) {
	r := newRig()
	r.h.SetX(6, 10)
	raw := encodeI(5, 6, 0b000, 5, opOpImm)
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if got := r.h.GetX(5); got != 15 {
		t.Fatalf("X5 = %d, want 15", got)
	}
}

func TestExecI_Lui(t *testing.T) {
	r := newRig()
	raw := encodeU(0x12345, 3, opLui)
	r.step(raw)
	if got := r.h.GetX(3); got != 0x12345000 {
		t.Fatalf("X3 = %#x, want %#x", got, 0x12345000)
	}
}

func TestExecI_JalSetsLinkAndPC(t *testing.T) {
	r := newRig()
	r.h.PC = 0x1000
	raw := encodeJ(16, 1, opJal)
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if r.h.GetX(1) != 0x1004 {
		t.Fatalf("link register = %#x, want 0x1004", r.h.GetX(1))
	}
	if r.h.PC != 0x1010 {
		t.Fatalf("PC = %#x, want 0x1010", r.h.PC)
	}
}

func TestExecI_BranchTakenAndNotTaken(t *testing.T) {
	r := newRig()
	r.h.PC = 0x2000
	r.h.SetX(1, 5)
	r.h.SetX(2, 5)
	raw := encodeB(8, 1, 2, 0b000, opBranch) // beq x1, x2, +8
	r.step(raw)
	if r.h.PC != 0x2008 {
		t.Fatalf("taken branch PC = %#x, want 0x2008", r.h.PC)
	}

	r2 := newRig()
	r2.h.PC = 0x2000
	r2.h.SetX(1, 1)
	r2.h.SetX(2, 2)
	notTaken := encodeB(8, 1, 2, 0b000, opBranch)
	r2.step(notTaken)
	if r2.h.PC != 0x2004 {
		t.Fatalf("not-taken branch PC = %#x, want 0x2004 (falls through to next instruction)", r2.h.PC)
	}
}

func TestExecI_LoadStoreRoundTrip(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x100) // base
	r.h.SetX(2, 0x7fffffff)
	sw := encodeS(0, 2, 1, 0b010, opStore) // sw x2, 0(x1)
	if res := r.step(sw); res != Success {
		t.Fatalf("sw result = %v, want Success", res)
	}
	lw := encodeI(0, 1, 0b010, 3, opLoad) // lw x3, 0(x1)
	if res := r.step(lw); res != Success {
		t.Fatalf("lw result = %v, want Success", res)
	}
	if got := r.h.GetX(3); got != 0x7fffffff {
		t.Fatalf("X3 = %#x, want 0x7fffffff", got)
	}
}

func TestExecI_LoadOutOfBoundsFails(t *testing.T) {
	sys := NewSharedSystem(8)
	cfg := HartConfig{HartIndex: 0, Xlen: 64, Extensions: ExtI, VLENBits: 128, ELENBits: 64}
	h := NewHart(cfg, sys, 0)
	h.SetX(1, 100)
	raw := encodeI(0, 1, 0b010, 2, opLoad)
	tag := Classify(raw)
	ctx := execContext{pcOfInstruction: 0, nextPC: 4, raw: raw, length: 4}
	res, _ := dispatch(h, tag, ctx)
	if res != OutOfBounds {
		t.Fatalf("result = %v, want OutOfBounds", res)
	}
}

func TestExecI_CsrrwReadsOldWritesNew(t *testing.T) {
	r := newRig()
	r.h.Csrs.Mscratch = 0x11
	r.h.SetX(2, 0x22)
	raw := encodeI(int64(0x340), 2, 0b001, 5, opSystem) // csrrw x5, mscratch, x2
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if r.h.GetX(5) != 0x11 {
		t.Fatalf("X5 (old csr value) = %#x, want 0x11", r.h.GetX(5))
	}
	if r.h.Csrs.Mscratch != 0x22 {
		t.Fatalf("mscratch = %#x, want 0x22", r.h.Csrs.Mscratch)
	}
}

func TestExecI_CsrrsWithRs1ZeroDoesNotWrite(t *testing.T) {
	r := newRig()
	r.h.Csrs.Mscratch = 0x5
	raw := encodeI(int64(0x340), 0, 0b010, 1, opSystem) // csrrs x1, mscratch, x0
	r.step(raw)
	if r.h.GetX(1) != 0x5 {
		t.Fatalf("X1 = %#x, want 0x5", r.h.GetX(1))
	}
	if r.h.Csrs.Mscratch != 0x5 {
		t.Fatalf("mscratch mutated by a read-only csrrs, got %#x", r.h.Csrs.Mscratch)
	}
}

func TestExecI_CsrInvalidAddress(t *testing.T) {
	r := newRig()
	raw := encodeI(0x7ff, 0, 0b010, 1, opSystem)
	res := r.step(raw)
	if res != InvalidCsr {
		t.Fatalf("result = %v, want InvalidCsr", res)
	}
}

func TestExecI_EcallInvokesTrap(t *testing.T) {
	r := newRig()
	raw := encodeI(0, 0, 0b000, 0, opSystem) // ecall
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if r.h.LastEvent() != "ecall" {
		t.Fatalf("LastEvent() = %q, want ecall", r.h.LastEvent())
	}
}

func TestExecI_AddwSignExtends32BitOverflow(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x7fffffff)
	r.h.SetX(2, 1)
	raw := encodeR(0, 2, 1, 0b000, 3, opOp32) // addw x3, x1, x2
	r.step(raw)
	if got := int64(r.h.GetX(3)); got != -0x80000000 {
		t.Fatalf("X3 = %d, want %d (sign-extended overflowed word)", got, -0x80000000)
	}
}
