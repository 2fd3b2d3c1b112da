package rv64

import "testing"

func TestExecM_Mul(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 6)
	r.h.SetX(2, 7)
	raw := encodeR(0b0000001, 2, 1, 0b000, 3, opOp) // mul x3, x1, x2
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if got := r.h.GetX(3); got != 42 {
		t.Fatalf("X3 = %d, want 42", got)
	}
}

func TestExecM_Mulhu(t *testing.T) {
	r := newRig()
	r.h.SetX(1, ^uint64(0))
	r.h.SetX(2, 2)
	raw := encodeR(0b0000001, 2, 1, 0b011, 3, opOp) // mulhu
	r.step(raw)
	if got := r.h.GetX(3); got != 1 {
		t.Fatalf("mulhu(MAX_U64, 2) high = %d, want 1", got)
	}
}

func TestExecM_DivByZeroReturnsAllOnes(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 10)
	r.h.SetX(2, 0)
	raw := encodeR(0b0000001, 2, 1, 0b100, 3, opOp) // div
	r.step(raw)
	if got := r.h.GetX(3); got != ^uint64(0) {
		t.Fatalf("div by zero = %#x, want all-ones", got)
	}
}

func TestExecM_DivuByZeroReturnsAllOnes(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 10)
	r.h.SetX(2, 0)
	raw := encodeR(0b0000001, 2, 1, 0b101, 3, opOp) // divu
	r.step(raw)
	if got := r.h.GetX(3); got != ^uint64(0) {
		t.Fatalf("divu by zero = %#x, want all-ones", got)
	}
}

func TestExecM_DivOverflowSaturatesToDividend(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 1<<63)       // MinInt64
	r.h.SetX(2, ^uint64(0)) // -1
	raw := encodeR(0b0000001, 2, 1, 0b100, 3, opOp) // div
	r.step(raw)
	if got := int64(r.h.GetX(3)); got != minInt64 {
		t.Fatalf("MinInt64 / -1 = %d, want %d", got, minInt64)
	}
}

func TestExecM_RemByZeroReturnsDividend(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 17)
	r.h.SetX(2, 0)
	raw := encodeR(0b0000001, 2, 1, 0b110, 3, opOp) // rem
	r.step(raw)
	if got := r.h.GetX(3); got != 17 {
		t.Fatalf("rem by zero = %d, want 17", got)
	}
}

func TestExecM_Divuw32BitDivision(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 100)
	r.h.SetX(2, 9)
	raw := encodeR(0b0000001, 2, 1, 0b101, 3, opOp32) // divuw
	r.step(raw)
	if got := r.h.GetX(3); got != 11 {
		t.Fatalf("divuw(100,9) = %d, want 11", got)
	}
}
