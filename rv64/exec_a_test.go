package rv64

import "testing"

func TestExecA_AmoaddW(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x200) // addr
	r.h.SetX(2, 5)     // operand
	r.h.Sys.WriteBytes(0x200, []byte{10, 0, 0, 0})
	raw := encodeR(0b0000000, 2, 1, 0b010, 3, opAmo) // amoadd.w x3, x2, (x1)
	res := r.step(raw)
	if res != Success {
		t.Fatalf("result = %v, want Success", res)
	}
	if got := r.h.GetX(3); got != 10 {
		t.Fatalf("rd (old value) = %d, want 10", got)
	}
	v, _ := r.h.ReadWord(0x200)
	if v != 15 {
		t.Fatalf("memory after amoadd.w = %d, want 15", v)
	}
}

func TestExecA_LrScSuccess(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x300)
	r.h.Sys.WriteBytes(0x300, []byte{0, 0, 0, 0, 0, 0, 0, 0})
	lr := encodeR(0b0001000, 0, 1, 0b011, 2, opAmo) // lr.d x2, (x1)
	if res := r.step(lr); res != Success {
		t.Fatalf("lr.d result = %v, want Success", res)
	}
	r.h.SetX(3, 0x1234)
	sc := encodeR(0b0001100, 3, 1, 0b011, 4, opAmo) // sc.d x4, x3, (x1)
	if res := r.step(sc); res != Success {
		t.Fatalf("sc.d result = %v, want Success", res)
	}
	if got := r.h.GetX(4); got != 0 {
		t.Fatalf("sc.d rd = %d, want 0 (success)", got)
	}
	v, _ := r.h.ReadDword(0x300)
	if v != 0x1234 {
		t.Fatalf("memory after sc.d = %#x, want 0x1234", v)
	}
}

func TestExecA_ScFailsWithoutReservation(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x300)
	r.h.SetX(3, 0x99)
	sc := encodeR(0b0001100, 3, 1, 0b011, 4, opAmo) // sc.d, no prior lr.d
	r.step(sc)
	if got := r.h.GetX(4); got != 1 {
		t.Fatalf("sc.d rd = %d, want 1 (failure, no reservation)", got)
	}
}

func TestExecA_StoreInvalidatesReservation(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x300)
	lr := encodeR(0b0001000, 0, 1, 0b011, 2, opAmo)
	r.step(lr)

	// Any hart's overlapping store (even from this hart, via a plain SD)
	// invalidates the reservation.
	r.h.SetX(5, 0xff)
	sd := encodeS(0, 5, 1, 0b011, opStore)
	r.step(sd)

	r.h.SetX(3, 1)
	sc := encodeR(0b0001100, 3, 1, 0b011, 4, opAmo)
	r.step(sc)
	if got := r.h.GetX(4); got != 1 {
		t.Fatalf("sc.d rd = %d, want 1 (failure after intervening store)", got)
	}
}

func TestExecA_AmominSignedVsUnsigned(t *testing.T) {
	r := newRig()
	r.h.SetX(1, 0x400)
	r.h.Sys.WriteBytes(0x400, []byte{0xff, 0xff, 0xff, 0xff}) // -1 as int32, MaxUint32 unsigned
	r.h.SetX(2, 1)
	aminRaw := encodeR(0b10000_00, 2, 1, 0b010, 3, opAmo) // amomin.w
	r.step(aminRaw)
	v, _ := r.h.ReadWord(0x400)
	if int32(v) != -1 {
		t.Fatalf("amomin.w(-1,1) = %d, want -1 (signed compare keeps -1)", int32(v))
	}
}
