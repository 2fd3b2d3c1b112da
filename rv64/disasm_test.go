package rv64

import (
	"strings"
	"testing"
)

func TestDisasm_Addi(t *testing.T) {
	raw := encodeI(5, 6, 0b000, 5, opOpImm)
	got := DisassembleOne(raw)
	want := "addi t0, t1, 5"
	if got != want {
		t.Fatalf("DisassembleOne(addi) = %q, want %q", got, want)
	}
}

func TestDisasm_Invalid(t *testing.T) {
	if got := DisassembleOne(0); got != "?" {
		t.Fatalf("DisassembleOne(0) = %q, want %q", got, "?")
	}
}

func TestDisasm_LoadFormatsOffsetAndBase(t *testing.T) {
	raw := encodeI(12, 2, 0b010, 10, opLoad) // lw a0, 12(sp)
	got := DisassembleOne(raw)
	want := "lw a0, 12(sp)"
	if got != want {
		t.Fatalf("DisassembleOne(lw) = %q, want %q", got, want)
	}
}

func TestDisasm_BranchShowsRelativeOffset(t *testing.T) {
	raw := encodeB(8, 1, 2, 0b000, opBranch)
	got := DisassembleOne(raw)
	if !strings.Contains(got, "beq") || !strings.Contains(got, ". + 8") {
		t.Fatalf("DisassembleOne(beq) = %q, want mnemonic and offset", got)
	}
}

func TestDisasm_CsrRegisterShowsName(t *testing.T) {
	raw := encodeI(int64(0x340), 2, 0b001, 5, opSystem) // csrrw t0, mscratch, sp
	got := DisassembleOne(raw)
	if !strings.Contains(got, "mscratch") {
		t.Fatalf("DisassembleOne(csrrw mscratch) = %q, want mscratch mnemonic", got)
	}
}

func TestDisasm_AtomicWithAcquireRelease(t *testing.T) {
	raw := encodeR(0b0000011, 2, 1, 0b010, 3, opAmo) // amoadd.w with aq=1,rl=1
	got := DisassembleOne(raw)
	if !strings.Contains(got, ".aqrl") {
		t.Fatalf("DisassembleOne(amoadd.w.aqrl) = %q, want .aqrl suffix", got)
	}
}

func TestDisasm_LrOmitsSecondOperand(t *testing.T) {
	raw := encodeR(0b0001000, 0, 1, 0b011, 5, opAmo) // lr.d t0, (ra)
	got := DisassembleOne(raw)
	want := "lr.d t0, (ra)"
	if got != want {
		t.Fatalf("DisassembleOne(lr.d) = %q, want %q", got, want)
	}
}

func TestDisasm_VectorArithmeticUsesVNames(t *testing.T) {
	raw := encodeR(0b000000<<1|1, 7, 6, 0b000, 8, opOpV) | 1<<25 // vadd.vv v8, v7, v6
	got := DisassembleOne(raw)
	want := "vadd.vv v8, v7, v6"
	if got != want {
		t.Fatalf("DisassembleOne(vadd.vv) = %q, want %q", got, want)
	}
}

func TestDisasm_FArithFormatsFregs(t *testing.T) {
	raw := encodeR(0b0000000, 2, 1, rmRNE, 3, opOpFP) // fadd.s f3, f1, f2
	got := DisassembleOne(raw)
	want := "fadd.s ft3, ft1, ft2"
	if got != want {
		t.Fatalf("DisassembleOne(fadd.s) = %q, want %q", got, want)
	}
}

func TestDisasm_ChunkRendersOneLinePerWord(t *testing.T) {
	a := encodeI(5, 6, 0b000, 5, opOpImm)
	b := encodeR(0, 2, 1, 0b000, 3, opOp)
	bytes := make([]byte, 8)
	for i, w := range []uint32{a, b} {
		bytes[i*4] = byte(w)
		bytes[i*4+1] = byte(w >> 8)
		bytes[i*4+2] = byte(w >> 16)
		bytes[i*4+3] = byte(w >> 24)
	}
	out := DisassembleChunk(bytes)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}
	if lines[0] != "addi t0, t1, 5" {
		t.Fatalf("line 0 = %q, want addi t0, t1, 5", lines[0])
	}
}
