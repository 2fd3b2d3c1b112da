package rv64

import "testing"

// rv64TestRig wires a single hart to a fresh shared memory array, mirroring
// the teacher's ie64TestRig/ie64Instr pattern: build raw instruction words
// with the package's own encoders, load them, step, and assert on hart
// state afterward.
type rv64TestRig struct {
	sys *SharedSystem
	h   *Hart
}

func newRig() *rv64TestRig {
	sys := NewSharedSystem(1 << 16)
	cfg := HartConfig{
		HartIndex:  0,
		Xlen:       64,
		Extensions: ExtI | ExtM | ExtA | ExtF | ExtC | ExtV,
		VLENBits:   128,
		ELENBits:   64,
	}
	h := NewHart(cfg, sys, 0x1000)
	return &rv64TestRig{sys: sys, h: h}
}

// step classifies and executes raw directly through the executor dispatch,
// bypassing fetch, for focused per-instruction assertions.
func (r *rv64TestRig) step(raw uint32) Result {
	tag := Classify(raw)
	ctx := execContext{pcOfInstruction: r.h.PC, nextPC: r.h.PC + 4, raw: raw, length: 4}
	res, branched := dispatch(r.h, tag, ctx)
	if !branched && res == Success {
		r.h.PC += 4
	}
	return res
}

// loadAndRun writes a sequence of raw32 words (each little-endian, 4 bytes)
// starting at the hart's current PC, appends a zero sentinel word, and runs
// via Step until Done/Failure/ceiling.
func (r *rv64TestRig) loadAndRun(words ...uint32) (StepResult, *StepError) {
	data := make([]byte, 0, len(words)*4)
	for _, w := range words {
		data = append(data, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return r.h.EmulateChunk(data, r.h.PC, 0)
}

func mustFail(t *testing.T, res Result, want Result) {
	t.Helper()
	if res != want {
		t.Fatalf("result = %v, want %v", res, want)
	}
}
