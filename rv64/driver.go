// driver.go - hart driver: fetch loop, PC management, termination
// sentinel, multi-hart orchestration

package rv64

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxInstructions is the driver's default per-hart step ceiling for
// the test harness.
const DefaultMaxInstructions = 128

// StepResult is the driver-level outcome of one Step call: Success maps to
// Continue, any other non-Done executor Result maps to Failure, and a
// zero-word fetch maps to Done.
type StepResult int

const (
	RContinue StepResult = iota
	RDone
	RFailure
)

// Step fetches, decodes, and executes exactly one instruction at h.PC,
// handling both full-width and compressed fetch.
func (h *Hart) Step() (StepResult, *StepError) {
	pcBefore := h.PC

	half, ok := h.ReadHalf(pcBefore)
	if !ok {
		return RFailure, &StepError{Kind: OutOfBounds, PC: pcBefore}
	}

	var raw uint32
	var length int
	if half&0x3 != 0b11 {
		// Compressed: sentinel check is on the full 32-bit zero word, so a
		// zero compressed halfword is also terminal (low 2 bits are 00).
		if half == 0 {
			return RDone, nil
		}
		raw = ExpandCompressed(half)
		length = 2
		if raw == 0 {
			return RFailure, &StepError{Kind: InvalidInstruction, PC: pcBefore, Raw: uint32(half)}
		}
	} else {
		full, ok := h.ReadWord(pcBefore)
		if !ok {
			return RFailure, &StepError{Kind: OutOfBounds, PC: pcBefore}
		}
		if full == 0 {
			return RDone, nil
		}
		raw = full
		length = 4
	}

	tag := Classify(raw)
	if tag == Invalid {
		return RFailure, &StepError{Kind: InvalidInstruction, PC: pcBefore, Raw: raw}
	}

	ctx := execContext{pcOfInstruction: pcBefore, nextPC: pcBefore + uint64(length), raw: raw, length: length}
	result, branched := dispatch(h, tag, ctx)
	if !branched && result == Success {
		h.PC = pcBefore + uint64(length)
	}
	h.InstrCount++

	if result != Success {
		return RFailure, &StepError{Kind: result, PC: pcBefore, Raw: raw}
	}
	return RContinue, nil
}

// dispatch routes a classified Tag to its executor family.
func dispatch(h *Hart, tag Tag, ctx execContext) (Result, bool) {
	switch {
	case tag >= LUI && tag <= CSRRCI:
		return execI(h, tag, ctx)
	case tag >= MUL && tag <= REMUW:
		return execM(h, tag, ctx.raw), false
	case tag >= LR_W && tag <= AMOMAXU_D:
		return execA(h, tag, ctx.raw), false
	case tag >= FLW && tag <= FMV_D_X:
		return execF(h, tag, ctx.raw), false
	case tag >= VSETVLI && tag <= VRSUB_VI:
		return execV(h, tag, ctx.raw), false
	}
	return InvalidInstruction, false
}

// EmulateChunk loads bytes into memory at loadAddress, zeroes the four
// trailing sentinel bytes, sets PC, and runs to termination or the
// instruction-count ceiling.
func (h *Hart) EmulateChunk(bytes []byte, loadAddress uint64, maxInstructions uint64) (StepResult, *StepError) {
	if !h.Sys.WriteBytes(loadAddress, bytes) {
		return RFailure, &StepError{Kind: OutOfBounds, PC: loadAddress}
	}
	if !h.Sys.WriteBytes(loadAddress+uint64(len(bytes)), make([]byte, 4)) {
		return RFailure, &StepError{Kind: OutOfBounds, PC: loadAddress + uint64(len(bytes))}
	}
	h.PC = loadAddress
	if maxInstructions == 0 {
		maxInstructions = DefaultMaxInstructions
	}
	for h.InstrCount < maxInstructions {
		res, err := h.Step()
		if res != RContinue {
			return res, err
		}
	}
	return RContinue, nil
}

// EmulateFile loads a raw binary from the host filesystem and runs it,
// "emulate_file". File I/O is the only place in this package
// that touches the OS; it has no retry/backoff policy, matching the
// teacher's own straight-line os.ReadFile usage.
func (h *Hart) EmulateFile(path string, loadAddress uint64, maxInstructions uint64) (StepResult, *StepError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RFailure, &StepError{Kind: Failure, PC: loadAddress}
	}
	return h.EmulateChunk(data, loadAddress, maxInstructions)
}

// RunHarts runs every hart in harts to completion concurrently, using
// golang.org/x/sync/errgroup to manage the per-hart goroutines. Each hart still executes sequentially internally.
// ctx is polled between instructions only.
func RunHarts(ctx context.Context, harts []*Hart, maxInstructions uint64) ([]StepResult, []*StepError) {
	results := make([]StepResult, len(harts))
	errs := make([]*StepError, len(harts))

	if maxInstructions == 0 {
		maxInstructions = DefaultMaxInstructions
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, h := range harts {
		i, h := i, h
		g.Go(func() error {
			for h.InstrCount < maxInstructions {
				select {
				case <-gctx.Done():
					results[i] = RFailure
					return nil
				default:
				}
				res, err := h.Step()
				if res != RContinue {
					results[i] = res
					errs[i] = err
					return nil
				}
			}
			results[i] = RContinue
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
