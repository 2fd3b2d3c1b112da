package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/rv64emu/rv64emu/rv64"
)

func main() {
	memSize := flag.Int("mem", 1<<20, "memory size in bytes")
	loadAddr := flag.Uint64("load", 0, "load address")
	maxInstr := flag.Uint64("max", rv64.DefaultMaxInstructions, "max instructions per hart")
	harts := flag.Int("harts", 1, "number of harts sharing memory")
	disasm := flag.Bool("disasm", false, "disassemble the input file instead of running it")
	step := flag.Bool("step", false, "interactive single-step mode (space to step, q to quit)")
	vlen := flag.Uint("vlen", 128, "VLEN in bits")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rv64emu [options] input.bin\n\nRuns or disassembles a flat RV64GC binary.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rv64emu program.bin\n")
		fmt.Fprintf(os.Stderr, "  rv64emu -disasm program.bin\n")
		fmt.Fprintf(os.Stderr, "  rv64emu -step -harts 2 program.bin\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *disasm {
		fmt.Print(rv64.DisassembleChunk(data))
		return
	}

	sys := rv64.NewSharedSystem(*memSize)
	hartList := make([]*rv64.Hart, *harts)
	for i := range hartList {
		cfg := rv64.HartConfig{
			HartIndex:  uint8(i),
			Xlen:       64,
			Extensions: rv64.ExtI | rv64.ExtM | rv64.ExtA | rv64.ExtF | rv64.ExtC | rv64.ExtV,
			VLENBits:   uint32(*vlen),
			ELENBits:   64,
		}
		hartList[i] = rv64.NewHart(cfg, sys, *loadAddr)
	}

	if *step {
		runStepper(hartList[0], data, *loadAddr, *maxInstr)
		return
	}

	if !sys.WriteBytes(*loadAddr, data) {
		log.Fatalf("load out of bounds at %#x", *loadAddr)
	}
	if !sys.WriteBytes(*loadAddr+uint64(len(data)), make([]byte, 4)) {
		log.Fatalf("sentinel write out of bounds")
	}
	for _, h := range hartList {
		h.PC = *loadAddr
	}

	results, errs := rv64.RunHarts(context.Background(), hartList, *maxInstr)
	failed := false
	for i, res := range results {
		switch res {
		case rv64.RFailure:
			log.Printf("hart %d stopped: %v", i, errs[i])
			failed = true
		case rv64.RDone:
			fmt.Printf("hart %d halted after %d instructions\n", i, hartList[i].InstrCount)
		default:
			fmt.Printf("hart %d reached instruction ceiling (%d)\n", i, *maxInstr)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// runStepper drives a single hart one instruction at a time, printing the
// disassembly of the instruction about to execute and waiting for a
// keystroke, adapted from the raw-mode reader terminal_host.go uses to
// drive an MMIO device instead of a fetch loop.
func runStepper(h *rv64.Hart, data []byte, loadAddr uint64, maxInstr uint64) {
	if !h.Sys.WriteBytes(loadAddr, data) {
		log.Fatalf("load out of bounds at %#x", loadAddr)
	}
	if !h.Sys.WriteBytes(loadAddr+uint64(len(data)), make([]byte, 4)) {
		log.Fatalf("sentinel write out of bounds")
	}
	h.PC = loadAddr

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv64emu: failed to set raw mode, falling back to line-buffered stepping: %v\n", err)
		runStepperLineBuffered(h, maxInstr)
		return
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for h.InstrCount < maxInstr {
		word, ok := h.ReadWord(h.PC)
		if !ok {
			fmt.Printf("\r\npc=%#x: out of bounds\r\n", h.PC)
			return
		}
		fmt.Printf("\r\npc=%#016x  %08x  %s  [space=step q=quit]\r\n", h.PC, word, rv64.DisassembleOne(word))

		n, err := unix.Read(fd, buf)
		if err != nil || n == 0 {
			return
		}
		if buf[0] == 'q' || buf[0] == 'Q' {
			return
		}

		res, stepErr := h.Step()
		if res != rv64.RContinue {
			fmt.Printf("\r\nhart stopped: %v\r\n", stepErr)
			return
		}
	}
}

func runStepperLineBuffered(h *rv64.Hart, maxInstr uint64) {
	reader := bufio.NewReader(os.Stdin)
	for h.InstrCount < maxInstr {
		word, ok := h.ReadWord(h.PC)
		if !ok {
			fmt.Printf("pc=%#x: out of bounds\n", h.PC)
			return
		}
		fmt.Printf("pc=%#016x  %08x  %s  [enter=step q=quit]\n", h.PC, word, rv64.DisassembleOne(word))
		line, _ := reader.ReadString('\n')
		if len(line) > 0 && (line[0] == 'q' || line[0] == 'Q') {
			return
		}
		res, stepErr := h.Step()
		if res != rv64.RContinue {
			fmt.Printf("hart stopped: %v\n", stepErr)
			return
		}
	}
}
