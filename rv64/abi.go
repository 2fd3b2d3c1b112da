// abi.go - ABI register name tables for the disassembler

package rv64

// gprABINames maps x0..x31 to their RISC-V calling-convention names.
var gprABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// fprABINames maps f0..f31 to their ABI names.
var fprABINames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// gprName returns the ABI name for general-purpose register index r.
func gprName(r uint32) string {
	if r < 32 {
		return gprABINames[r]
	}
	return "?"
}

// fprName returns the ABI name for floating-point register index r.
func fprName(r uint32) string {
	if r < 32 {
		return fprABINames[r]
	}
	return "?"
}

// vName returns the vector register name v0..v31.
func vName(r uint32) string {
	if r < 32 {
		return "v" + itoa(int(r))
	}
	return "?"
}

// itoa is a tiny unsigned-int-to-string helper so disasm.go doesn't need to
// import strconv solely for single-digit/double-digit register indices.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// csrNames maps a 12-bit CSR address to its standard mnemonic. Unlisted
// addresses disassemble as "unknowncsr"
var csrNames = map[uint16]string{
	0x001: "fflags",
	0x002: "frm",
	0x003: "fcsr",
	0x008: "vstart",
	0x009: "vxsat",
	0x00A: "vxrm",
	0x00F: "vcsr",
	0x015: "seed",
	0x014: "ssp",
	0x100: "sstatus",
	0x104: "sie",
	0x105: "stvec",
	0x106: "scounteren",
	0x140: "sscratch",
	0x141: "sepc",
	0x142: "scause",
	0x143: "stval",
	0x144: "sip",
	0x180: "satp",
	0x200: "vsstatus",
	0x600: "hstatus",
	0x300: "mstatus",
	0x301: "misa",
	0x302: "medeleg",
	0x303: "mideleg",
	0x304: "mie",
	0x305: "mtvec",
	0x306: "mcounteren",
	0x340: "mscratch",
	0x341: "mepc",
	0x342: "mcause",
	0x343: "mtval",
	0x344: "mip",
	0xC00: "cycle",
	0xC01: "time",
	0xC02: "instret",
	0xC20: "vl",
	0xC21: "vtype",
	0xC22: "vlenb",
	0xF11: "mvendorid",
	0xF12: "marchid",
	0xF13: "mimpid",
	0xF14: "mhartid",
	0xF15: "mconfigptr",
}

// csrName returns the mnemonic for a 12-bit CSR address, or "unknowncsr".
func csrName(addr uint16) string {
	if name, ok := csrNames[addr]; ok {
		return name
	}
	return "unknowncsr"
}
