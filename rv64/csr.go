// csr.go - CSR file and vtype decode/encode
//
// CsrFile models the unprivileged/supervisor/machine CSRs this subset cares
// about as a plain struct rather than the original's giant address switch;
// Get/Set still dispatch by 12-bit address, but WARL clamping lives in each
// field's own setter, not at the dispatch site.

package rv64

// VType is the decoded view of the vtype CSR.
type VType struct {
	VMA  bool
	VTA  bool
	SEW  uint32 // bits: 8, 16, 32, 64
	LMUL float64
	Vill bool
}

// VLMAX returns LMUL*VLEN/SEW for the given VLEN.
func (vt VType) VLMAX(vlenBits uint32) uint64 {
	if vt.SEW == 0 {
		return 0
	}
	return uint64(vt.LMUL * float64(vlenBits) / float64(vt.SEW))
}

// lmulFromCode maps the 3-bit vtype.vlmul field to a multiplier, including the
// fractional LMUL encodings.
func lmulFromCode(code uint32) float64 {
	switch code {
	case 0b000:
		return 1
	case 0b001:
		return 2
	case 0b010:
		return 4
	case 0b011:
		return 8
	case 0b101:
		return 0.5
	case 0b110:
		return 0.25
	case 0b111:
		return 0.125
	}
	return 1
}

func sewFromCode(code uint32) uint32 {
	switch code {
	case 0b000:
		return 8
	case 0b001:
		return 16
	case 0b010:
		return 32
	case 0b011:
		return 64
	}
	return 0
}

// DecodeVType decodes an 11-bit (or smaller, for vsetivli) vtypei/vtype
// immediate into a VType. vill is set when sew/lmul are unsupported.
func DecodeVType(raw uint32) VType {
	vma := (raw>>7)&0x1 != 0
	vta := (raw>>6)&0x1 != 0
	sewCode := (raw >> 3) & 0x7
	lmulCode := raw & 0x7
	sew := sewFromCode(sewCode)
	vt := VType{VMA: vma, VTA: vta, SEW: sew, LMUL: lmulFromCode(lmulCode)}
	if sew == 0 || sewCode > 0b011 || lmulCode == 0b100 {
		vt.Vill = true
	}
	return vt
}

// Encode packs a VType back into the raw vtype CSR bit layout, setting
// bit 63 (vill) when Vill is true.
func (vt VType) Encode() uint64 {
	if vt.Vill {
		return 1 << 63
	}
	var sewCode, lmulCode uint64
	switch vt.SEW {
	case 8:
		sewCode = 0b000
	case 16:
		sewCode = 0b001
	case 32:
		sewCode = 0b010
	case 64:
		sewCode = 0b011
	}
	switch vt.LMUL {
	case 1:
		lmulCode = 0b000
	case 2:
		lmulCode = 0b001
	case 4:
		lmulCode = 0b010
	case 8:
		lmulCode = 0b011
	case 0.5:
		lmulCode = 0b101
	case 0.25:
		lmulCode = 0b110
	case 0.125:
		lmulCode = 0b111
	}
	v := lmulCode | sewCode<<3
	if vt.VTA {
		v |= 1 << 6
	}
	if vt.VMA {
		v |= 1 << 7
	}
	return v
}

// CsrFile is a per-hart (never shared) structured record of the CSRs this
// subset implements, addressable by 12-bit index via Get/Set.
type CsrFile struct {
	// F extension
	Fflags uint64 // fcsr[4:0]
	Frm    uint64 // fcsr[7:5]

	// V extension
	Vstart uint64
	Vxsat  uint64
	Vxrm   uint64
	Vl     uint64
	VType  VType
	Vlenb  uint64

	// Zicsr misc/entropy
	Ssp  uint64
	Seed uint64

	// Supervisor
	Sstatus    uint64
	Sie        uint64
	Stvec      uint64
	Scounteren uint64
	Sscratch   uint64
	Sepc       uint64
	Scause     uint64
	Stval      uint64
	Sip        uint64
	Satp       uint64

	// Hypervisor
	Hstatus uint64

	// Machine
	Mstatus    uint64
	Misa       uint64
	Medeleg    uint64
	Mideleg    uint64
	Mie        uint64
	Mtvec      uint64
	Mcounteren uint64
	Mscratch   uint64
	Mepc       uint64
	Mcause     uint64
	Mtval      uint64
	Mip        uint64

	// Machine information, read-only after init
	Mvendorid  uint64
	Marchid    uint64
	Mimpid     uint64
	Mhartid    uint64
	Mconfigptr uint64

	// Unprivileged counters
	Cycle   uint64
	Time    uint64
	Instret uint64
}

// Fcsr packs frm/fflags into the combined fcsr view.
func (c *CsrFile) Fcsr() uint64 {
	return (c.Frm&0x7)<<5 | c.Fflags&0x1f
}

// SetFcsr unpacks the combined fcsr view into frm/fflags, masking to the
// defined field widths (WARL behavior for reserved bits).
func (c *CsrFile) SetFcsr(v uint64) {
	c.Fflags = v & 0x1f
	c.Frm = (v >> 5) & 0x7
}

// AccumulateFflags ORs newly-raised exception flag bits into fflags:
// flags accumulate and never clear themselves.
func (c *CsrFile) AccumulateFflags(bits uint64) {
	c.Fflags |= bits & 0x1f
}

// Get reads a CSR by 12-bit address. ok is false for an address this
// implementation doesn't model.
func (c *CsrFile) Get(addr uint16) (uint64, bool) {
	switch addr {
	case 0x001:
		return c.Fflags, true
	case 0x002:
		return c.Frm, true
	case 0x003:
		return c.Fcsr(), true
	case 0x008:
		return c.Vstart, true
	case 0x009:
		return c.Vxsat, true
	case 0x00A:
		return c.Vxrm, true
	case 0x00F:
		return c.vcsr(), true
	case 0x014:
		return c.Ssp, true
	case 0x015:
		return c.Seed, true
	case 0x100:
		return c.Sstatus, true
	case 0x104:
		return c.Sie, true
	case 0x105:
		return c.Stvec, true
	case 0x106:
		return c.Scounteren, true
	case 0x140:
		return c.Sscratch, true
	case 0x141:
		return c.Sepc, true
	case 0x142:
		return c.Scause, true
	case 0x143:
		return c.Stval, true
	case 0x144:
		return c.Sip, true
	case 0x180:
		return c.Satp, true
	case 0x600:
		return c.Hstatus, true
	case 0x300:
		return c.Mstatus, true
	case 0x301:
		return c.Misa, true
	case 0x302:
		return c.Medeleg, true
	case 0x303:
		return c.Mideleg, true
	case 0x304:
		return c.Mie, true
	case 0x305:
		return c.Mtvec, true
	case 0x306:
		return c.Mcounteren, true
	case 0x340:
		return c.Mscratch, true
	case 0x341:
		return c.Mepc, true
	case 0x342:
		return c.Mcause, true
	case 0x343:
		return c.Mtval, true
	case 0x344:
		return c.Mip, true
	case 0xC00:
		return c.Cycle, true
	case 0xC01:
		return c.Time, true
	case 0xC02:
		return c.Instret, true
	case 0xC20:
		return c.Vl, true
	case 0xC21:
		return c.VType.Encode(), true
	case 0xC22:
		return c.Vlenb, true
	case 0xF11:
		return c.Mvendorid, true
	case 0xF12:
		return c.Marchid, true
	case 0xF13:
		return c.Mimpid, true
	case 0xF14:
		return c.Mhartid, true
	case 0xF15:
		return c.Mconfigptr, true
	}
	return 0, false
}

func (c *CsrFile) vcsr() uint64 {
	return (c.Vxrm&0x3)<<1 | c.Vxsat&0x1
}

// Set writes a CSR by 12-bit address. Machine information registers
// (mvendorid, marchid, mimpid, mhartid, mconfigptr) are read-only after
// init and Set on them is a no-op that still reports ok=true (the write
// retires, it just has no effect, matching real WARL hardware). ok is
// false for an address this implementation doesn't model.
func (c *CsrFile) Set(addr uint16, v uint64) bool {
	switch addr {
	case 0x001:
		c.Fflags = v & 0x1f
	case 0x002:
		c.Frm = v & 0x7
	case 0x003:
		c.SetFcsr(v)
	case 0x008:
		c.Vstart = v
	case 0x009:
		c.Vxsat = v & 0x1
	case 0x00A:
		c.Vxrm = v & 0x3
	case 0x00F:
		c.Vxrm = (v >> 1) & 0x3
		c.Vxsat = v & 0x1
	case 0x014:
		c.Ssp = v
	case 0x015:
		c.Seed = v
	case 0x100:
		c.Sstatus = v
	case 0x104:
		c.Sie = v
	case 0x105:
		c.Stvec = v
	case 0x106:
		c.Scounteren = v
	case 0x140:
		c.Sscratch = v
	case 0x141:
		c.Sepc = v
	case 0x142:
		c.Scause = v
	case 0x143:
		c.Stval = v
	case 0x144:
		c.Sip = v
	case 0x180:
		c.Satp = v
	case 0x600:
		c.Hstatus = v
	case 0x300:
		c.Mstatus = v
	case 0x301:
		// misa WARL: MXL and extension bits are fixed at init in this
		// subset; writes are accepted but clamped back to the init value.
		c.Misa = c.Misa
	case 0x302:
		c.Medeleg = v
	case 0x303:
		c.Mideleg = v
	case 0x304:
		c.Mie = v
	case 0x305:
		c.Mtvec = v
	case 0x306:
		c.Mcounteren = v
	case 0x340:
		c.Mscratch = v
	case 0x341:
		c.Mepc = v
	case 0x342:
		c.Mcause = v
	case 0x343:
		c.Mtval = v
	case 0x344:
		c.Mip = v
	case 0xC20:
		c.Vl = v
	case 0xC21:
		c.VType = DecodeVType(uint32(v))
	case 0xF11, 0xF12, 0xF13, 0xF14, 0xF15:
		// read-only machine information CSRs; WARL no-op.
	default:
		return false
	}
	return true
}
