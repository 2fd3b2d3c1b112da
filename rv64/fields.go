// fields.go - per-format field extractors
//
// Each extractor is a pure function raw32 -> operand tuple. None of these
// can fail: they slice fixed bit ranges out of a 32-bit word. Tag-based
// dispatch means an executor calls exactly the extractor(s) matching its
// format and never re-inspects opcode/funct bits itself.

package rv64

// signExtend sign-extends the low `bits` bits of v to a full int64.
func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// decodeR extracts the R-type (rs2, rs1, rd) tuple.
func decodeR(raw uint32) (rs2, rs1, rd uint32) {
	rs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeI extracts the I-type (imm sign-extended to i64, rs1, rd) tuple.
func decodeI(raw uint32) (imm int64, rs1, rd uint32) {
	imm = signExtend(uint64(raw>>20), 12)
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeIShamt extracts the shift-immediate variant of I-type: the shift
// amount is NOT sign extended. Doubleword shifts use 6 bits (bits 25..20);
// word (*W) shifts use 5 bits (bits 24..20), with bit 25 expected zero.
func decodeIShamt(raw uint32, bits uint) (shamt, rs1, rd uint32) {
	mask := uint32(1)<<bits - 1
	shamt = (raw >> 20) & mask
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeS extracts the S-type (imm sign-extended, rs1, rs2) tuple.
func decodeS(raw uint32) (imm int64, rs1, rs2 uint32) {
	hi := (raw >> 25) & 0x7f
	lo := (raw >> 7) & 0x1f
	imm = signExtend(uint64(hi<<5|lo), 12)
	rs1 = (raw >> 15) & 0x1f
	rs2 = (raw >> 20) & 0x1f
	return
}

// decodeB extracts the B-type (offset sign-extended, rs1, rs2) tuple.
func decodeB(raw uint32) (offset int64, rs1, rs2 uint32) {
	b12 := (raw >> 31) & 0x1
	b11 := (raw >> 7) & 0x1
	b10_5 := (raw >> 25) & 0x3f
	b4_1 := (raw >> 8) & 0xf
	u := b12<<12 | b11<<11 | b10_5<<5 | b4_1<<1
	offset = signExtend(uint64(u), 13)
	rs1 = (raw >> 15) & 0x1f
	rs2 = (raw >> 20) & 0x1f
	return
}

// decodeU extracts the U-type (imm20, rd) tuple. The executor is
// responsible for the <<12 and sign-extension.
func decodeU(raw uint32) (imm20 uint32, rd uint32) {
	imm20 = raw >> 12
	rd = (raw >> 7) & 0x1f
	return
}

// decodeJ extracts the J-type (offset sign-extended, rd) tuple.
func decodeJ(raw uint32) (offset int64, rd uint32) {
	b20 := (raw >> 31) & 0x1
	b19_12 := (raw >> 12) & 0xff
	b11 := (raw >> 20) & 0x1
	b10_1 := (raw >> 21) & 0x3ff
	u := b20<<20 | b19_12<<12 | b11<<11 | b10_1<<1
	offset = signExtend(uint64(u), 21)
	rd = (raw >> 7) & 0x1f
	return
}

// decodeR4 extracts the fused-multiply-add format (rs3, fmt, rs2, rs1, rm, rd).
func decodeR4(raw uint32) (rs3, fmt, rs2, rs1, rm, rd uint32) {
	rs3 = (raw >> 27) & 0x1f
	fmt = (raw >> 25) & 0x3
	rs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	rm = (raw >> 12) & 0x7
	rd = (raw >> 7) & 0x1f
	return
}

// decodeCSR extracts the CSR-register format (csr12, rs1, rd).
func decodeCSR(raw uint32) (csr12 uint16, rs1, rd uint32) {
	csr12 = uint16(raw >> 20)
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeCSRI extracts the CSR-immediate format (csr12, uimm5, rd).
func decodeCSRI(raw uint32) (csr12 uint16, uimm5 uint32, rd uint32) {
	csr12 = uint16(raw >> 20)
	uimm5 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeAtomic extracts the A-extension format (aq, rl, rs2, rs1, rd).
func decodeAtomic(raw uint32) (aq, rl bool, rs2, rs1, rd uint32) {
	aq = (raw>>26)&0x1 != 0
	rl = (raw>>25)&0x1 != 0
	rs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeVsetvli extracts VSETVLI's (rd, rs1, vtypei) fields.
func decodeVsetvli(raw uint32) (rd, rs1 uint32, vtypei uint32) {
	vtypei = (raw >> 20) & 0x7ff
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeVsetivli extracts VSETIVLI's (rd, uimm5, vtypei) fields.
func decodeVsetivli(raw uint32) (rd, uimm5 uint32, vtypei uint32) {
	vtypei = (raw >> 20) & 0x3ff
	uimm5 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeVsetvl extracts VSETVL's (rd, rs1, rs2) fields.
func decodeVsetvl(raw uint32) (rd, rs1, rs2 uint32) {
	rs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	rd = (raw >> 7) & 0x1f
	return
}

// decodeVMem extracts the unit-stride load/store format (vm, vs3ord, rs1).
// vd is used by loads, vs3 by stores; both sit at bits 11..7.
func decodeVMem(raw uint32) (vm bool, vdOrVs3, rs1 uint32) {
	vm = (raw>>25)&0x1 != 0
	vdOrVs3 = (raw >> 7) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	return
}

// decodeOPIVV extracts the vector-vector arithmetic format (vm, vs2, vs1, vd).
func decodeOPIVV(raw uint32) (vm bool, vs2, vs1, vd uint32) {
	vm = (raw>>25)&0x1 != 0
	vs2 = (raw >> 20) & 0x1f
	vs1 = (raw >> 15) & 0x1f
	vd = (raw >> 7) & 0x1f
	return
}

// decodeOPIVX extracts the vector-scalar arithmetic format (vm, vs2, rs1, vd).
func decodeOPIVX(raw uint32) (vm bool, vs2, rs1, vd uint32) {
	vm = (raw>>25)&0x1 != 0
	vs2 = (raw >> 20) & 0x1f
	rs1 = (raw >> 15) & 0x1f
	vd = (raw >> 7) & 0x1f
	return
}

// decodeOPIVI extracts the vector-immediate arithmetic format (vm, vs2, imm5, vd).
// imm5 is returned sign-extended to int64 as most VI consumers need signed use.
func decodeOPIVI(raw uint32) (vm bool, vs2 uint32, imm5 int64, vd uint32) {
	vm = (raw>>25)&0x1 != 0
	vs2 = (raw >> 20) & 0x1f
	imm5 = signExtend(uint64((raw>>15)&0x1f), 5)
	vd = (raw >> 7) & 0x1f
	return
}
