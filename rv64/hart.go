// hart.go - Hart and SharedSystem: the mutable state the rest of the
// package operates on.
//
// Grounded on memory_bus.go's SystemBus: a contiguous byte slice guarded by
// a mutex, little-endian packing done explicitly via encoding/binary rather
// than host memcpy of structs.

package rv64

import (
	"encoding/binary"
	"sync"
)

// Extension bits for the misa CSR / HartConfig.Extensions bitset, indexed
// by letter (A=0 .. Z=25), matching the standard misa encoding.
const (
	ExtA = 1 << 0
	ExtC = 1 << 2
	ExtD = 1 << 3
	ExtF = 1 << 5
	ExtI = 1 << 8
	ExtM = 1 << 12
	ExtV = 1 << 21
)

// reservation is one hart's LR/SC reservation set: an (address, width)
// pair invalidated by any overlapping store.
type reservation struct {
	valid bool
	addr  uint64
	width int
}

// SharedSystem is the flat byte-addressable memory all harts in a
// configuration share. Writes by one hart are
// immediately visible to all others; AMO/LR/SC/racy stores serialize
// through mu for the duration of their read-modify-write.
type SharedSystem struct {
	memory []byte

	mu           sync.Mutex
	reservations map[int]*reservation
}

// NewSharedSystem allocates a zeroed memory array of size bytes.
func NewSharedSystem(size int) *SharedSystem {
	return &SharedSystem{
		memory:       make([]byte, size),
		reservations: make(map[int]*reservation),
	}
}

// Size returns the memory array length in bytes.
func (s *SharedSystem) Size() int { return len(s.memory) }

// inBounds reports whether [addr, addr+n) lies entirely within memory.
func (s *SharedSystem) inBounds(addr uint64, n int) bool {
	if addr > uint64(len(s.memory)) {
		return false
	}
	end := addr + uint64(n)
	return end >= addr && end <= uint64(len(s.memory))
}

// ReadBytes copies n bytes starting at addr. ok is false on OutOfBounds.
func (s *SharedSystem) ReadBytes(addr uint64, n int) (data []byte, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inBounds(addr, n) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, s.memory[addr:addr+uint64(n)])
	return out, true
}

// WriteBytes copies data into memory starting at addr, invalidating any
// hart's LR/SC reservation it overlaps. ok is false on OutOfBounds.
func (s *SharedSystem) WriteBytes(addr uint64, data []byte) (ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inBounds(addr, len(data)) {
		return false
	}
	copy(s.memory[addr:addr+uint64(len(data))], data)
	s.invalidateReservationsLocked(addr, len(data))
	return true
}

// WithLock runs fn with the shared-system mutex held, for AMO/LR/SC
// read-modify-write sequences that must not be observed partially by
// another hart.
func (s *SharedSystem) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// readLocked/writeLocked are the no-lock variants used from inside
// WithLock callbacks (the mutex is already held by the caller).
func (s *SharedSystem) readLocked(addr uint64, n int) ([]byte, bool) {
	if !s.inBounds(addr, n) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, s.memory[addr:addr+uint64(n)])
	return out, true
}

func (s *SharedSystem) writeLocked(addr uint64, data []byte) bool {
	if !s.inBounds(addr, len(data)) {
		return false
	}
	copy(s.memory[addr:addr+uint64(len(data))], data)
	s.invalidateReservationsLocked(addr, len(data))
	return true
}

func (s *SharedSystem) invalidateReservationsLocked(addr uint64, n int) {
	end := addr + uint64(n)
	for _, r := range s.reservations {
		if !r.valid {
			continue
		}
		rEnd := r.addr + uint64(r.width)
		if addr < rEnd && end > r.addr {
			r.valid = false
		}
	}
}

func (s *SharedSystem) reservationFor(hartIndex int) *reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservationForLocked(hartIndex)
}

// reservationForLocked is the no-lock variant used from inside WithLock
// callbacks (the mutex is already held by the caller).
func (s *SharedSystem) reservationForLocked(hartIndex int) *reservation {
	r, ok := s.reservations[hartIndex]
	if !ok {
		r = &reservation{}
		s.reservations[hartIndex] = r
	}
	return r
}

// HartConfig is the external interface's init-time record.
type HartConfig struct {
	HartIndex  uint8
	Xlen       int
	Extensions uint64
	VendorID   uint32
	ArchID     uint64
	ImplID     uint64
	VLENBits   uint32
	ELENBits   uint32
}

// TrapFunc is the external collaborator invoked for ECALL/EBREAK. The
// default behavior is to record the event (via DefaultTrapHandler) and
// continue.
type TrapFunc func(h *Hart, isEbreak bool) Result

// Hart owns architectural state for one sequential execution context.
// X[0] always reads as zero; writes to it are silently
// dropped by SetX.
type Hart struct {
	PC    uint64
	X     [32]uint64
	F     [32]uint32 // single-precision bit patterns
	D     [32]uint64 // double-precision bit patterns, decode-only in this subset
	V     [][]byte   // 32 registers of VLEN/8 bytes each
	Csrs  CsrFile

	InstrCount uint64
	Cfg        HartConfig
	Sys        *SharedSystem

	Trap TrapFunc

	reservationIdx int
	lastEvent      string // set by DefaultTrapHandler, inspectable by tests/CLI
}

// NewHart creates a hart with zeroed GPR/FPR/VPR, PC at loadAddress, and
// CSRs seeded from cfg.
func NewHart(cfg HartConfig, sys *SharedSystem, loadAddress uint64) *Hart {
	h := &Hart{
		Cfg:            cfg,
		Sys:            sys,
		PC:             loadAddress,
		reservationIdx: int(cfg.HartIndex),
	}
	h.V = make([][]byte, 32)
	for i := range h.V {
		h.V[i] = make([]byte, cfg.VLENBits/8)
	}
	h.Csrs.Mvendorid = uint64(cfg.VendorID)
	h.Csrs.Marchid = cfg.ArchID
	h.Csrs.Mimpid = cfg.ImplID
	h.Csrs.Mhartid = uint64(cfg.HartIndex)
	h.Csrs.Misa = (2 << 62) | cfg.Extensions // MXL=64 in bits 63:62 per the unprivileged spec
	h.Csrs.Vlenb = uint64(cfg.VLENBits / 8)
	h.Trap = DefaultTrapHandler
	return h
}

// GetX reads GPR r. x0 always reads as zero.
func (h *Hart) GetX(r uint32) uint64 {
	if r == 0 {
		return 0
	}
	return h.X[r]
}

// SetX writes GPR r. Writes to x0 are silently discarded.
func (h *Hart) SetX(r uint32, v uint64) {
	if r == 0 {
		return
	}
	h.X[r] = v
}

// DefaultTrapHandler records the event and continues. It never halts the hart on its own.
func DefaultTrapHandler(h *Hart, isEbreak bool) Result {
	if isEbreak {
		h.lastEvent = "ebreak"
	} else {
		h.lastEvent = "ecall"
	}
	return Success
}

// LastEvent returns the most recent trap event recorded by the trap
// handler, or "" if none has occurred.
func (h *Hart) LastEvent() string { return h.lastEvent }

// --- little-endian memory helpers -----------------------------------------

func (h *Hart) readMem(addr uint64, n int) (uint64, bool) {
	data, ok := h.Sys.ReadBytes(addr, n)
	if !ok {
		return 0, false
	}
	var buf [8]byte
	copy(buf[:], data)
	return binary.LittleEndian.Uint64(buf[:]), true
}

func (h *Hart) writeMem(addr uint64, v uint64, n int) bool {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return h.Sys.WriteBytes(addr, buf[:n])
}

// ReadByte/Half/Word/Dword and WriteByte/Half/Word/Dword are the field-width
// little-endian accessors used by loads/stores, AMOs and vector unit-stride
// memory ops.

func (h *Hart) ReadByte(addr uint64) (uint8, bool) {
	v, ok := h.readMem(addr, 1)
	return uint8(v), ok
}
func (h *Hart) ReadHalf(addr uint64) (uint16, bool) {
	v, ok := h.readMem(addr, 2)
	return uint16(v), ok
}
func (h *Hart) ReadWord(addr uint64) (uint32, bool) {
	v, ok := h.readMem(addr, 4)
	return uint32(v), ok
}
func (h *Hart) ReadDword(addr uint64) (uint64, bool) {
	return h.readMem(addr, 8)
}

func (h *Hart) WriteByte(addr uint64, v uint8) bool  { return h.writeMem(addr, uint64(v), 1) }
func (h *Hart) WriteHalf(addr uint64, v uint16) bool { return h.writeMem(addr, uint64(v), 2) }
func (h *Hart) WriteWord(addr uint64, v uint32) bool { return h.writeMem(addr, uint64(v), 4) }
func (h *Hart) WriteDword(addr uint64, v uint64) bool { return h.writeMem(addr, v, 8) }
