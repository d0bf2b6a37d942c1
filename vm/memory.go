package vm

import "fmt"

// DefaultStackCapacity is the suggested initial size of the stack region.
const DefaultStackCapacity = 64 * 1024

// Memory is the two-region backing store beneath loads, stores, and
// instruction fetch: a read-mostly image region (the bytes the loader
// extracted from the XEX container) and a growable stack region addressed
// by GPR[1] as an *offset*, never as a virtual address.
type Memory struct {
	// Image is the contiguous byte buffer loaded from the XEX executable.
	// Instruction fetch always targets this buffer; the only writer into it
	// is RewriteBranch, and only between run-loop iterations.
	Image []byte

	// Stack is the working-stack byte buffer. GPR[1] is an offset into this
	// slice, not a virtual address.
	Stack []byte

	// BaseAddress and PEDataOffset are supplied by the loader; together they
	// fix xexBase, the virtual address of byte 0 of Image.
	BaseAddress  uint32
	PEDataOffset uint32

	// ReadCount and WriteCount track memory traffic; useful for statistics
	// and tests that assert a handler actually touched memory.
	ReadCount  uint64
	WriteCount uint64

	diagnostics *diagnosticSink
}

// NewMemory constructs a Memory with the given image and default stack
// capacity.
func NewMemory(image []byte, baseAddress, peDataOffset uint32) *Memory {
	return &Memory{
		Image:        image,
		Stack:        make([]byte, DefaultStackCapacity),
		BaseAddress:  baseAddress,
		PEDataOffset: peDataOffset,
	}
}

// xexBase is the virtual address of byte 0 of Image.
func (m *Memory) xexBase() uint32 {
	return m.BaseAddress - m.PEDataOffset
}

// inImage reports whether the virtual address ea falls within the image
// region, and if so, the corresponding backing offset.
func (m *Memory) inImage(ea uint32) (offset uint32, ok bool) {
	base := m.xexBase()
	top := base + uint32(len(m.Image))
	if ea >= base && ea <= top {
		return ea - base, true
	}
	return 0, false
}

// FetchWord reads the big-endian 32-bit instruction word at word index iar
// from the image (instruction fetch always targets the image region,
// regardless of RA routing rules, which only apply to loads/stores).
func (m *Memory) FetchWord(iar uint64) (uint32, error) {
	off := iar * 4
	if off+4 > uint64(len(m.Image)) {
		return 0, fmt.Errorf("instruction fetch out of image bounds at word index 0x%X (byte 0x%X)", iar, off)
	}
	b := m.Image[off : off+4]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// RewriteBranch patches a synthetic unconditional-branch word into the
// executable image at the given source word index, targeting dst (also a
// word index). This is the one self-modifying-code primitive this core
// allows; it must only be invoked between run-loop iterations.
func (m *Memory) RewriteBranch(srcWordIndex, dstWordIndex uint64) error {
	off := srcWordIndex * 4
	if off+4 > uint64(len(m.Image)) {
		return fmt.Errorf("branch rewrite target out of image bounds at word index 0x%X", srcWordIndex)
	}
	li := int64(dstWordIndex) - int64(srcWordIndex)
	word := uint32(18)<<26 | (uint32(li)&0x00FFFFFF)<<2
	m.Image[off+0] = byte(word >> 24)
	m.Image[off+1] = byte(word >> 16)
	m.Image[off+2] = byte(word >> 8)
	m.Image[off+3] = byte(word)
	return nil
}

// resolve routes a load/store address to a backing slice and offset: the
// stack region when RA=1 (base+offset taken as a stack byte offset), then
// the image region by virtual address, then the stack region by direct
// virtual address, then soft failure.
//
// ra is the register number supplying the base (RA field of the
// instruction), base is its current value, and offset is the sign-extended
// displacement already added where that matters (RA=1 uses base+offset as
// a stack offset directly; other cases use ea = base+offset as a virtual
// address).
func (m *Memory) resolve(ra int, base uint64, offset int32, width int) (region []byte, at int, ok bool) {
	if ra == 1 {
		idx := int64(base) + int64(offset)
		if idx < 0 || idx+int64(width) > int64(len(m.Stack)) {
			return nil, 0, false
		}
		return m.Stack, int(idx), true
	}

	ea := uint32(int64(base) + int64(offset))

	if off, inImg := m.inImage(ea); inImg {
		if int64(off)+int64(width) > int64(len(m.Image)) {
			return nil, 0, false
		}
		return m.Image, int(off), true
	}

	if int64(ea)+int64(width) <= int64(len(m.Stack)) {
		return m.Stack, int(ea), true
	}

	return nil, 0, false
}

// ReadWidth reads width bytes (1, 2, 4, or 8) via the resolve() routing rules
// and returns them widened to 64 bits without sign extension, little-endian
// to match how values are stored by WriteWidth. Soft out-of-region reads
// yield zero.
func (m *Memory) ReadWidth(ra int, base uint64, offset int32, width int) uint64 {
	region, at, ok := m.resolve(ra, base, offset, width)
	if !ok {
		m.diag("load out of mapped region: ra=%d base=0x%X offset=%d width=%d", ra, base, offset, width)
		return 0
	}
	m.ReadCount++
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(region[at+i]) << (8 * i)
	}
	return v
}

// WriteWidth writes the low width bytes of value via the resolve() routing
// rules, little-endian. Soft out-of-region writes are dropped.
func (m *Memory) WriteWidth(ra int, base uint64, offset int32, width int, value uint64) {
	region, at, ok := m.resolve(ra, base, offset, width)
	if !ok {
		m.diag("store out of mapped region: ra=%d base=0x%X offset=%d width=%d", ra, base, offset, width)
		return
	}
	m.WriteCount++
	for i := 0; i < width; i++ {
		region[at+i] = byte(value >> (8 * i))
	}
}

// GrowStackForDeficit extends the stack buffer at its low end by at least
// deficit bytes. Existing offsets into the old buffer are shifted by the
// grown amount so previously-stored data remains reachable at (old offset +
// deficit).
func (m *Memory) GrowStackForDeficit(deficit int) {
	if deficit <= 0 {
		return
	}
	grown := make([]byte, deficit+len(m.Stack))
	copy(grown[deficit:], m.Stack)
	m.Stack = grown
}

func (m *Memory) diag(format string, args ...any) {
	if m.diagnostics != nil {
		m.diagnostics.add(fmt.Sprintf(format, args...))
	}
}
