// Package elftest builds minimal ELF images in memory for tests. The
// produced bytes parse with debug/elf; nothing here is meant to execute.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Section describes one section of the test image. Sections with type
// SHT_NOBITS occupy no file bytes.
type Section struct {
	Name  string
	Type  elf.SectionType
	Flags elf.SectionFlag
	Addr  uint64
	Size  uint64
}

// Sym describes one symbol table entry of the test image.
type Sym struct {
	Name     string
	Section  string // owning section name; "" emits SHN_UNDEF
	Absolute bool   // emits SHN_ABS instead of a section index
	Value    uint64
	Size     uint64
	Type     elf.SymType
	Bind     elf.SymBind
}

const (
	ehdrSize = 64
	shdrSize = 64
	symSize  = 24
)

// Build assembles a little-endian ELF64 image of the given type with the
// given sections and symbols.
func Build(typ elf.Type, sections []Section, syms []Sym) []byte {
	// Section indices: 0 null, then user sections, then .symtab, .strtab,
	// .shstrtab.
	symtabIdx := 1 + len(sections)
	strtabIdx := symtabIdx + 1
	shstrtabIdx := strtabIdx + 1
	shnum := shstrtabIdx + 1

	secIndex := make(map[string]int, len(sections))
	for i, s := range sections {
		secIndex[s.Name] = 1 + i
	}

	// String tables.
	strtab := newStrtab()
	shstrtab := newStrtab()
	shNames := make([]uint32, len(sections))
	for i, s := range sections {
		shNames[i] = shstrtab.add(s.Name)
	}
	symtabName := shstrtab.add(".symtab")
	strtabName := shstrtab.add(".strtab")
	shstrtabName := shstrtab.add(".shstrtab")

	// Symbol table bytes: entry 0 is the null symbol.
	var symtab bytes.Buffer
	symtab.Write(make([]byte, symSize))
	for _, s := range syms {
		var shndx uint16
		switch {
		case s.Absolute:
			shndx = uint16(elf.SHN_ABS)
		case s.Section == "":
			shndx = uint16(elf.SHN_UNDEF)
		default:
			shndx = uint16(secIndex[s.Section])
		}
		writeSym(&symtab, strtab.add(s.Name), byte(s.Bind)<<4|byte(s.Type), shndx, s.Value, s.Size)
	}

	// Lay out file content: ehdr, section data, symtab, strtab, shstrtab,
	// section header table.
	off := uint64(ehdrSize)
	secOffs := make([]uint64, len(sections))
	for i, s := range sections {
		secOffs[i] = off
		if s.Type != elf.SHT_NOBITS {
			off += s.Size
		}
	}
	symtabOff := off
	off += uint64(symtab.Len())
	strtabOff := off
	off += uint64(strtab.buf.Len())
	shstrtabOff := off
	off += uint64(shstrtab.buf.Len())
	shoff := off

	var out bytes.Buffer

	// ELF header.
	ident := make([]byte, 16)
	copy(ident, elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	out.Write(ident)
	le := binary.LittleEndian
	writeU16(&out, le, uint16(typ))
	writeU16(&out, le, uint16(elf.EM_X86_64))
	writeU32(&out, le, 1)          // version
	writeU64(&out, le, 0)          // entry
	writeU64(&out, le, 0)          // phoff
	writeU64(&out, le, shoff)      // shoff
	writeU32(&out, le, 0)          // flags
	writeU16(&out, le, ehdrSize)   // ehsize
	writeU16(&out, le, 56)         // phentsize
	writeU16(&out, le, 0)          // phnum
	writeU16(&out, le, shdrSize)   // shentsize
	writeU16(&out, le, uint16(shnum))
	writeU16(&out, le, uint16(shstrtabIdx))

	// Section data.
	for _, s := range sections {
		if s.Type != elf.SHT_NOBITS {
			out.Write(make([]byte, s.Size))
		}
	}
	out.Write(symtab.Bytes())
	out.Write(strtab.buf.Bytes())
	out.Write(shstrtab.buf.Bytes())

	// Section header table.
	writeShdr(&out, 0, 0, 0, 0, 0, 0, 0, 0) // null section
	for i, s := range sections {
		size := s.Size
		writeShdr(&out, shNames[i], uint32(s.Type), uint64(s.Flags), s.Addr, secOffs[i], size, 0, 0)
	}
	writeShdr(&out, symtabName, uint32(elf.SHT_SYMTAB), 0, 0, symtabOff, uint64(symtab.Len()), uint32(strtabIdx), symSize)
	writeShdr(&out, strtabName, uint32(elf.SHT_STRTAB), 0, 0, strtabOff, uint64(strtab.buf.Len()), 0, 0)
	writeShdr(&out, shstrtabName, uint32(elf.SHT_STRTAB), 0, 0, shstrtabOff, uint64(shstrtab.buf.Len()), 0, 0)

	return out.Bytes()
}

type strtab struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newStrtab() *strtab {
	t := &strtab{offsets: make(map[string]uint32)}
	t.buf.WriteByte(0)
	return t
}

func (t *strtab) add(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := t.offsets[s]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	t.offsets[s] = off
	return off
}

func writeSym(w *bytes.Buffer, name uint32, info byte, shndx uint16, value, size uint64) {
	le := binary.LittleEndian
	writeU32(w, le, name)
	w.WriteByte(info)
	w.WriteByte(0) // other
	writeU16(w, le, shndx)
	writeU64(w, le, value)
	writeU64(w, le, size)
}

func writeShdr(w *bytes.Buffer, name, typ uint32, flags, addr, off, size uint64, link uint32, entsize uint64) {
	le := binary.LittleEndian
	writeU32(w, le, name)
	writeU32(w, le, typ)
	writeU64(w, le, flags)
	writeU64(w, le, addr)
	writeU64(w, le, off)
	writeU64(w, le, size)
	writeU32(w, le, link)
	writeU32(w, le, 0) // info
	writeU64(w, le, 0) // addralign
	writeU64(w, le, entsize)
}

func writeU16(w *bytes.Buffer, le binary.ByteOrder, v uint16) {
	var b [2]byte
	le.PutUint16(b[:], v)
	w.Write(b[:])
}

func writeU32(w *bytes.Buffer, le binary.ByteOrder, v uint32) {
	var b [4]byte
	le.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeU64(w *bytes.Buffer, le binary.ByteOrder, v uint64) {
	var b [8]byte
	le.PutUint64(b[:], v)
	w.Write(b[:])
}
