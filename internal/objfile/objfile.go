// Package objfile reads section headers and the native symbol table from a
// final linked ELF image.
package objfile

import (
	"debug/elf"
	"errors"
	"fmt"

	"github.com/flashmap/flashmap/internal/symbol"
)

// ErrInvalidContainer marks a file that is not a recognized final-linked
// binary: bad magic, truncated headers, or a relocatable/shared object.
var ErrInvalidContainer = errors.New("invalid container")

// File is an opened binary container.
type File struct {
	f        *elf.File
	path     string
	sections []symbol.Section
}

// Open opens the binary at path and extracts its section list. It fails
// with ErrInvalidContainer if the file is not a final linked executable or
// carries no section headers.
func Open(path string) (*File, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidContainer, path, err)
	}
	if f.Type != elf.ET_EXEC {
		f.Close()
		return nil, fmt.Errorf("%w: %s: not a final linked executable (type %v)", ErrInvalidContainer, path, f.Type)
	}
	if len(f.Sections) == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s: no section headers", ErrInvalidContainer, path)
	}

	sections := make([]symbol.Section, 0, len(f.Sections))
	for _, sec := range f.Sections {
		if sec.Type == elf.SHT_NULL {
			continue
		}
		kind, loaded, hasData := classifyHeader(sec.Flags, sec.Type)
		sections = append(sections, symbol.Section{
			Name:    sec.Name,
			Start:   sec.Addr,
			End:     sec.Addr + sec.Size,
			Kind:    kind,
			Loaded:  loaded,
			HasData: hasData,
		})
	}

	return &File{f: f, path: path, sections: sections}, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	return f.f.Close()
}

// Sections returns the extracted section list in header order.
func (f *File) Sections() []symbol.Section {
	return f.sections
}

// Symbols reads the native symbol table and resolves each entry's owning
// section by address containment. A binary without a symbol table yields an
// empty list with a warning; the text-dump source can still cover it.
func (f *File) Symbols(warns *symbol.Collector) ([]symbol.RawSymbol, error) {
	syms, err := f.f.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			warns.Add(symbol.WarnNoSymbolTable, "%s has no symbol table", f.path)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: reading symbol table: %v", ErrInvalidContainer, f.path, err)
	}
	return extractSymbols(syms, f.sections, warns), nil
}

// classifyHeader derives the section kind and load semantics from the ELF
// header flags and type.
func classifyHeader(flags elf.SectionFlag, typ elf.SectionType) (kind symbol.SectionKind, loaded, hasData bool) {
	loaded = flags&elf.SHF_ALLOC != 0
	hasData = typ != elf.SHT_NOBITS

	switch {
	case loaded && flags&elf.SHF_EXECINSTR != 0:
		kind = symbol.KindText
	case loaded && flags&elf.SHF_WRITE == 0 && hasData:
		kind = symbol.KindReadOnlyData
	case loaded && flags&elf.SHF_WRITE != 0 && hasData:
		kind = symbol.KindData
	case loaded && flags&elf.SHF_WRITE != 0 && !hasData:
		kind = symbol.KindBss
	default:
		kind = symbol.KindOther
	}
	return kind, loaded, hasData
}

// extractSymbols converts defined, sized symbol table entries into raw
// symbols. Entries with no size, no concrete type, or an undefined/absolute
// address are dropped.
func extractSymbols(syms []elf.Symbol, sections []symbol.Section, warns *symbol.Collector) []symbol.RawSymbol {
	out := make([]symbol.RawSymbol, 0, len(syms))
	for _, s := range syms {
		if s.Size == 0 {
			continue
		}
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT, elf.STT_GNU_IFUNC:
		default:
			continue
		}
		switch s.Section {
		case elf.SHN_UNDEF, elf.SHN_ABS, elf.SHN_COMMON:
			continue
		}

		raw := symbol.RawSymbol{
			Name: s.Name,
			Addr: s.Value,
			Size: s.Size,
			Src:  symbol.SourceBinary,
		}
		if sec, ok := symbol.FindSection(sections, s.Value); ok {
			raw.Hint = sec.Kind
			raw.HasHint = true
		} else {
			warns.Add(symbol.WarnUnresolvedSection, "%s at %#x is contained by no section", s.Name, s.Value)
		}
		out = append(out, raw)
	}
	return out
}
