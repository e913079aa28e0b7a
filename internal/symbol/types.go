// Package symbol holds the core data model for footprint analysis: sections,
// raw and canonical symbols, language attribution, and the merge logic that
// reconciles the independent extraction sources into one symbol list.
package symbol

import (
	"fmt"
	"strings"
)

// Region is a single memory region of the target device.
type Region uint8

const (
	RegionRom Region = iota
	RegionRam
)

func (r Region) String() string {
	switch r {
	case RegionRom:
		return "ROM"
	case RegionRam:
		return "RAM"
	}
	return "unknown"
}

// RegionSet is a set of memory regions. A symbol in an initialized-data
// section occupies both ROM (its initializer image) and RAM (its runtime
// location), so region membership is a set, not a single value.
type RegionSet uint8

const (
	RegionSetNone RegionSet = 0
	RegionSetRom  RegionSet = 1 << RegionRom
	RegionSetRam  RegionSet = 1 << RegionRam
	RegionSetBoth RegionSet = RegionSetRom | RegionSetRam
)

// Has reports whether the set contains the given region.
func (s RegionSet) Has(r Region) bool {
	return s&(1<<r) != 0
}

// Intersects reports whether the two sets share at least one region.
func (s RegionSet) Intersects(o RegionSet) bool {
	return s&o != 0
}

func (s RegionSet) String() string {
	switch s {
	case RegionSetRom:
		return "ROM"
	case RegionSetRam:
		return "RAM"
	case RegionSetBoth:
		return "ROM+RAM"
	}
	return "-"
}

// ParseRegionSet parses a region filter: "rom", "ram", or "both".
func ParseRegionSet(s string) (RegionSet, error) {
	switch strings.ToLower(s) {
	case "rom":
		return RegionSetRom, nil
	case "ram":
		return RegionSetRam, nil
	case "both":
		return RegionSetBoth, nil
	}
	return RegionSetNone, fmt.Errorf("invalid region %q (expected rom, ram, or both)", s)
}

// SectionKind is the coarse classification of a section's runtime role.
type SectionKind uint8

const (
	KindOther SectionKind = iota
	KindText
	KindReadOnlyData
	KindData
	KindBss
)

func (k SectionKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindReadOnlyData:
		return "ReadOnlyData"
	case KindData:
		return "Data"
	case KindBss:
		return "Bss"
	}
	return "Other"
}

// Regions returns the memory regions a symbol in a section of this kind
// occupies. Initialized data counts against both budgets: the initializer
// image lives in ROM and the runtime copy in RAM.
func (k SectionKind) Regions() RegionSet {
	switch k {
	case KindText, KindReadOnlyData:
		return RegionSetRom
	case KindData:
		return RegionSetBoth
	case KindBss:
		return RegionSetRam
	}
	return RegionSetNone
}

// Section describes one section of the analyzed binary.
type Section struct {
	Name  string
	Start uint64
	End   uint64 // exclusive
	Kind  SectionKind

	// Loaded marks sections with a runtime footprint. Debug-only sections
	// are not loaded.
	Loaded bool
	// HasData marks sections whose bytes exist in the binary image.
	// Zero-initialized sections have no file content.
	HasData bool
}

// Contains reports whether addr falls inside the section's address range.
func (s Section) Contains(addr uint64) bool {
	return addr >= s.Start && addr < s.End
}

// Regions returns the region contribution of symbols owned by this section.
func (s Section) Regions() RegionSet {
	if !s.Loaded {
		return RegionSetNone
	}
	return s.Kind.Regions()
}

// Source identifies which extraction path produced a raw symbol.
type Source uint8

const (
	SourceBinary Source = iota
	SourceTextDump
)

func (s Source) String() string {
	if s == SourceBinary {
		return "binary"
	}
	return "textdump"
}

// SourceSet records the provenance of a canonical symbol.
type SourceSet uint8

const (
	SourceSetBinary   SourceSet = 1 << SourceBinary
	SourceSetTextDump SourceSet = 1 << SourceTextDump
)

// Has reports whether the set contains the given source.
func (s SourceSet) Has(src Source) bool {
	return s&(1<<src) != 0
}

// RawSymbol is the intermediate symbol shape shared by all extractors.
type RawSymbol struct {
	Name string
	Addr uint64
	Size uint64
	Src  Source

	// Hint is the owning section kind if the extractor could determine
	// one: section containment for the binary source, the nm type
	// character for the text-dump source.
	Hint    SectionKind
	HasHint bool
}

// CanonicalSymbol is the reconciled record for one named binary entity.
type CanonicalSymbol struct {
	Name      string
	Demangled string
	Addr      uint64
	Size      uint64
	Kind      SectionKind
	Regions   RegionSet
	Sources   SourceSet
}

// Language is the attributed source language of a symbol.
type Language uint8

const (
	LangUnknown Language = iota
	LangC
	LangCpp
	LangRust
	// LangAny is only valid as a report filter, never as an attribution.
	LangAny
)

func (l Language) String() string {
	switch l {
	case LangC:
		return "C"
	case LangCpp:
		return "Cpp"
	case LangRust:
		return "Rust"
	case LangAny:
		return "Any"
	}
	return "Unknown"
}

// ParseLanguage parses a language filter: "c", "cpp", "rust", or "any".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "c":
		return LangC, nil
	case "cpp", "c++":
		return LangCpp, nil
	case "rust":
		return LangRust, nil
	case "any":
		return LangAny, nil
	}
	return LangUnknown, fmt.Errorf("invalid language %q (expected c, cpp, rust, or any)", s)
}

// ClassifiedSymbol is a canonical symbol with its attributed language.
type ClassifiedSymbol struct {
	CanonicalSymbol
	Lang Language
}

// ArchiveSymbolSet is the set of symbol names one static archive defines.
type ArchiveSymbolSet struct {
	Archive string
	Names   map[string]struct{}
}

// UnionNames merges the name sets of all supplied archives into the
// attribution oracle.
func UnionNames(sets []ArchiveSymbolSet) map[string]struct{} {
	union := make(map[string]struct{})
	for _, s := range sets {
		for name := range s.Names {
			union[name] = struct{}{}
		}
	}
	return union
}
