package symbol

import "sort"

// mergeKey identifies one binary entity across extraction sources.
type mergeKey struct {
	name string
	addr uint64
}

type mergeEntry struct {
	binSize  uint64
	dumpSize uint64
	sources  SourceSet
	hint     SectionKind
	hasHint  bool
}

// Merge reconciles the raw symbol sequences from the binary's own symbol
// table and the text-dump parser into canonical symbols keyed by
// (name, address).
//
// The binary source is authoritative for sizes: when the two sources
// disagree, the binary size wins and a size-mismatch warning is recorded.
// Section kind and region membership are derived from the section list by
// address containment; a symbol no section contains falls back to the
// extractor's hint, and with no hint at all it is classified Other and
// counted against ROM when it has a nonzero size.
func Merge(sections []Section, raws []RawSymbol, warns *Collector) []CanonicalSymbol {
	entries := make(map[mergeKey]*mergeEntry)

	for _, raw := range raws {
		key := mergeKey{name: raw.Name, addr: raw.Addr}
		e := entries[key]
		if e == nil {
			e = &mergeEntry{}
			entries[key] = e
		}
		switch raw.Src {
		case SourceBinary:
			e.binSize = raw.Size
		case SourceTextDump:
			e.dumpSize = raw.Size
		}
		e.sources |= 1 << raw.Src
		// A containment-derived hint from the binary extractor beats the
		// nm type character.
		if raw.HasHint && (!e.hasHint || raw.Src == SourceBinary) {
			e.hint = raw.Hint
			e.hasHint = true
		}
	}

	out := make([]CanonicalSymbol, 0, len(entries))
	for key, e := range entries {
		size := e.binSize
		if !e.sources.Has(SourceBinary) {
			size = e.dumpSize
		} else if e.sources.Has(SourceTextDump) && e.binSize != e.dumpSize {
			warns.Add(WarnSizeMismatch, "%s at %#x: binary reports %d bytes, dump reports %d; keeping %d",
				key.name, key.addr, e.binSize, e.dumpSize, e.binSize)
		}

		kind, regions := classify(sections, key.addr, e.hint, e.hasHint, size)

		out = append(out, CanonicalSymbol{
			Name:    key.name,
			Addr:    key.addr,
			Size:    size,
			Kind:    kind,
			Regions: regions,
			Sources: e.sources,
		})
	}

	// Map iteration order is random; sort for a deterministic pipeline.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Addr != out[j].Addr {
			return out[i].Addr < out[j].Addr
		}
		return out[i].Name < out[j].Name
	})

	return out
}

// classify derives the section kind and region membership for a symbol at
// the given address.
func classify(sections []Section, addr uint64, hint SectionKind, hasHint bool, size uint64) (SectionKind, RegionSet) {
	if sec, ok := FindSection(sections, addr); ok {
		return sec.Kind, sec.Regions()
	}
	if hasHint {
		return hint, hint.Regions()
	}
	if size > 0 {
		// Documented fallback: no section data at all, assume the symbol
		// occupies persistent storage.
		return KindOther, RegionSetRom
	}
	return KindOther, RegionSetNone
}

// FindSection returns the loaded section containing addr. Non-loaded
// sections are skipped: they carry no address, so their headers sit at 0 and
// would shadow real symbols in images with flash based at address zero.
// Loaded section ranges within one binary never overlap, so at most one
// section matches.
func FindSection(sections []Section, addr uint64) (Section, bool) {
	for _, sec := range sections {
		if sec.Loaded && sec.Contains(addr) {
			return sec, true
		}
	}
	return Section{}, false
}
