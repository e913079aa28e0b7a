// Package report aggregates classified symbols into per-language totals and
// ranked listings, and renders them as tables.
package report

import (
	"sort"

	"github.com/flashmap/flashmap/internal/symbol"
)

// Key addresses one (language, region) total.
type Key struct {
	Lang   symbol.Language
	Region symbol.Region
}

// Report is the aggregated result of one analysis run. It is immutable
// after construction.
type Report struct {
	// Totals maps (language, region) to bytes. A dual-region symbol
	// contributes its full size to both its ROM and RAM totals; the two
	// are separate budgets, not a shared pool.
	Totals map[Key]uint64
	// GrandTotals maps each region to the bytes of all languages combined.
	GrandTotals map[symbol.Region]uint64
	// Symbols is ranked by descending size, ties broken by name.
	Symbols []symbol.ClassifiedSymbol
	// Warnings are the recoverable issues collected across the run.
	Warnings []symbol.Warning
}

var allRegions = []symbol.Region{symbol.RegionRom, symbol.RegionRam}

// Languages lists every attributable language in display order.
var Languages = []symbol.Language{symbol.LangC, symbol.LangCpp, symbol.LangRust, symbol.LangUnknown}

// New folds classified symbols into a report.
func New(syms []symbol.ClassifiedSymbol, warnings []symbol.Warning) *Report {
	r := &Report{
		Totals:      make(map[Key]uint64),
		GrandTotals: make(map[symbol.Region]uint64),
		Symbols:     make([]symbol.ClassifiedSymbol, len(syms)),
		Warnings:    warnings,
	}
	copy(r.Symbols, syms)

	for _, s := range syms {
		for _, reg := range allRegions {
			if !s.Regions.Has(reg) {
				continue
			}
			r.Totals[Key{Lang: s.Lang, Region: reg}] += s.Size
			r.GrandTotals[reg] += s.Size
		}
	}

	sort.SliceStable(r.Symbols, func(i, j int) bool {
		if r.Symbols[i].Size != r.Symbols[j].Size {
			return r.Symbols[i].Size > r.Symbols[j].Size
		}
		return r.Symbols[i].Name < r.Symbols[j].Name
	})

	return r
}

// Total returns the bytes attributed to lang across the given regions.
// symbol.LangAny sums all languages.
func (r *Report) Total(lang symbol.Language, regions symbol.RegionSet) uint64 {
	var sum uint64
	for _, reg := range allRegions {
		if !regions.Has(reg) {
			continue
		}
		if lang == symbol.LangAny {
			sum += r.GrandTotals[reg]
			continue
		}
		sum += r.Totals[Key{Lang: lang, Region: reg}]
	}
	return sum
}

// Grand returns the combined bytes of all languages across the given
// regions.
func (r *Report) Grand(regions symbol.RegionSet) uint64 {
	return r.Total(symbol.LangAny, regions)
}

// Percent returns lang's share of the grand total across the given regions,
// or 0 when the grand total is 0.
func (r *Report) Percent(lang symbol.Language, regions symbol.RegionSet) float64 {
	grand := r.Grand(regions)
	if grand == 0 {
		return 0
	}
	return 100 * float64(r.Total(lang, regions)) / float64(grand)
}

// TopSymbols returns the ranked symbols restricted to the given languages
// and regions, truncated to the first n entries (n <= 0 means no limit).
// An empty language list, or one containing symbol.LangAny, selects every
// language.
func (r *Report) TopSymbols(langs []symbol.Language, regions symbol.RegionSet, n int) []symbol.ClassifiedSymbol {
	any := len(langs) == 0
	for _, l := range langs {
		if l == symbol.LangAny {
			any = true
		}
	}

	var out []symbol.ClassifiedSymbol
	for _, s := range r.Symbols {
		if !s.Regions.Intersects(regions) {
			continue
		}
		if !any && !containsLang(langs, s.Lang) {
			continue
		}
		out = append(out, s)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

func containsLang(langs []symbol.Language, l symbol.Language) bool {
	for _, x := range langs {
		if x == l {
			return true
		}
	}
	return false
}
