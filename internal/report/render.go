package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"

	"github.com/flashmap/flashmap/internal/symbol"
)

// DefaultNameWidth is the wrap width for the symbol name column when the
// caller does not override it.
const DefaultNameWidth = 60

// WriteSummary renders the per-language totals and percentages for the
// given regions as one table, largest language first.
func (r *Report) WriteSummary(w io.Writer, regions symbol.RegionSet, human bool) {
	type row struct {
		lang symbol.Language
		size uint64
		pct  float64
	}

	rows := make([]row, 0, len(Languages))
	for _, lang := range Languages {
		size := r.Total(lang, regions)
		if lang == symbol.LangUnknown && size == 0 {
			continue
		}
		rows = append(rows, row{lang: lang, size: size, pct: r.Percent(lang, regions)})
	}
	// Stable: equal sizes keep the fixed language order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].size > rows[j].size
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{regions.String(), "Size [Bytes]", "%age"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append([]string{
			row.lang.String(),
			formatSize(row.size, human),
			fmt.Sprintf("%.1f", row.pct),
		})
	}
	table.Append([]string{"Total", formatSize(r.Grand(regions), human), ""})
	table.Render()
}

// WriteSymbols renders a ranked symbol listing. The name column is wrapped
// to nameWidth runes so long demangled names stay readable.
func WriteSymbols(w io.Writer, syms []symbol.ClassifiedSymbol, nameWidth int, human bool) {
	if nameWidth <= 0 {
		nameWidth = DefaultNameWidth
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Language", "Name", "Size [Bytes]", "Section", "Region"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, s := range syms {
		name := s.Demangled
		if name == "" {
			name = s.Name
		}
		table.Append([]string{
			s.Lang.String(),
			wordwrap.WrapString(name, uint(nameWidth)),
			formatSize(s.Size, human),
			s.Kind.String(),
			s.Regions.String(),
		})
	}
	table.Render()
}

func formatSize(size uint64, human bool) string {
	if human {
		return humanize.IBytes(size)
	}
	return strconv.FormatUint(size, 10)
}
