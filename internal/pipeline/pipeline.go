// Package pipeline orchestrates one analysis run: the independent
// extraction stages run concurrently over immutable inputs, then the merge,
// attribution, and aggregation stages fold their outputs into a report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ianlancetaylor/demangle"
	"golang.org/x/sync/errgroup"

	"github.com/flashmap/flashmap/internal/archive"
	"github.com/flashmap/flashmap/internal/nmdump"
	"github.com/flashmap/flashmap/internal/objfile"
	"github.com/flashmap/flashmap/internal/report"
	"github.com/flashmap/flashmap/internal/symbol"
)

// ErrConfig marks an input problem detected before the pipeline starts:
// a missing required path or an unreadable file.
var ErrConfig = errors.New("configuration error")

// Inputs names the files of one run. The binary is required; dump and
// archive paths may repeat and may be empty.
type Inputs struct {
	Binary   string
	Dumps    []string
	Archives []string
}

// ProgressReporter receives stage completion events. Implementations must
// tolerate calls from multiple goroutines.
type ProgressReporter interface {
	OnExtractionStart(in Inputs)
	OnBinaryLoaded(sections, symbols int)
	OnDumpParsed(path string, symbols int)
	OnArchiveIndexed(path string, names int)
	OnMergeComplete(symbols int)
}

type nopProgress struct{}

func (nopProgress) OnExtractionStart(Inputs)     {}
func (nopProgress) OnBinaryLoaded(int, int)      {}
func (nopProgress) OnDumpParsed(string, int)     {}
func (nopProgress) OnArchiveIndexed(string, int) {}
func (nopProgress) OnMergeComplete(int)          {}

// Options tune one run.
type Options struct {
	Progress ProgressReporter
	// Demangle selects the demangling detail for attribution and display.
	Demangle []demangle.Option
}

// Run executes the full pipeline. A fatal error in any stage aborts the
// whole run without producing a partial report; recoverable issues end up
// in the report's warning list.
func Run(ctx context.Context, in Inputs, opts Options) (*report.Report, error) {
	if err := checkInputs(in); err != nil {
		return nil, err
	}
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	progress.OnExtractionStart(in)

	warns := &symbol.Collector{}

	var (
		sections []symbol.Section
		binSyms  []symbol.RawSymbol
		dumpSyms []symbol.RawSymbol
		sets     []symbol.ArchiveSymbolSet
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		obj, err := objfile.Open(in.Binary)
		if err != nil {
			return err
		}
		defer obj.Close()

		sections = obj.Sections()
		binSyms, err = obj.Symbols(warns)
		if err != nil {
			return err
		}
		progress.OnBinaryLoaded(len(sections), len(binSyms))
		return nil
	})

	g.Go(func() error {
		for _, path := range in.Dumps {
			if err := ctx.Err(); err != nil {
				return err
			}
			syms, err := nmdump.ParseFile(path, warns)
			if err != nil {
				return err
			}
			dumpSyms = append(dumpSyms, syms...)
			progress.OnDumpParsed(path, len(syms))
		}
		return nil
	})

	g.Go(func() error {
		for _, path := range in.Archives {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := archive.Index(path, warns)
			if err != nil {
				return err
			}
			sets = append(sets, set)
			progress.OnArchiveIndexed(path, len(set.Names))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	raws := make([]symbol.RawSymbol, 0, len(binSyms)+len(dumpSyms))
	raws = append(raws, binSyms...)
	raws = append(raws, dumpSyms...)

	canonical := symbol.Merge(sections, raws, warns)
	progress.OnMergeComplete(len(canonical))

	classified := symbol.NewAttributor(sets, opts.Demangle).Classify(canonical)

	return report.New(classified, warns.Warnings()), nil
}

// checkInputs surfaces missing or unreadable paths before any stage runs.
func checkInputs(in Inputs) error {
	if in.Binary == "" {
		return fmt.Errorf("%w: no binary supplied", ErrConfig)
	}
	paths := make([]string, 0, 1+len(in.Dumps)+len(in.Archives))
	paths = append(paths, in.Binary)
	paths = append(paths, in.Dumps...)
	paths = append(paths, in.Archives...)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		f.Close()
	}
	return nil
}
