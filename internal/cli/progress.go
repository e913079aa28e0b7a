package cli

import (
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/flashmap/flashmap/internal/pipeline"
)

// progressReporter implements pipeline.ProgressReporter with a progress bar
// over the slow inputs (archives) and log lines for the rest. All output
// goes to stderr so the report tables on stdout stay clean.
type progressReporter struct {
	quiet      bool
	archiveBar *progressbar.ProgressBar
}

func newProgressReporter(quiet bool) *progressReporter {
	return &progressReporter{quiet: quiet}
}

func (p *progressReporter) OnExtractionStart(in pipeline.Inputs) {
	if p.quiet {
		return
	}
	log.Printf("Analyzing %s (%d dump(s), %d archive(s))", in.Binary, len(in.Dumps), len(in.Archives))

	if len(in.Archives) > 1 {
		p.archiveBar = progressbar.NewOptions(len(in.Archives),
			progressbar.OptionSetDescription("Indexing archives"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				os.Stderr.WriteString("\n")
			}),
		)
	}
}

func (p *progressReporter) OnBinaryLoaded(sections, symbols int) {
	if p.quiet {
		return
	}
	log.Printf("Binary: %d sections, %d symbols", sections, symbols)
}

func (p *progressReporter) OnDumpParsed(path string, symbols int) {
	if p.quiet {
		return
	}
	log.Printf("Dump %s: %d symbols", path, symbols)
}

func (p *progressReporter) OnArchiveIndexed(path string, names int) {
	if p.quiet {
		return
	}
	if p.archiveBar != nil {
		p.archiveBar.Add(1)
		return
	}
	log.Printf("Archive %s: %d defined names", path, names)
}

func (p *progressReporter) OnMergeComplete(symbols int) {
	if p.quiet {
		return
	}
	log.Printf("Merged: %d canonical symbols", symbols)
}
