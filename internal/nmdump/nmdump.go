// Package nmdump parses the textual output of an nm-style symbol dump:
// one "<address> <size> <type-char> <name>" line per symbol.
package nmdump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/flashmap/flashmap/internal/symbol"
)

var lineRE = regexp.MustCompile(`^\s*([0-9a-fA-F]+)\s+([0-9a-fA-F]+)\s+(\S)\s+(\S.*?)\s*$`)

// ParseFile parses one dump file. A missing file is a configuration error
// checked before the pipeline starts, so any open failure here is fatal.
func ParseFile(path string, warns *symbol.Collector) ([]symbol.RawSymbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening symbol dump: %w", err)
	}
	defer f.Close()
	return Parse(f, path, warns)
}

// Parse reads dump lines from r. Malformed lines are skipped with a
// warning; empty input yields an empty list.
func Parse(r io.Reader, name string, warns *symbol.Collector) ([]symbol.RawSymbol, error) {
	var out []symbol.RawSymbol

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			warns.Add(symbol.WarnMalformedLine, "%s:%d: %q", name, lineno, line)
			continue
		}

		addr, err := strconv.ParseUint(m[1], 16, 64)
		if err != nil {
			warns.Add(symbol.WarnMalformedLine, "%s:%d: bad address %q", name, lineno, m[1])
			continue
		}
		size, err := strconv.ParseUint(m[2], 16, 64)
		if err != nil {
			warns.Add(symbol.WarnMalformedLine, "%s:%d: bad size %q", name, lineno, m[2])
			continue
		}

		class, ok := typeClass(m[3][0])
		if !ok {
			warns.Add(symbol.WarnMalformedLine, "%s:%d: unknown type character %q", name, lineno, m[3])
			continue
		}
		if class.skip {
			// Well-formed but footprint-free: absolute, undefined, and
			// debugging entries.
			continue
		}

		out = append(out, symbol.RawSymbol{
			Name:    m[4],
			Addr:    addr,
			Size:    size,
			Src:     symbol.SourceTextDump,
			Hint:    class.kind,
			HasHint: class.hasKind,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading symbol dump %s: %w", name, err)
	}
	return out, nil
}

type symClass struct {
	kind    symbol.SectionKind
	hasKind bool
	skip    bool
}

// typeClass maps an nm type character to a section kind hint. Weak and
// indirect symbols are kept without a hint; their section is resolved by
// address during the merge.
func typeClass(c byte) (symClass, bool) {
	switch c {
	case 'T', 't':
		return symClass{kind: symbol.KindText, hasKind: true}, true
	case 'D', 'd', 'G', 'g':
		return symClass{kind: symbol.KindData, hasKind: true}, true
	case 'B', 'b', 'C', 'c', 'S', 's':
		return symClass{kind: symbol.KindBss, hasKind: true}, true
	case 'R', 'r', 'n':
		return symClass{kind: symbol.KindReadOnlyData, hasKind: true}, true
	case 'V', 'v', 'W', 'w', 'I', 'i', 'u':
		return symClass{}, true
	case 'A', 'U', 'N', 'p', '-', '?':
		return symClass{skip: true}, true
	}
	return symClass{}, false
}
