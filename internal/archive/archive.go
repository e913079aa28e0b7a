// Package archive indexes static archives: for each archive it extracts the
// set of symbol names the archive's object members define. The union of
// these sets is the language-attribution oracle.
package archive

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"

	"github.com/flashmap/flashmap/internal/symbol"
)

// ErrCorrupt marks an archive whose global header or member table cannot be
// read at all. Per-member decode problems are recoverable and only warn.
var ErrCorrupt = errors.New("corrupt archive")

const arMagic = "!<arch>\n"

// Index enumerates the object members of the archive at path and collects
// every defined global symbol name.
func Index(path string, warns *symbol.Collector) (symbol.ArchiveSymbolSet, error) {
	set := symbol.ArchiveSymbolSet{
		Archive: path,
		Names:   make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		return set, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, magic); err != nil || string(magic) != arMagic {
		return set, fmt.Errorf("%w: %s: bad magic", ErrCorrupt, path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return set, fmt.Errorf("reading archive %s: %w", path, err)
	}

	rd := ar.NewReader(f)
	var longNames []byte
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return set, fmt.Errorf("%w: %s: member table: %v", ErrCorrupt, path, err)
		}

		// GNU long-name table: holds the real names of members whose header
		// name is a "/offset" reference.
		if strings.TrimSpace(hdr.Name) == "//" {
			longNames = make([]byte, hdr.Size)
			if _, err := io.ReadFull(rd, longNames); err != nil {
				return set, fmt.Errorf("%w: %s: long-name table truncated", ErrCorrupt, path)
			}
			continue
		}

		name := resolveName(longNames, strings.TrimSuffix(strings.TrimSpace(hdr.Name), "/"))
		if specialMember(name) {
			continue
		}

		data := make([]byte, hdr.Size)
		if _, err := io.ReadFull(rd, data); err != nil {
			return set, fmt.Errorf("%w: %s: member %s truncated", ErrCorrupt, path, name)
		}

		names, err := definedNames(data)
		if err != nil {
			warns.Add(symbol.WarnArchiveMember, "%s(%s): %v; member skipped", path, name, err)
			continue
		}
		for _, n := range names {
			set.Names[n] = struct{}{}
		}
	}

	return set, nil
}

// specialMember reports whether an archive member is linker bookkeeping
// rather than an object file: the symbol index (GNU "/", 64-bit "/SYM64/",
// and the BSD equivalents).
func specialMember(name string) bool {
	switch name {
	case "", "/SYM64", "__.SYMDEF", "__.SYMDEF SORTED":
		return true
	}
	return false
}

// resolveName resolves a GNU "/offset" long-name reference against the
// archive's long-name table. Names that are not references, or that point
// outside the table, pass through unchanged.
func resolveName(table []byte, name string) string {
	if !strings.HasPrefix(name, "/") {
		return name
	}
	off, err := strconv.Atoi(name[1:])
	if err != nil || off < 0 || off >= len(table) {
		return name
	}
	entry := table[off:]
	if i := bytes.IndexByte(entry, '\n'); i >= 0 {
		entry = entry[:i]
	}
	return strings.TrimSuffix(strings.TrimSpace(string(entry)), "/")
}

// definedNames extracts the defined global symbol names from one object
// member.
func definedNames(data []byte) ([]string, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an object file: %v", err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading member symbols: %v", err)
	}

	var out []string
	for _, s := range syms {
		if s.Section == elf.SHN_UNDEF {
			continue
		}
		switch elf.ST_BIND(s.Info) {
		case elf.STB_GLOBAL, elf.STB_WEAK:
		default:
			continue
		}
		if !oracleName(s.Name) {
			continue
		}
		out = append(out, s.Name)
	}
	return out, nil
}

// oracleName reports whether a defined name is usable for attribution.
// Mangled names qualify as-is; unmangled names must look like plain
// identifiers (a dot is allowed for local-object suffixes such as
// "object.8916"), which excludes assembler artifacts like
// ".Lanon.<hash>.638" that never appear in a linked image.
func oracleName(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "_Z") || strings.HasPrefix(name, "_R") {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case c >= '0' && c <= '9' || c == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
