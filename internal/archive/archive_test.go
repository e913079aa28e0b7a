package archive

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmap/flashmap/internal/elftest"
	"github.com/flashmap/flashmap/internal/symbol"
)

// Test Plan for archive indexing:
// - An archive of object members yields the defined global names
// - Undefined references and assembler artifacts stay out of the index
// - The symbol-index member and non-object members are tolerated
// - GNU-format archives: "//" long-name table and "/SYM64/" index are
//   bookkeeping, not members, and "/offset" names resolve to real ones
// - A file without the archive magic fails with ErrCorrupt
// - A truncated member fails with ErrCorrupt
// - The name filter accepts mangled and identifier-shaped names only

type arMember struct {
	name string
	data []byte
}

// arBytes assembles a System V archive from the given members.
func arBytes(members ...arMember) []byte {
	var buf bytes.Buffer
	buf.WriteString(arMagic)
	for _, m := range members {
		fmt.Fprintf(&buf, "%-16s%-12d%-6d%-6d%-8o%-10d`\n", m.name, 0, 0, 0, 0o644, len(m.data))
		buf.Write(m.data)
		if len(m.data)%2 != 0 {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func writeArchive(t *testing.T, members ...arMember) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libtest.a")
	require.NoError(t, os.WriteFile(path, arBytes(members...), 0o644))
	return path
}

// objectMember builds a relocatable object defining the given names, plus one
// undefined reference and one local assembler artifact that must not index.
func objectMember(names ...string) []byte {
	sections := []elftest.Section{
		{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Size: 0x40},
	}
	syms := []elftest.Sym{
		{Name: "memcpy", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL}, // undefined: Section left ""
		{Name: ".Lanon.4ae572bd.638", Section: ".text", Type: elf.STT_OBJECT, Bind: elf.STB_GLOBAL, Size: 4},
	}
	for _, n := range names {
		syms = append(syms, elftest.Sym{Name: n, Section: ".text", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Size: 8})
	}
	return elftest.Build(elf.ET_REL, sections, syms)
}

func TestIndex_CollectsDefinedGlobals(t *testing.T) {
	path := writeArchive(t,
		arMember{name: "cstr_core.o", data: objectMember("_ZN9cstr_core7CString3new17hed72bf580cc06965E")},
		arMember{name: "alloc.o", data: objectMember("__rust_alloc", "rust_oom.8916")},
	)

	warns := &symbol.Collector{}
	set, err := Index(path, warns)
	require.NoError(t, err)

	assert.Contains(t, set.Names, "_ZN9cstr_core7CString3new17hed72bf580cc06965E")
	assert.Contains(t, set.Names, "__rust_alloc")
	assert.Contains(t, set.Names, "rust_oom.8916")
	assert.NotContains(t, set.Names, "memcpy", "undefined reference must not index")
	assert.NotContains(t, set.Names, ".Lanon.4ae572bd.638")
	assert.Zero(t, warns.Len())
}

func TestIndex_SkipsSymbolIndexMember(t *testing.T) {
	path := writeArchive(t,
		arMember{name: "__.SYMDEF", data: []byte("bogus index payload")},
		arMember{name: "obj.o/", data: objectMember("crc32_ieee")},
	)

	warns := &symbol.Collector{}
	set, err := Index(path, warns)
	require.NoError(t, err)
	assert.Contains(t, set.Names, "crc32_ieee")
	assert.Zero(t, warns.Len())
}

func TestIndex_GNUBookkeepingMembersAreSilent(t *testing.T) {
	// rustc emits GNU-format rlibs: a "/" symbol index and a "//" long-name
	// table precede the objects. Neither is an object file, and neither may
	// cost a warning.
	path := writeArchive(t,
		arMember{name: "/", data: []byte{0, 0, 0, 0}},
		arMember{name: "//", data: []byte("cstr_core-8f9bb53a29b8f9aa.cstr_core.e5cd8f92-cgu.0.rcgu.o/\n")},
		arMember{name: "/SYM64/", data: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
		arMember{name: "obj.o", data: objectMember("net_buf_get")},
	)

	warns := &symbol.Collector{}
	set, err := Index(path, warns)
	require.NoError(t, err)
	assert.Contains(t, set.Names, "net_buf_get")
	assert.Zero(t, warns.Len())
}

func TestIndex_ResolvesLongNameReferences(t *testing.T) {
	longName := "cstr_core-8f9bb53a29b8f9aa.cstr_core.e5cd8f92-cgu.0.rcgu.o"
	path := writeArchive(t,
		arMember{name: "//", data: []byte(longName + "/\nREADME.verylongname/\n")},
		arMember{name: "/0", data: objectMember("__rust_alloc")},
		arMember{name: fmt.Sprintf("/%d", len(longName)+2), data: []byte("plain text, not an object\n")},
	)

	warns := &symbol.Collector{}
	set, err := Index(path, warns)
	require.NoError(t, err)
	assert.Contains(t, set.Names, "__rust_alloc")

	// The non-object member warns under its resolved name, not "/offset".
	warnings := warns.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Detail, "(README.verylongname)")
	assert.NotContains(t, warnings[0].Detail, "(/")
}

func TestResolveName_Table(t *testing.T) {
	table := []byte("first.o/\nsecond_object.o/\n")
	cases := []struct {
		name string
		want string
	}{
		{"/0", "first.o"},
		{"/9", "second_object.o"},
		{"plain.o", "plain.o"},
		{"/999", "/999"},
		{"/SYM64", "/SYM64"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resolveName(table, tc.name), tc.name)
	}
}

func TestIndex_NonObjectMemberWarns(t *testing.T) {
	path := writeArchive(t,
		arMember{name: "README", data: []byte("not an object\n")},
		arMember{name: "obj.o", data: objectMember("net_buf_get")},
	)

	warns := &symbol.Collector{}
	set, err := Index(path, warns)
	require.NoError(t, err)
	assert.Contains(t, set.Names, "net_buf_get")

	warnings := warns.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, symbol.WarnArchiveMember, warnings[0].Kind)
	assert.Contains(t, warnings[0].Detail, "README")
}

func TestIndex_BadMagicIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libtest.a")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an archive"), 0o644))

	_, err := Index(path, &symbol.Collector{})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndex_TruncatedMemberIsCorrupt(t *testing.T) {
	full := arBytes(arMember{name: "obj.o", data: objectMember("spi_transceive")})
	path := filepath.Join(t.TempDir(), "libtest.a")
	require.NoError(t, os.WriteFile(path, full[:len(full)-40], 0o644))

	_, err := Index(path, &symbol.Collector{})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndex_MissingFileIsError(t *testing.T) {
	_, err := Index(filepath.Join(t.TempDir(), "absent.a"), &symbol.Collector{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestOracleName_Filter(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"_ZN9cstr_core7CStringE", true},
		{"_RNvNtCs1234_4core3fmt5write", true},
		{"plain_c_name", true},
		{"object.8916", true},
		{"_reset_vector", true},
		{"", false},
		{".Lanon.fad58de.123", false},
		{".hidden", false},
		{"8starts_with_digit", false},
		{"has-dash", false},
		{"has space", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, oracleName(tc.name), "%q", tc.name)
	}
}
