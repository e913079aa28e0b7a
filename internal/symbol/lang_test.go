package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Language Attributor:
// - Archive membership attributes Rust regardless of name shape
// - A C++-mangled name outside every archive attributes Cpp
// - An unmangled name outside every archive attributes C
// - Legacy Rust mangling without an archive falls through to Cpp
// - Empty and synthetic names attribute Unknown
// - Classify preserves symbol order and fills in the demangled name

func rustOracle(names ...string) []ArchiveSymbolSet {
	set := ArchiveSymbolSet{Archive: "libtest.rlib", Names: make(map[string]struct{})}
	for _, n := range names {
		set.Names[n] = struct{}{}
	}
	return []ArchiveSymbolSet{set}
}

func TestAttributor_ArchiveMembership_BeatsCppShape(t *testing.T) {
	// The name demangles to a scoped C++ form, but it is defined inside a
	// supplied archive: ground truth wins over the shape heuristic.
	const mangled = "_ZN9cstr_core7CString3new17hed72bf580cc06965E"
	a := NewAttributor(rustOracle(mangled), nil)

	lang, dem := a.attribute(mangled)
	assert.Equal(t, LangRust, lang)
	assert.Contains(t, dem, "cstr_core")
}

func TestAttributor_UnmangledArchiveName_IsRust(t *testing.T) {
	a := NewAttributor(rustOracle("rust_begin_unwind"), nil)

	lang, dem := a.attribute("rust_begin_unwind")
	assert.Equal(t, LangRust, lang)
	assert.Equal(t, "rust_begin_unwind", dem)
}

func TestAttributor_CppMangledName_IsCpp(t *testing.T) {
	a := NewAttributor(nil, nil)

	lang, dem := a.attribute("_ZN2ot12gInstanceRawE")
	assert.Equal(t, LangCpp, lang)
	assert.Equal(t, "ot::gInstanceRaw", dem)
}

func TestAttributor_CppFunction_IsCpp(t *testing.T) {
	a := NewAttributor(nil, nil)

	lang, dem := a.attribute("_ZN2ot3Cli11Interpreter9sCommandsE")
	assert.Equal(t, LangCpp, lang)
	assert.Equal(t, "ot::Cli::Interpreter::sCommands", dem)
}

func TestAttributor_PlainName_IsC(t *testing.T) {
	a := NewAttributor(nil, nil)

	lang, dem := a.attribute("net_if_up")
	assert.Equal(t, LangC, lang)
	assert.Equal(t, "net_if_up", dem)
}

func TestAttributor_LegacyRustWithoutArchive_FallsThroughToCpp(t *testing.T) {
	// With no archive supplied there is no Rust signal; the mangled shape
	// heuristic is all that is left.
	a := NewAttributor(nil, nil)

	lang, _ := a.attribute("_ZN9cstr_core7CString3new17hed72bf580cc06965E")
	assert.Equal(t, LangCpp, lang)
}

func TestAttributor_SyntheticNames_AreUnknown(t *testing.T) {
	a := NewAttributor(nil, nil)

	for _, name := range []string{"", "$d", "$t", "$t.4", ".Lanon.4575732b.638"} {
		lang, _ := a.attribute(name)
		assert.Equal(t, LangUnknown, lang, "name %q", name)
	}
}

func TestAttributor_Classify_PreservesOrderAndDemangles(t *testing.T) {
	a := NewAttributor(nil, nil)
	in := []CanonicalSymbol{
		{Name: "net_if_up", Size: 0x64},
		{Name: "_ZN2ot12gInstanceRawE", Size: 26608},
	}

	out := a.Classify(in)
	require.Len(t, out, 2)
	assert.Equal(t, LangC, out[0].Lang)
	assert.Equal(t, "net_if_up", out[0].Demangled)
	assert.Equal(t, LangCpp, out[1].Lang)
	assert.Equal(t, "ot::gInstanceRaw", out[1].Demangled)
	// Classification never mutates the canonical fields.
	assert.Equal(t, uint64(26608), out[1].Size)
}

func TestDemangleOptions_KnownModes(t *testing.T) {
	assert.Equal(t, DemangleSimplified, DemangleOptions("simplified"))
	assert.Equal(t, DemangleTemplates, DemangleOptions("templates"))
	assert.Equal(t, DemangleFull, DemangleOptions("full"))
	assert.Equal(t, DemangleFull, DemangleOptions(""))
}
