package symbol

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Demangle option presets, from least to most detail.
var (
	DemangleSimplified = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	DemangleTemplates  = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	DemangleFull       = []demangle.Option{demangle.NoClones}
)

// DemangleOptions maps a config string to a demangle option preset.
func DemangleOptions(mode string) []demangle.Option {
	switch mode {
	case "simplified":
		return DemangleSimplified
	case "templates":
		return DemangleTemplates
	default:
		return DemangleFull
	}
}

// Attributor assigns a source language to canonical symbols.
//
// Archive membership is ground truth: a name physically defined inside a
// supplied Rust archive is Rust no matter what shape its mangling has. Only
// names outside every archive fall through to the demangling heuristic.
type Attributor struct {
	rustNames map[string]struct{}
	opts      []demangle.Option
}

// NewAttributor builds an attributor from the supplied archive symbol sets.
// The union of all sets forms the Rust oracle; with no archives supplied the
// oracle is empty and Rust is never attributed.
func NewAttributor(sets []ArchiveSymbolSet, opts []demangle.Option) *Attributor {
	if opts == nil {
		opts = DemangleFull
	}
	return &Attributor{
		rustNames: UnionNames(sets),
		opts:      opts,
	}
}

// Classify attributes a language to every symbol and fills in the demangled
// name, producing a new slice in the same order.
func (a *Attributor) Classify(syms []CanonicalSymbol) []ClassifiedSymbol {
	out := make([]ClassifiedSymbol, 0, len(syms))
	for _, s := range syms {
		lang, dem := a.attribute(s.Name)
		s.Demangled = dem
		out = append(out, ClassifiedSymbol{CanonicalSymbol: s, Lang: lang})
	}
	return out
}

// attribute runs the ordered rule chain for one name and returns the
// language together with the name's demangled form.
func (a *Attributor) attribute(name string) (Language, string) {
	if name == "" || synthetic(name) {
		return LangUnknown, name
	}

	if _, ok := a.rustNames[name]; ok {
		// Filter demangles when it can and passes the name through when
		// it cannot, which covers both mangled and extern "C" Rust names.
		return LangRust, demangle.Filter(name, a.opts...)
	}

	if dem, err := demangle.ToString(name, a.opts...); err == nil && cppShaped(dem) {
		return LangCpp, dem
	}

	return LangC, name
}

// synthetic reports whether a name is a compiler- or assembler-generated
// artifact with no identifiable source: ARM mapping symbols ($t, $d, $a)
// and local assembler labels (.L*).
func synthetic(name string) bool {
	if strings.HasPrefix(name, ".L") {
		return true
	}
	if len(name) >= 2 && name[0] == '$' {
		switch name[1] {
		case 'a', 'd', 't', 'x':
			return true
		}
	}
	return false
}

// cppShaped reports whether a demangled name exhibits C++ structure:
// namespace or class scoping, template parameters, operator overloads, or a
// parameter list.
func cppShaped(dem string) bool {
	return strings.Contains(dem, "::") ||
		strings.Contains(dem, "<") ||
		strings.Contains(dem, "(") ||
		strings.HasPrefix(dem, "operator")
}
