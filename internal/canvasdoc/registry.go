package canvasdoc

import (
	"encoding/json"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

// Script languages. The registry is closed: resolving an unknown language key
// is a validation error, never a silent fallback.
const (
	LangPython = "python"
	LangCSharp = "csharp"
	LangVB     = "vb"
)

// extension is the language-keyed block carried under componentState. Each
// language has its own block shape because the metadata differs materially
// between scripted and compiled languages.
type extension interface {
	language() string
	script() model.Script
}

// pythonExtension is the block shape for Python script nodes.
type pythonExtension struct {
	Source   string   `json:"source"`
	Packages []string `json:"packages,omitempty"`
	Runtime  string   `json:"runtime,omitempty"`
}

func (e pythonExtension) language() string { return LangPython }
func (e pythonExtension) script() model.Script {
	return model.Script{Language: LangPython, Source: e.Source}
}

// csharpExtension is the block shape for C# script nodes.
type csharpExtension struct {
	Source     string   `json:"source"`
	References []string `json:"references,omitempty"`
	Usings     []string `json:"usings,omitempty"`
}

func (e csharpExtension) language() string { return LangCSharp }
func (e csharpExtension) script() model.Script {
	return model.Script{Language: LangCSharp, Source: e.Source}
}

// vbExtension is the block shape for VB script nodes.
type vbExtension struct {
	Source  string   `json:"source"`
	Imports []string `json:"imports,omitempty"`
}

func (e vbExtension) language() string { return LangVB }
func (e vbExtension) script() model.Script {
	return model.Script{Language: LangVB, Source: e.Source}
}

// BaseKind resolves a language key to its canonical structural kind.
func BaseKind(language string) (model.Kind, error) {
	switch language {
	case LangPython, LangCSharp, LangVB:
		return model.KindScript, nil
	}
	return "", apperr.Validation("unsupported script language %q", language)
}

// marshalExtension builds the language-keyed extension block for a script.
func marshalExtension(s model.Script) (string, json.RawMessage, error) {
	var block extension
	switch s.Language {
	case LangPython:
		block = pythonExtension{Source: s.Source}
	case LangCSharp:
		block = csharpExtension{Source: s.Source}
	case LangVB:
		block = vbExtension{Source: s.Source}
	default:
		return "", nil, apperr.Validation("unsupported script language %q", s.Language)
	}
	raw, err := json.Marshal(block)
	if err != nil {
		return "", nil, apperr.Serialization("componentState.extensions", "encode %s block: %v", s.Language, err)
	}
	return block.language(), raw, nil
}

// unmarshalExtension decodes one language-keyed block back into a script.
func unmarshalExtension(language string, raw json.RawMessage) (model.Script, error) {
	var block extension
	switch language {
	case LangPython:
		block = &pythonExtension{}
	case LangCSharp:
		block = &csharpExtension{}
	case LangVB:
		block = &vbExtension{}
	default:
		return model.Script{}, apperr.Validation("unsupported script language %q", language)
	}
	if err := json.Unmarshal(raw, block); err != nil {
		return model.Script{}, apperr.Serialization("componentState.extensions."+language, "malformed block: %v", err)
	}
	switch b := block.(type) {
	case *pythonExtension:
		return b.script(), nil
	case *csharpExtension:
		return b.script(), nil
	case *vbExtension:
		return b.script(), nil
	}
	return model.Script{}, apperr.Validation("unsupported script language %q", language)
}
