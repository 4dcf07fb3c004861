package scriptheal

import (
	"fmt"
	"strings"

	"github.com/halvard/skein/internal/canvasdoc"
)

// Issue is one static-scan finding.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issue codes.
const (
	CodeBannedImport        = "banned_import"
	CodeMissingEntrypoint   = "missing_entrypoint"
	CodeDisallowedDirective = "disallowed_directive"
)

// bannedImports lists foreign geometry libraries per language. Scripts run
// against the host's own geometry kernel; pulling in an external one either
// fails to load or silently produces incompatible types.
var bannedImports = map[string][]string{
	canvasdoc.LangPython: {"bpy", "FreeCAD", "OCC", "cadquery"},
	canvasdoc.LangCSharp: {"UnityEngine", "Autodesk.AutoCAD"},
	canvasdoc.LangVB:     {"Autodesk.AutoCAD"},
}

// guidance is the per-language hint appended to correction prompts.
var guidance = map[string]string{
	canvasdoc.LangPython: "Use only the host's built-in geometry types. Do not import external geometry libraries or use shell/magic directives.",
	canvasdoc.LangCSharp: "Keep the script inside a RunScript method and reference only host assemblies; #r directives are not supported.",
	canvasdoc.LangVB:     "Keep the script inside a RunScript method and import only host assemblies; #r directives are not supported.",
}

// Scan runs the fixed static-pattern checks over a script body and returns
// every finding. A nil result means the script is clean.
func Scan(language, source string) []Issue {
	var issues []Issue

	for _, lib := range bannedImports[language] {
		if referencesLibrary(language, source, lib) {
			issues = append(issues, Issue{
				Code:    CodeBannedImport,
				Message: fmt.Sprintf("references banned geometry library %q", lib),
			})
		}
	}

	switch language {
	case canvasdoc.LangCSharp, canvasdoc.LangVB:
		// Compiled languages need the host entrypoint at top level.
		if !strings.Contains(source, "RunScript") {
			issues = append(issues, Issue{
				Code:    CodeMissingEntrypoint,
				Message: "script has no top-level RunScript method",
			})
		}
		if strings.Contains(source, "#r ") {
			issues = append(issues, Issue{
				Code:    CodeDisallowedDirective,
				Message: "assembly reference directives (#r) are not supported",
			})
		}
	case canvasdoc.LangPython:
		for _, line := range strings.Split(source, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "!") || strings.HasPrefix(trimmed, "%") {
				issues = append(issues, Issue{
					Code:    CodeDisallowedDirective,
					Message: fmt.Sprintf("shell or magic directive is not supported: %q", trimmed),
				})
				break
			}
		}
	}

	return issues
}

func referencesLibrary(language, source, lib string) bool {
	switch language {
	case canvasdoc.LangPython:
		return strings.Contains(source, "import "+lib) ||
			strings.Contains(source, "from "+lib)
	case canvasdoc.LangCSharp:
		return strings.Contains(source, "using "+lib)
	case canvasdoc.LangVB:
		return strings.Contains(source, "Imports "+lib)
	}
	return false
}
