package filter

import "strings"

// Canonical attribute keywords.
const (
	kwSelected          = "selected"
	kwUnselected        = "unselected"
	kwEnabled           = "enabled"
	kwDisabled          = "disabled"
	kwError             = "error"
	kwWarning           = "warning"
	kwRemark            = "remark"
	kwPreviewCapable    = "previewcapable"
	kwNotPreviewCapable = "notpreviewcapable"
	kwPreviewOn         = "previewon"
	kwPreviewOff        = "previewoff"
)

// Canonical structural keywords.
const (
	kwStart     = "startnode"
	kwEnd       = "endnode"
	kwMiddle    = "middlenode"
	kwIsolated  = "isolatednode"
	kwParameter = "parameter"
	kwComponent = "component"
)

var attributeKeywords = map[string]bool{
	kwSelected: true, kwUnselected: true,
	kwEnabled: true, kwDisabled: true,
	kwError: true, kwWarning: true, kwRemark: true,
	kwPreviewCapable: true, kwNotPreviewCapable: true,
	kwPreviewOn: true, kwPreviewOff: true,
}

var structuralKeywords = map[string]bool{
	kwStart: true, kwEnd: true, kwMiddle: true, kwIsolated: true,
	kwParameter: true, kwComponent: true,
}

// synonyms maps normalized aliases to canonical keywords.
var synonyms = map[string]string{
	"deselected": kwUnselected,
	"active":     kwEnabled,
	"unlocked":   kwEnabled,
	"inactive":   kwDisabled,
	"locked":     kwDisabled,
	"errors":     kwError,
	"failed":     kwError,
	"warnings":   kwWarning,
	"remarks":    kwRemark,
	"info":       kwRemark,
	"visible":    kwPreviewOn,
	"shown":      kwPreviewOn,
	"hidden":     kwPreviewOff,
	"invisible":  kwPreviewOff,

	"start":    kwStart,
	"source":   kwStart,
	"input":    kwStart,
	"end":      kwEnd,
	"sink":     kwEnd,
	"output":   kwEnd,
	"middle":   kwMiddle,
	"internal": kwMiddle,
	"isolated": kwIsolated,
	"orphan":   kwIsolated,
	"floating": kwIsolated,
	"param":    kwParameter,
	"params":   kwParameter,
	"comp":     kwComponent,
}

// normalize lowercases a token, strips separator characters, and resolves
// synonyms to canonical keywords.
func normalize(tok string) string {
	kw := strings.ToLower(tok)
	kw = strings.NewReplacer("-", "", "_", "", " ", "").Replace(kw)
	if canonical, ok := synonyms[kw]; ok {
		return canonical
	}
	return kw
}
