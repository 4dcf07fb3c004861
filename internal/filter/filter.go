// Package filter implements the multi-facet node filter. Each facet
// (attribute, structural type, category) is an independent token list; a node
// must pass all facets to be selected.
package filter

import (
	"log/slog"
	"strings"

	"github.com/halvard/skein/internal/model"
)

// facetFilter holds the parsed include and exclude keywords of one facet.
type facetFilter struct {
	includes []string
	excludes []string
}

// matches reports whether the facet passes, given a per-keyword matcher.
// An empty include list means "match everything"; exclude always wins.
func (f facetFilter) matches(match func(keyword string) bool) bool {
	for _, kw := range f.excludes {
		if match(kw) {
			return false
		}
	}
	if len(f.includes) == 0 {
		return true
	}
	for _, kw := range f.includes {
		if match(kw) {
			return true
		}
	}
	return false
}

// Filter evaluates a node against all three facets.
type Filter struct {
	attribute  facetFilter
	structural facetFilter
	category   facetFilter
}

// New parses the raw token arrays for the three facets. Tokens are
// case-insensitive and synonym-normalized; unrecognized attribute or
// structural keywords are ignored with a logged warning, never rejected.
func New(attribute, structural, category []string) *Filter {
	return &Filter{
		attribute:  parseFacet(attribute, "attribute", attributeKeywords),
		structural: parseFacet(structural, "structural", structuralKeywords),
		category:   parseFacet(category, "category", nil),
	}
}

// parseFacet splits tokens into include/exclude keywords. known is the set of
// canonical keywords for the facet; nil means free-form (category substrings).
func parseFacet(tokens []string, facet string, known map[string]bool) facetFilter {
	var f facetFilter
	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		exclude := false
		switch tok[0] {
		case '+':
			tok = tok[1:]
		case '-':
			exclude = true
			tok = tok[1:]
		}
		// Category tokens are free-form substrings; only keyword facets go
		// through synonym normalization.
		kw := strings.ToLower(tok)
		if known != nil {
			kw = normalize(tok)
		}
		if kw == "" {
			continue
		}
		if known != nil && !known[kw] {
			slog.Warn("filter: ignoring unknown token",
				slog.String("facet", facet),
				slog.String("token", raw))
			continue
		}
		if exclude {
			f.excludes = append(f.excludes, kw)
		} else {
			f.includes = append(f.includes, kw)
		}
	}
	return f
}

// Match reports whether the node passes all three facets. Structural
// predicates are computed from the current connection topology, not from the
// node's static kind alone.
func (f *Filter) Match(n model.Node, topo *model.Topology) bool {
	return f.attribute.matches(func(kw string) bool { return matchAttribute(kw, n) }) &&
		f.structural.matches(func(kw string) bool { return matchStructural(kw, n, topo) }) &&
		f.category.matches(func(kw string) bool { return matchCategory(kw, n) })
}

func matchAttribute(kw string, n model.Node) bool {
	switch kw {
	case kwSelected:
		return n.Flags.Selected
	case kwUnselected:
		return !n.Flags.Selected
	case kwEnabled:
		return n.Flags.Enabled
	case kwDisabled:
		return !n.Flags.Enabled
	case kwError:
		return n.Flags.HasError
	case kwWarning:
		return n.Flags.HasWarning
	case kwRemark:
		return n.Flags.HasRemark
	case kwPreviewCapable:
		return n.Flags.PreviewCapable
	case kwNotPreviewCapable:
		return !n.Flags.PreviewCapable
	case kwPreviewOn:
		return n.Flags.PreviewOn
	case kwPreviewOff:
		return !n.Flags.PreviewOn
	}
	return false
}

func matchStructural(kw string, n model.Node, topo *model.Topology) bool {
	in := topo.InDegree(n.ID)
	out := topo.OutDegree(n.ID)
	switch kw {
	case kwStart:
		return in == 0 && out > 0
	case kwEnd:
		return out == 0 && in > 0
	case kwMiddle:
		return in > 0 && out > 0
	case kwIsolated:
		return in == 0 && out == 0
	case kwParameter:
		return n.Kind == model.KindParameter
	case kwComponent:
		// Script nodes are components structurally.
		return n.Kind == model.KindComponent || n.Kind == model.KindScript
	}
	return false
}

func matchCategory(kw string, n model.Node) bool {
	return strings.Contains(strings.ToLower(n.Category), kw) ||
		strings.Contains(strings.ToLower(n.Subcategory), kw)
}
