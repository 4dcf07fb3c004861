package canvasdoc

import (
	"reflect"
	"strings"
	"testing"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/model"
)

func sampleDocument() *model.Document {
	return &model.Document{
		Nodes: []model.Node{
			{
				ID:       "n1",
				Kind:     model.KindParameter,
				Name:     "Slider",
				Category: "Params",
				Flags:    model.Flags{Enabled: true},
				Position: model.Position{X: 10, Y: 20},
				Outputs: []model.ParameterSlot{
					{Name: "Value", TypeHint: "number", Access: model.AccessItem},
				},
			},
			{
				ID:          "n2",
				Kind:        model.KindComponent,
				Name:        "Add",
				Category:    "Maths",
				Subcategory: "Operators",
				Flags:       model.Flags{Enabled: true, PreviewCapable: true},
				Position:    model.Position{X: 120, Y: 20},
				Inputs: []model.ParameterSlot{
					{Name: "A", Access: model.AccessItem, Mapping: model.MappingNone},
					{Name: "B", Access: model.AccessItem, Required: true},
				},
				Outputs: []model.ParameterSlot{{Name: "Result"}},
			},
			{
				ID:       "n3",
				Kind:     model.KindScript,
				Name:     "Transform",
				Flags:    model.Flags{Enabled: true},
				Position: model.Position{X: 240, Y: 20},
				Script:   &model.Script{Language: LangPython, Source: "def run(x):\n    return x"},
			},
		},
		Connections: []model.Connection{
			{SourceID: "n1", SourceSlot: 0, TargetID: "n2", TargetSlot: 0},
			{SourceID: "n2", SourceSlot: 0, TargetID: "n3", TargetSlot: 0},
		},
		Groups: []model.Group{
			{Name: "stage-1", Color: "#ffcc00", Members: []string{"n1", "n2"}},
		},
		Metadata: map[string]any{"title": "sample"},
		Values:   map[string][]string{"n2": {"42"}},
	}
}

func TestSerialize_DefaultsOmitOptionalSections(t *testing.T) {
	text, proj, err := Serialize(sampleDocument(), Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	for _, section := range []string{"\"connections\"", "\"groups\"", "\"metadata\"", "\"values\"", "\"selected\""} {
		if strings.Contains(text, section) {
			t.Errorf("default options must omit %s", section)
		}
	}
	wantNames := []string{"Slider", "Add", "Transform"}
	if !reflect.DeepEqual(proj.Names, wantNames) {
		t.Errorf("projection names = %v, want %v", proj.Names, wantNames)
	}
	wantIDs := []string{"n1", "n2", "n3"}
	if !reflect.DeepEqual(proj.IDs, wantIDs) {
		t.Errorf("projection ids = %v, want %v", proj.IDs, wantIDs)
	}
}

func TestSerialize_ProjectionNamesDeduplicated(t *testing.T) {
	doc := &model.Document{Nodes: []model.Node{
		{ID: "a", Kind: model.KindComponent, Name: "Add"},
		{ID: "b", Kind: model.KindComponent, Name: "Add"},
	}}
	_, proj, err := Serialize(doc, Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(proj.Names) != 1 || proj.Names[0] != "Add" {
		t.Errorf("names = %v, want deduplicated [Add]", proj.Names)
	}
	if len(proj.IDs) != 2 {
		t.Errorf("ids = %v, want both ids", proj.IDs)
	}
}

func TestRoundTrip(t *testing.T) {
	opts := Options{Connections: true, Groups: true, Values: true, Metadata: true, SelectionState: true}
	src := sampleDocument()
	src.Nodes[1].Flags.Selected = true

	text, _, err := Serialize(src, opts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(text)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if !reflect.DeepEqual(got.Nodes, src.Nodes) {
		t.Errorf("nodes do not round-trip:\n got %+v\nwant %+v", got.Nodes, src.Nodes)
	}
	if !reflect.DeepEqual(got.Connections, src.Connections) {
		t.Errorf("connections do not round-trip: got %+v", got.Connections)
	}
	if !reflect.DeepEqual(got.Groups, src.Groups) {
		t.Errorf("groups do not round-trip: got %+v", got.Groups)
	}
	if !reflect.DeepEqual(got.Values, src.Values) {
		t.Errorf("values do not round-trip: got %+v", got.Values)
	}
	if got.Metadata["title"] != "sample" {
		t.Errorf("metadata does not round-trip: got %+v", got.Metadata)
	}
}

func TestRoundTrip_GenericTypeHint(t *testing.T) {
	src := &model.Document{Nodes: []model.Node{{
		ID:   "a",
		Kind: model.KindComponent,
		Name: "Pass",
		Inputs: []model.ParameterSlot{
			{Name: "In"}, // no hint, serialized as the generic marker
			{Name: "Typed", TypeHint: "curve"},
		},
	}}}

	text, _, err := Serialize(src, Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(text, model.GenericTypeHint) {
		t.Fatal("hint-less slot should carry the generic marker")
	}

	got, err := Deserialize(text)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Nodes[0].Inputs[0].TypeHint != "" {
		t.Errorf("generic marker should decode to empty hint, got %q", got.Nodes[0].Inputs[0].TypeHint)
	}
	if got.Nodes[0].Inputs[1].TypeHint != "curve" {
		t.Errorf("specific hint lost: got %q", got.Nodes[0].Inputs[1].TypeHint)
	}
}

func TestSerialize_ScriptNodeWithoutPayload(t *testing.T) {
	doc := &model.Document{Nodes: []model.Node{{ID: "s", Kind: model.KindScript, Name: "Broken"}}}
	_, _, err := Serialize(doc, Options{})
	if apperr.KindOf(err) != apperr.KindSerialization {
		t.Fatalf("err = %v, want serialization error", err)
	}
}

func TestDeserialize_ErrorsNameTheField(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		field string
	}{
		{
			name:  "missing components",
			text:  `{}`,
			field: "components",
		},
		{
			name: "duplicate id",
			text: `{"components":[
				{"id":"a","name":"X","kind":"component"},
				{"id":"a","name":"Y","kind":"component"}]}`,
			field: "components[1].id",
		},
		{
			name: "unknown connection endpoint",
			text: `{"components":[{"id":"a","name":"X","kind":"component"}],
				"connections":[{"sourceId":"a","targetId":"ghost"}]}`,
			field: "connections[0].targetId",
		},
		{
			name: "unknown group member",
			text: `{"components":[{"id":"a","name":"X","kind":"component"}],
				"groups":[{"members":["ghost"]}]}`,
			field: "groups[0].members",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deserialize(tc.text)
			if apperr.KindOf(err) != apperr.KindSerialization {
				t.Fatalf("err = %v, want serialization error", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q does not name field %q", err, tc.field)
			}
		})
	}
}

func TestDeserialize_ScriptExtensionRules(t *testing.T) {
	cases := []struct {
		name string
		text string
		ok   bool
	}{
		{
			name: "script with one block",
			text: `{"components":[{"id":"s","name":"S","kind":"script",
				"componentState":{"extensions":{"python":{"source":"pass"}}}}]}`,
			ok: true,
		},
		{
			name: "script without block",
			text: `{"components":[{"id":"s","name":"S","kind":"script"}]}`,
		},
		{
			name: "script with two blocks",
			text: `{"components":[{"id":"s","name":"S","kind":"script",
				"componentState":{"extensions":{"python":{"source":"a"},"vb":{"source":"b"}}}}]}`,
		},
		{
			name: "non-script with block",
			text: `{"components":[{"id":"c","name":"C","kind":"component",
				"componentState":{"extensions":{"python":{"source":"a"}}}}]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Deserialize(tc.text)
			if tc.ok {
				if err != nil {
					t.Fatalf("Deserialize: %v", err)
				}
				if doc.Nodes[0].Script == nil || doc.Nodes[0].Script.Language != LangPython {
					t.Fatalf("script payload not decoded: %+v", doc.Nodes[0].Script)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestRegistry_ClosedLanguageSet(t *testing.T) {
	for _, lang := range []string{LangPython, LangCSharp, LangVB} {
		kind, err := BaseKind(lang)
		if err != nil || kind != model.KindScript {
			t.Errorf("BaseKind(%q) = %v, %v", lang, kind, err)
		}
	}
	if _, err := BaseKind("fortran"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("unknown language should be a validation error, got %v", err)
	}
}

func TestRegistry_LanguageBlockShapes(t *testing.T) {
	cases := []struct {
		lang string
		raw  string
	}{
		{LangPython, `{"source":"pass","packages":["numpy"],"runtime":"cpython3"}`},
		{LangCSharp, `{"source":"return A;","references":["RhinoCommon.dll"],"usings":["System"]}`},
		{LangVB, `{"source":"Return A","imports":["System.Linq"]}`},
	}
	for _, tc := range cases {
		script, err := unmarshalExtension(tc.lang, []byte(tc.raw))
		if err != nil {
			t.Errorf("unmarshalExtension(%s): %v", tc.lang, err)
			continue
		}
		if script.Language != tc.lang || script.Source == "" {
			t.Errorf("decoded script = %+v", script)
		}
	}
}
