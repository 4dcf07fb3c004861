package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvard/skein/internal/engine"
	"github.com/halvard/skein/internal/model"
	"github.com/halvard/skein/internal/scriptheal"
	"github.com/halvard/skein/internal/testutil"
)

func testServer(t *testing.T, nodes []model.Node, conns []model.Connection) *Server {
	t.Helper()
	_, disp := testutil.TestCanvas(t, nodes, conns)
	eng := engine.New(disp, scriptheal.NewLoop(nil, 0))
	store := testutil.TestArchive(t)
	return New(eng, store)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call-tool test helper, so the handler functions
	// are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "query_canvas":
		result, err = srv.queryCanvas(ctx, req)
	case "place_document":
		result, err = srv.placeDocument(ctx, req)
	case "heal_script":
		result, err = srv.healScript(ctx, req)
	case "save_document":
		result, err = srv.saveDocument(ctx, req)
	case "load_document":
		result, err = srv.loadDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const sampleDoc = `{"components":[
	{"id":"d1","name":"Slider","kind":"parameter"},
	{"id":"d2","name":"Add","kind":"component"}],
	"connections":[{"sourceId":"d1","targetId":"d2"}]}`

func TestQueryCanvas(t *testing.T) {
	nodes, conns := testutil.Chain("a", "b", "c")
	nodes[0].Flags.Selected = true
	srv := testServer(t, nodes, conns)

	r := callTool(t, srv, "query_canvas", map[string]interface{}{
		"attribute": []interface{}{"selected"},
		"depth":     float64(1),
	})
	if r.IsError {
		t.Fatalf("query failed: %s", resultText(r))
	}
	var res engine.QueryResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Matched != 1 || res.Expanded != 2 {
		t.Errorf("result = %+v, want 1 matched, 2 expanded", res)
	}
}

func TestPlaceDocument(t *testing.T) {
	srv := testServer(t, nil, nil)

	r := callTool(t, srv, "place_document", map[string]interface{}{"document": sampleDoc})
	if r.IsError {
		t.Fatalf("place failed: %s", resultText(r))
	}
	var res engine.PlaceResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Created) != 2 {
		t.Errorf("created = %v, want both nodes", res.Created)
	}
	if res.IDMap["d1"] == "d1" {
		t.Error("unknown declared id must be remapped")
	}
}

func TestPlaceDocumentInvalid(t *testing.T) {
	srv := testServer(t, nil, nil)
	r := callTool(t, srv, "place_document", map[string]interface{}{"document": "{"})
	if !r.IsError {
		t.Error("expected error for malformed document")
	}
}

func TestHealScript(t *testing.T) {
	srv := testServer(t, nil, nil)

	r := callTool(t, srv, "heal_script", map[string]interface{}{
		"language": "python",
		"source":   "import bpy",
	})
	if r.IsError {
		t.Fatalf("heal failed: %s", resultText(r))
	}
	var out scriptheal.Outcome
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.State != scriptheal.StateAcceptedWithWarnings {
		t.Errorf("state = %q, want accepted_with_warnings without a corrector", out.State)
	}

	r = callTool(t, srv, "heal_script", map[string]interface{}{
		"language": "fortran",
		"source":   "x",
	})
	if !r.IsError {
		t.Error("expected error for unsupported language")
	}
}

func TestSaveAndLoadDocument(t *testing.T) {
	srv := testServer(t, nil, nil)

	r := callTool(t, srv, "save_document", map[string]interface{}{
		"name":     "demo",
		"document": sampleDoc,
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "saved: demo") {
		t.Errorf("save result = %q", text)
	}

	r = callTool(t, srv, "load_document", map[string]interface{}{"name": "demo"})
	if resultText(r) != sampleDoc {
		t.Errorf("load result = %q", resultText(r))
	}

	r = callTool(t, srv, "load_document", map[string]interface{}{"name": "nope"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestListAndSearchDocuments(t *testing.T) {
	srv := testServer(t, nil, nil)
	_ = callTool(t, srv, "save_document", map[string]interface{}{
		"name":     "facade-study",
		"document": sampleDoc,
		"notes":    "parametric facade",
	})

	r := callTool(t, srv, "list_documents", map[string]interface{}{})
	if !strings.Contains(resultText(r), "facade-study") {
		t.Errorf("list = %q", resultText(r))
	}

	r = callTool(t, srv, "search_documents", map[string]interface{}{"query": "facade"})
	if !strings.Contains(resultText(r), "facade-study") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv := testServer(t, nil, nil)
	r := callTool(t, srv, "get_document_contract", map[string]interface{}{})
	text := resultText(r)
	for _, want := range []string{"components", "connections", "script"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract does not mention %q", want)
		}
	}
}
