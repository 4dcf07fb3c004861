// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the Skein canvas tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/canvasdoc"
	"github.com/halvard/skein/internal/engine"
)

// Server wraps the MCP server with Skein tools.
type Server struct {
	mcp   *server.MCPServer
	eng   *engine.Engine
	store archive.Store
}

// New creates a new MCP server with all Skein tools registered.
func New(eng *engine.Engine, store archive.Store) *Server {
	s := &Server{eng: eng, store: store}

	s.mcp = server.NewMCPServer(
		"Skein",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("query_canvas",
		mcp.WithDescription("Filter the live canvas nodes by attribute, structural type, and "+
			"category facets, expand the match by connection depth, and return the selection "+
			"as a structured document plus the distinct node names and ids. "+
			"Tokens take an optional +/- prefix; '-' excludes and always wins."),
		mcp.WithArray("attribute", mcp.Description("Attribute facet tokens (e.g. selected, disabled, error, preview-on)")),
		mcp.WithArray("structural", mcp.Description("Structural facet tokens (e.g. start-node, end-node, isolated, parameter)")),
		mcp.WithArray("category", mcp.Description("Category substring tokens, case-insensitive")),
		mcp.WithArray("ids", mcp.Description("Optional explicit node id restriction, applied before facet filtering")),
		mcp.WithNumber("depth", mcp.Description("Connection-depth expansion in hops (default 0)")),
		mcp.WithBoolean("trim", mcp.Description("Restrict connections to those inside the selection")),
		mcp.WithBoolean("connections", mcp.Description("Include connections in the document")),
		mcp.WithBoolean("groups", mcp.Description("Include groups in the document")),
		mcp.WithBoolean("values", mcp.Description("Include captured runtime values")),
		mcp.WithBoolean("metadata", mcp.Description("Include the metadata block")),
		mcp.WithBoolean("selection_state", mcp.Description("Include per-node selection state")),
	), s.queryCanvas)

	s.mcp.AddTool(mcp.NewTool("place_document",
		mcp.WithDescription("Place a structured canvas document onto the live canvas as one "+
			"undo-recorded batch. Declared ids that already exist live are updated in place; "+
			"unknown ids become new nodes. Returns the declared-to-live id mapping; chain "+
			"follow-up calls on the returned live ids. Read the contract first via the "+
			"get_document_contract tool or the skein://document-format resource."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document JSON following the Skein canvas document contract")),
	), s.placeDocument)

	s.mcp.AddTool(mcp.NewTool("heal_script",
		mcp.WithDescription("Validate a script-node body against the static pattern rules "+
			"(banned geometry libraries, missing entrypoint, disallowed directives) and run "+
			"the bounded self-correction cycle. The last candidate is always returned, with "+
			"remaining issues surfaced as warnings."),
		mcp.WithString("language", mcp.Required(), mcp.Description("Script language: python, csharp, or vb")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Script source code")),
	), s.healScript)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Validate a canvas document and save it to the archive under a name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Archive name for the document")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document JSON to save")),
		mcp.WithString("notes", mcp.Description("Optional free-form notes stored with the document")),
	), s.saveDocument)

	s.mcp.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Load a previously archived canvas document by name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Archive name of the document")),
	), s.loadDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List archived canvas documents (name, node count, notes)."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through archived document names, notes, and node names."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the canonical Skein canvas document contract. "+
			"Call this before building documents for place_document or save_document."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("skein://document-format", "Canvas Document Contract",
			mcp.WithResourceDescription("Canonical structured-document format for canvas exchange."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) queryCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qr := engine.QueryRequest{
		Attribute:  req.GetStringSlice("attribute", nil),
		Structural: req.GetStringSlice("structural", nil),
		Category:   req.GetStringSlice("category", nil),
		IDs:        req.GetStringSlice("ids", nil),
		Depth:      req.GetInt("depth", 0),
		Trim:       req.GetBool("trim", false),
		Options: canvasdoc.Options{
			Connections:    req.GetBool("connections", false),
			Groups:         req.GetBool("groups", false),
			Values:         req.GetBool("values", false),
			Metadata:       req.GetBool("metadata", false),
			SelectionState: req.GetBool("selection_state", false),
		},
	}

	res, err := s.eng.Query(ctx, qr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) placeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.eng.Place(ctx, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) healScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, err := req.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, healErr := s.eng.HealScript(ctx, language, source)
	if healErr != nil && outcome == nil {
		return mcp.NewToolResultError(healErr.Error()), nil
	}
	out, _ := json.MarshalIndent(outcome, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := req.GetString("notes", "")

	row, err := archive.Import(s.store, name, notes, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (%d nodes)", row.Name, row.NodeCount)), nil
}

func (s *Server) loadDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, payload, err := s.store.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(payload), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, _, err := s.store.List(0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.store.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "skein://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
