package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/linkorg/internal/models"
	"github.com/starford/linkorg/internal/noteservice"
	"github.com/starford/linkorg/internal/testutil"
)

var testNotes = map[string]string{
	"a.org":       "#+TITLE: A\n* Top\n[[https://a.example][Alpha]] (intro) -- after 2\n",
	"nested/b.md": "# Top\n[Beta](https://b.example) -- after\n",
}

func testServer(t *testing.T, withIndex bool) *Server {
	t.Helper()
	_, store := testutil.TestNotes(t, testNotes)
	svc := noteservice.NewService(store, nil, 1, nil)
	if withIndex {
		svc = noteservice.NewService(store, testutil.TestDB(t), 1, nil)
		if _, err := svc.Reindex(context.Background()); err != nil {
			t.Fatalf("Reindex: %v", err)
		}
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_config":
		result, err = srv.getConfig(ctx, req)
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "parse_file":
		result, err = srv.parseFile(ctx, req)
	case "search_links":
		result, err = srv.searchLinks(ctx, req)
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

func TestToolsRegistered(t *testing.T) {
	srv := testServer(t, false)
	resp := srv.MCPServer().HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"get_config", "list_files", "parse_file", "search_links"} {
		if !strings.Contains(string(out), `"name":"`+name+`"`) {
			t.Errorf("tool %q not listed in %s", name, out)
		}
	}
}

func TestGetConfig(t *testing.T) {
	srv := testServer(t, false)
	r := callTool(t, srv, "get_config", map[string]any{})
	var cfg noteservice.ConfigInfo
	if err := json.Unmarshal([]byte(resultText(r)), &cfg); err != nil || cfg.NotesDir == "" {
		t.Errorf("config = %q (%v)", resultText(r), err)
	}
}

func TestListFiles(t *testing.T) {
	srv := testServer(t, false)

	r := callTool(t, srv, "list_files", map[string]any{})
	if text := resultText(r); text != "a.org\nnested/b.md" {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_files", map[string]any{"dir": "nested"})
	if text := resultText(r); text != "nested/b.md" {
		t.Errorf("list nested = %q", text)
	}
}

func TestParseFile(t *testing.T) {
	srv := testServer(t, false)

	r := callTool(t, srv, "parse_file", map[string]any{"path": "a.org"})
	if r.IsError {
		t.Fatalf("parse_file error: %s", resultText(r))
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(resultText(r)), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Metadata.Title != "A" || len(doc.Headings) != 1 || doc.Headings[0].Links[0].Name != "Alpha" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestParseFileErrors(t *testing.T) {
	srv := testServer(t, false)
	for _, args := range []map[string]any{{"path": "nope.md"}, {"path": "x.txt"}, {}} {
		if r := callTool(t, srv, "parse_file", args); !r.IsError {
			t.Errorf("parse_file(%v) expected error", args)
		}
	}
}

func TestSearchLinks(t *testing.T) {
	srv := testServer(t, true)

	r := callTool(t, srv, "search_links", map[string]any{"query": "Beta", "limit": 5})
	if r.IsError {
		t.Fatalf("search_links error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "https://b.example") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestSearchLinksWithoutIndex(t *testing.T) {
	srv := testServer(t, false)
	r := callTool(t, srv, "search_links", map[string]any{"query": "Beta"})
	if !r.IsError || !strings.Contains(resultText(r), "index disabled") {
		t.Errorf("result = %+v", r)
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv := testServer(t, false)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != noteFormatURI || !strings.Contains(tc.Text, "-- after") {
		t.Errorf("resource = %+v", contents[0])
	}
}
