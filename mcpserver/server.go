// Package mcpserver exposes the memory, note and list operations as MCP
// (Model Context Protocol) tools over stdio, so external agents can drive
// the same state the chat assistant does.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"loqui/list"
	"loqui/storage"
)

// Server wraps the MCP server with the loqui tool set.
type Server struct {
	mcp    *server.MCPServer
	memory *storage.MemoryStore
	lists  *storage.ListStore
	engine *list.Engine
}

// New creates an MCP server with all tools registered.
func New(memory *storage.MemoryStore, lists *storage.ListStore, engine *list.Engine) *Server {
	s := &Server{memory: memory, lists: lists, engine: engine}

	s.mcp = server.NewMCPServer(
		"Loqui",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("add_to_memory",
		mcp.WithDescription("Append a fact to the assistant's long term memory."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to remember")),
	), s.addToMemory)

	s.mcp.AddTool(mcp.NewTool("overwrite_memory",
		mcp.WithDescription("Replace the entire long term memory with new content."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Replacement memory text")),
	), s.overwriteMemory)

	s.mcp.AddTool(mcp.NewTool("clear_memory",
		mcp.WithDescription("Erase the long term memory completely."),
	), s.clearMemory)

	s.mcp.AddTool(mcp.NewTool("add_to_note",
		mcp.WithDescription("Append a paragraph to the shared working note."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append to the note")),
	), s.addToNote)

	s.mcp.AddTool(mcp.NewTool("create_list",
		mcp.WithDescription("Create a new nested list with the given title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the new list")),
	), s.createList)

	s.mcp.AddTool(mcp.NewTool("add_to_list",
		mcp.WithDescription("Append one or more items to a list. Without a path "+
			"items are appended at the top level; with a path they become children "+
			"of the addressed item."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Id of the target list")),
		mcp.WithString("path", mcp.Description("Optional slash-separated index path, e.g. 0/2")),
		mcp.WithString("items", mcp.Required(), mcp.Description("Items to add, one per line")),
	), s.addToList)

	s.mcp.AddTool(mcp.NewTool("modify_list_item",
		mcp.WithDescription("Replace the content of one list item addressed by index path."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Id of the target list")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Slash-separated index path, e.g. 0/2")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content for the item")),
	), s.modifyListItem)

	s.mcp.AddTool(mcp.NewTool("read_list",
		mcp.WithDescription("Read a full list document as JSON."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Id of the list to read")),
	), s.readList)

	s.mcp.AddTool(mcp.NewTool("list_lists",
		mcp.WithDescription("List all lists with their ids and titles, most recently updated first."),
	), s.listLists)

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

func (s *Server) addToMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.memory.AppendMemory(content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("remembered"), nil
}

func (s *Server) overwriteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.memory.OverwriteMemory(content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("memory replaced"), nil
}

func (s *Server) clearMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.memory.ClearMemory(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("memory cleared"), nil
}

func (s *Server) addToNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.memory.AppendNote(content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("note updated"), nil
}

func (s *Server) createList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.engine.CreateDocument(title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(`created list ` + doc.ID), nil
}

func (s *Server) addToList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("list_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemsArg, err := req.RequireString("items")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var items []string
	for _, line := range strings.Split(itemsArg, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return mcp.NewToolResultError("no items given"), nil
	}

	target := list.Path{}
	if pathArg, err := req.RequireString("path"); err == nil && pathArg != "" {
		target, err = parseSlashPath(pathArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	doc, err := s.engine.Load(listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.engine.AppendChildren(doc, target, items...); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("added"), nil
}

func (s *Server) modifyListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("list_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pathArg, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target, err := parseSlashPath(pathArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.engine.Load(listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.engine.SetContent(doc, target, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("updated"), nil
}

func (s *Server) readList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("list_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.engine.Load(listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listLists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := s.lists.Index()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(index, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func parseSlashPath(raw string) (list.Path, error) {
	return list.ParsePath(strings.Split(raw, "/"))
}
