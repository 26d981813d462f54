// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package mcp

import (
	"context"
	"fmt"
	"io"

	json "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/render"
	log "github.com/vine-io/vine/lib/logger"
)

const (
	ExtractTool   = "extract_bpmn_elements"
	SummarizeTool = "summarize_bpmn"
)

// Server exposes the extractor to MCP clients.
type Server struct {
	version   string
	docOpts   []flowview.DocumentOption
	mcpServer *server.MCPServer
}

func New(version string, opts ...flowview.DocumentOption) *Server {
	s := &Server{version: version, docOpts: opts}

	srv := server.NewMCPServer(
		"flowview",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("flowview reads BPMN 2.0 XML. Use extract_bpmn_elements for the ordered start event, task, gateway and end event list, and summarize_bpmn for a markdown overview."),
	)
	srv.AddTools(s.tools()...)
	s.mcpServer = srv
	return s
}

// Serve speaks MCP over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Infof("flowview mcp %s serving on stdio", s.version)
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: extractTool(), Handler: s.handleExtract},
		{Tool: summarizeTool(), Handler: s.handleSummarize},
	}
}

func extractTool() mcp.Tool {
	return mcp.NewTool(ExtractTool,
		mcp.WithDescription("Extract start events, tasks, gateways and end events from BPMN XML in document order"),
		mcp.WithString("xml", mcp.Required(), mcp.Description("BPMN 2.0 XML text")),
		mcp.WithString("namespace", mcp.Description("Element prefix to scan for (default: bpmn)")),
		mcp.WithString("query", mcp.Description("Optional jq expression applied to the result")),
	)
}

func summarizeTool() mcp.Tool {
	return mcp.NewTool(SummarizeTool,
		mcp.WithDescription("Summarize BPMN XML as markdown: processes, elements and counts"),
		mcp.WithString("xml", mcp.Required(), mcp.Description("BPMN 2.0 XML text")),
	)
}

// documentOptions returns the server's document options, with the extractor
// switched to the requested namespace when the call names one.
func (s *Server) documentOptions(req mcp.CallToolRequest) flowview.DocumentOptions {
	options := flowview.NewDocumentOptions(s.docOpts...)
	if ns := req.GetString("namespace", ""); ns != "" {
		options.Extractor = options.Extractor.With(bpmn.WithNamespace(ns))
		options.AutoNamespace = false
	}
	return options
}

func (s *Server) document(req mcp.CallToolRequest, source string) *flowview.Document {
	options := s.documentOptions(req)
	return flowview.NewDocument(source,
		flowview.WithName(options.Name),
		flowview.WithExtractor(options.Extractor),
		flowview.WithAutoNamespace(options.AutoNamespace),
	)
}

func (s *Server) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("xml")
	if err != nil {
		return mcp.NewToolResultError("xml is required"), nil
	}

	doc := s.document(req, source)
	log.Debugf("mcp extract: %d element(s)", doc.Elements.Len())

	if expr := req.GetString("query", ""); expr != "" {
		out, err := flowview.Query(ctx, doc, expr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		return marshalResult(out)
	}
	return marshalResult(doc.View())
}

func (s *Server) handleSummarize(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("xml")
	if err != nil {
		return mcp.NewToolResultError("xml is required"), nil
	}

	doc := s.document(req, source)
	return mcp.NewToolResultText(render.Markdown(doc.Page(nil))), nil
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
