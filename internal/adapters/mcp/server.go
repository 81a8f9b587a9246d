// Package mcpadapter exposes the portfolio engine as MCP tools so assistants
// can classify and describe documents without the HTTP API.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

const (
	ToolClassify  = "classify_documents"
	ToolDescribe  = "describe_document"
	ToolSummarize = "summarize_portfolio"

	maxNames = 100
)

type Tools struct {
	analyzer ports.DocumentAnalyzer
}

func NewTools(analyzer ports.DocumentAnalyzer) *Tools {
	return &Tools{analyzer: analyzer}
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(analyzer ports.DocumentAnalyzer, version string) *server.MCPServer {
	s := server.NewMCPServer("portfolio-builder", version, server.WithToolCapabilities(false))
	tools := NewTools(analyzer)

	s.AddTool(mcp.NewTool(ToolClassify,
		mcp.WithDescription("Assign a portfolio category to each document file name, keeping input order."),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Document file names, e.g. диплом_математика.pdf"),
			mcp.WithStringItems(),
		),
	), tools.Classify)

	s.AddTool(mcp.NewTool(ToolDescribe,
		mcp.WithDescription("Generate a one-sentence Russian description for a document file name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Document file name"),
		),
	), tools.Describe)

	s.AddTool(mcp.NewTool(ToolSummarize,
		mcp.WithDescription("Write the \"about me\" paragraph for a student from their document file names."),
		mcp.WithString("student_name",
			mcp.Description("Student display name; a default is used when empty"),
		),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Document file names"),
			mcp.WithStringItems(),
		),
	), tools.Summarize)

	return s
}

type classifiedName struct {
	Name                string          `json:"name"`
	Category            domain.Category `json:"category"`
	CategoryDescription string          `json:"categoryDescription"`
}

func (t *Tools) Classify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := requireNames(request, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	docs := t.analyzer.ClassifyNames(names)
	out := make([]classifiedName, 0, len(docs))
	for _, doc := range docs {
		out = append(out, classifiedName{
			Name:                doc.Name,
			Category:            doc.Category,
			CategoryDescription: doc.CategoryDescription,
		})
	}
	return jsonResult(map[string]any{"documents": out})
}

func (t *Tools) Describe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(t.analyzer.Describe(name)), nil
}

func (t *Tools) Summarize(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := requireNames(request, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	student := strings.TrimSpace(request.GetString("student_name", ""))
	docs := t.analyzer.ClassifyNames(names)
	return mcp.NewToolResultText(t.analyzer.Summarize(docs, student)), nil
}

func requireNames(request mcp.CallToolRequest, nonEmpty bool) ([]string, error) {
	names, err := request.RequireStringSlice("names")
	if err != nil {
		return nil, err
	}
	if nonEmpty && len(names) == 0 {
		return nil, fmt.Errorf("names must not be empty")
	}
	if len(names) > maxNames {
		return nil, fmt.Errorf("at most %d names are accepted, got %d", maxNames, len(names))
	}
	return names, nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
