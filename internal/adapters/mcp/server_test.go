package mcpadapter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func newTestTools() *Tools {
	return NewTools(portfolio.NewEngine(nil, portfolio.NewSeededRandom(3)))
}

func TestClassifyTool(t *testing.T) {
	tools := newTestTools()

	result, err := tools.Classify(context.Background(), callRequest(ToolClassify, map[string]any{
		"names": []any{"диплом_математика.pdf", "медаль_баскетбол.png", "scan.png"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		Documents []classifiedName `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	require.Len(t, payload.Documents, 3)
	require.Equal(t, "education", string(payload.Documents[0].Category))
	require.Equal(t, "sports", string(payload.Documents[1].Category))
	require.Equal(t, "other", string(payload.Documents[2].Category))
	require.Equal(t, "Разное", payload.Documents[2].CategoryDescription)
}

func TestClassifyToolRejectsMissingNames(t *testing.T) {
	tools := newTestTools()

	result, err := tools.Classify(context.Background(), callRequest(ToolClassify, map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	result, err = tools.Classify(context.Background(), callRequest(ToolClassify, map[string]any{"names": []any{}}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestDescribeTool(t *testing.T) {
	tools := newTestTools()

	result, err := tools.Describe(context.Background(), callRequest(ToolDescribe, map[string]any{"name": "Аттестат_2024.pdf"}))
	require.NoError(t, err)
	require.Equal(t, "Аттестат о среднем образовании с оценками", resultText(t, result))

	result, err = tools.Describe(context.Background(), callRequest(ToolDescribe, map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestSummarizeTool(t *testing.T) {
	tools := newTestTools()

	result, err := tools.Summarize(context.Background(), callRequest(ToolSummarize, map[string]any{
		"student_name": "Мария",
		"names":        []any{"медаль_баскетбол.png", "кубок_футбол.jpg"},
	}))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, result), "Мария. "))

	result, err = tools.Summarize(context.Background(), callRequest(ToolSummarize, map[string]any{"names": []any{}}))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, result), "Я. "))
}

func TestNewServerListsTools(t *testing.T) {
	s := NewServer(portfolio.NewEngine(nil, nil), "test")

	response := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(response)
	require.NoError(t, err)
	for _, name := range []string{ToolClassify, ToolDescribe, ToolSummarize} {
		require.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
