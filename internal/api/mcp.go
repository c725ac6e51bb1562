package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/document"
)

// NewMCPServer creates an MCP server exposing résumé analysis and comparison tools.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"cv-compare",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("cv-compare extracts structured profiles from résumés and scores how similar two candidates are."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_resume",
			mcp.WithDescription("Split a résumé into sections and return the extracted candidate profile as JSON."),
			mcp.WithString("text", mcp.Description("Résumé plain text")),
			mcp.WithString("path", mcp.Description("Path to a PDF, DOCX or text résumé; used when text is empty")),
		),
		mcpAnalyzeResume(deps),
	)

	s.AddTool(
		mcp.NewTool("compare_resumes",
			mcp.WithDescription("Compare two résumés and return the composite score, per-field scores and a narrative report."),
			mcp.WithString("text_a", mcp.Description("First résumé plain text")),
			mcp.WithString("path_a", mcp.Description("Path to the first résumé; used when text_a is empty")),
			mcp.WithString("text_b", mcp.Description("Second résumé plain text")),
			mcp.WithString("path_b", mcp.Description("Path to the second résumé; used when text_b is empty")),
			mcp.WithBoolean("save", mcp.Description("Store the comparison in history")),
		),
		mcpCompareResumes(deps),
	)

	return s
}

// ServeStdio runs the MCP server over r and w until ctx is done.
func ServeStdio(ctx context.Context, s *server.MCPServer, r io.Reader, w io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, r, w)
}

func mcpAnalyzeResume(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := toolDocument(req, "text", "path")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		sections, profile := deps.Engine.Analyze(ctx, text)
		b, err := json.Marshal(AnalyzeResponse{Sections: sections, Profile: profile})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCompareResumes(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		textA, err := toolDocument(req, "text_a", "path_a")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		textB, err := toolDocument(req, "text_b", "path_b")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		save := req.GetBool("save", false)
		if save && deps.Store == nil {
			return mcpError("history storage is not configured"), nil
		}

		resp := CompareResponse{Comparison: deps.Engine.CompareTexts(ctx, textA, textB)}
		if save {
			rec, err := deps.Store.Save(ctx, req.GetString("path_a", ""), req.GetString("path_b", ""), resp.Comparison)
			if err != nil {
				deps.log().Error("saving comparison", zap.Error(err))
				return mcpError(fmt.Sprintf("failed to save comparison: %v", err)), nil
			}
			resp.ID = rec.ID
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal comparison: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// toolDocument reads inline text or, when empty, the file at the path argument.
func toolDocument(req mcp.CallToolRequest, textArg, pathArg string) (string, error) {
	if text := req.GetString(textArg, ""); text != "" {
		return text, nil
	}
	path := req.GetString(pathArg, "")
	if path == "" {
		return "", fmt.Errorf("one of %s or %s is required", textArg, pathArg)
	}
	return document.ReadFile(path)
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
