package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/slaymom/internal/content"
	"github.com/kalambet/slaymom/internal/profile"
)

// MCPContent is the static content the MCP layer reads. Implemented by
// content.Library.
type MCPContent interface {
	RandomGeneral() (string, bool)
	RandomComfort() (string, bool)
	Affirmations() content.Affirmations
	Resources() content.Resources
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Profiles *profile.Manager
	Content  MCPContent
	Version  string
}

// NewMCPServer creates an MCP server exposing the bot's content and
// read-only profile lookups.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"slaymom",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("slaymom: supportive community bot. Draw affirmations and comfort messages, browse LGBTQIA+ resources, inspect member profiles."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("affirmation",
			mcp.WithDescription("Return one random general affirmation."),
		),
		mcpAffirmation(deps),
	)

	s.AddTool(
		mcp.NewTool("comfort",
			mcp.WithDescription("Return one random comfort message for someone who is struggling."),
		),
		mcpComfort(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return a member's stored profile (pronouns, triggers, birthday, milestones, preferences) as JSON."),
			mcp.WithString("user_id", mcp.Description("Platform user ID"), mcp.Required()),
		),
		mcpGetProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("list_resources",
			mcp.WithDescription("List LGBTQIA+ resources, optionally limited to one category."),
			mcp.WithString("category", mcp.Description("Category name, e.g. support")),
		),
		mcpListResources(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"content://affirmations",
			"Affirmation Pools",
			mcp.WithResourceDescription("The general and comfort affirmation pools as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceAffirmations(deps),
	)

	return s
}

func mcpAffirmation(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := deps.Content.RandomGeneral()
		if !ok {
			return mcpError("no affirmations available"), nil
		}
		return mcpText(text), nil
	}
}

func mcpComfort(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := deps.Content.RandomComfort()
		if !ok {
			return mcpError("no comfort messages available"), nil
		}
		return mcpText(text), nil
	}
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}

		p, found, err := deps.Profiles.Lookup(userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}
		if !found {
			return mcpError(fmt.Sprintf("no profile for user %s", userID)), nil
		}

		b, err := json.Marshal(p)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListResources(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := deps.Content.Resources()

		if name := req.GetString("category", ""); name != "" {
			cat, ok := dir.Lookup(name)
			if !ok {
				return mcpError(fmt.Sprintf("unknown category %q; available: %v", name, dir.Names())), nil
			}
			dir = content.Resources{cat}
		}

		b, err := json.Marshal(dir)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal resources: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceAffirmations(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Content.Affirmations())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal affirmations: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
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
