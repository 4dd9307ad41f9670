package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("compose_landing_page",
		mcp.WithPromptDescription("Guide through building a landing page from catalog components"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product or business the page is for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tone",
			mcp.ArgumentDescription("Voice of the copy, e.g. playful or formal (optional)"),
		),
	), s.handleLandingPagePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	if product == "" {
		return nil, fmt.Errorf("product is required")
	}
	tone := req.Params.Arguments["tone"]
	if tone == "" {
		tone = "friendly and confident"
	}

	types := make([]string, 0, len(s.catalog.Types()))
	for _, t := range s.catalog.Types() {
		types = append(types, string(t))
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", product),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page for "%s". Write all copy in a %s tone. Follow these steps:

1. Use create_page with a short name for the page; it becomes the active page
2. Add a hero (add_component type=hero) with a headline, subtitle and call-to-action text for %s
3. Add an icons-section listing three benefits
4. Add a background-section, then nest a heading and a paragraph inside it (parentId = the section id)
5. Add a testimonial and a gallery
6. Finish with a divider and a button that repeats the call to action
7. Review the result with list_components and fix the order with move_component if needed
8. Call save_page when done

Available component types: %s. Use get_default_props to see which props a type accepts before setting them.`,
						product, tone, product, strings.Join(types, ", ")),
				},
			},
		},
	}, nil
}
