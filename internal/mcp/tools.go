package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listExamplesTool defines the list_examples MCP tool.
var listExamplesTool = mcp.NewTool("list_examples",
	mcp.WithDescription("List the gallery's example categories and the examples in each, with descriptions."),
	mcp.WithString("category",
		mcp.Description("Only list examples of this category"),
	),
)

// runExampleTool defines the run_example MCP tool.
var runExampleTool = mcp.NewTool("run_example",
	mcp.WithDescription("Run one gallery example against the platform and return its output. Signs in as a guest when there is no session."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category name, e.g. \"File System\""),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Example title, e.g. \"Write File\""),
	),
)
