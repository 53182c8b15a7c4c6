package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	toolGetConfig      = "get_config"
	toolGetContent     = "get_content"
	toolGetFontSizes   = "get_font_sizes"
	toolValidateConfig = "validate_config"
)

func getConfigTool() mcp.Tool {
	return mcp.NewTool(toolGetConfig,
		mcp.WithDescription("Returns the whole configuration record: content globs, "+
			"theme.extend.fontSize tokens, variants and plugins, in declared order."),
		mcp.WithString("format",
			mcp.Description("Output syntax. Defaults to json."),
			mcp.Enum("json", "js", "ts", "yaml"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getContentTool() mcp.Tool {
	return mcp.NewTool(toolGetContent,
		mcp.WithDescription("Returns the content glob patterns the class scanner reads, "+
			"in declared order. Patterns starting with ! exclude files."),
		mcp.WithBoolean("resolved",
			mcp.Description("Join relative-mode patterns to the config file's directory."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getFontSizesTool() mcp.Tool {
	return mcp.NewTool(toolGetFontSizes,
		mcp.WithDescription("Returns font-size tokens. By default only the tokens the "+
			"config adds under theme.extend.fontSize; with resolved=true the full scale "+
			"(built-in xs..9xl with extensions layered on top)."),
		mcp.WithBoolean("resolved",
			mcp.Description("Include the built-in scale."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func validateConfigTool() mcp.Tool {
	return mcp.NewTool(toolValidateConfig,
		mcp.WithDescription("Validates a configuration document passed inline without "+
			"touching disk. Returns valid=true or the list of problems with positions."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full document text."),
		),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Document syntax."),
			mcp.Enum("js", "ts", "json", "yaml"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
