package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/logging"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The registered tools are introspected, so the output always matches the
tool definitions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string, stdout io.Writer) error {
	tools, err := listAllTools()
	if err != nil {
		return err
	}
	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}
	_, err = io.WriteString(stdout, markdown)
	return err
}

// listAllTools registers every tool, write tools included, against a client
// that is never called and returns their definitions.
func listAllTools() ([]mcp.Tool, error) {
	client, err := todoist.NewClient(todoist.Config{Token: "generate-docs", Logger: logging.Discard()})
	if err != nil {
		return nil, fmt.Errorf("failed to create Todoist client: %w", err)
	}
	serverContext, err := server.NewServerContext(context.Background(), client)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("todoistguard", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAllTools(mcpSrv, serverContext, false); err != nil {
		return nil, err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return tools, nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running todoistguard as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	// Group tools by category
	toolsByCategory := groupToolsByCategory(tools)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Verification\n\n")
	sb.WriteString("Tools that target an existing entity take its ID together with its current name ")
	sb.WriteString("(or, for comments, the first 50 characters of the content). ")
	sb.WriteString("The call is rejected without side effects when the name does not match.\n\n")

	// Generate documentation for each category
	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

// toolCategories maps the entity nouns of tool names to their section.
var toolCategories = map[string]string{
	"task":          "Task Tools",
	"tasks":         "Task Tools",
	"project":       "Project Tools",
	"projects":      "Project Tools",
	"collaborators": "Project Tools",
	"section":       "Section Tools",
	"sections":      "Section Tools",
	"comment":       "Comment Tools",
	"comments":      "Comment Tools",
	"label":         "Label Tools",
}

// getCategoryFromToolName uses the last entity noun of a hyphenated tool
// name, so get-task-comments belongs to the comment tools.
func getCategoryFromToolName(name string) string {
	parts := strings.Split(name, "-")
	for i := len(parts) - 1; i >= 0; i-- {
		if category, ok := toolCategories[parts[i]]; ok {
			return category
		}
	}
	return "Other"
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if len(tool.InputSchema.Properties) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	propNames := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			continue
		}

		requiredStr := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requiredStr = "required"
		}
		propType := getPropertyType(propMap)

		fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, propType, requiredStr)
		if desc, ok := propMap["description"].(string); ok {
			sb.WriteString(desc)
		} else {
			fmt.Fprintf(&sb, "%s parameter", propType)
		}
		if values := enumValues(propMap); len(values) > 0 {
			fmt.Fprintf(&sb, " One of: `%s`.", strings.Join(values, "`, `"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

// enumValues returns the allowed values of a string property, if listed.
func enumValues(prop map[string]any) []string {
	switch values := prop["enum"].(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, fmt.Sprint(v))
		}
		return out
	default:
		return nil
	}
}
