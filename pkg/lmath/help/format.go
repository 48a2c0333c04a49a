package help

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkParser "github.com/yuin/goldmark/parser"
)

// FormatText formats a TopicResult for terminal output
func FormatText(result *TopicResult) string {
	var sb strings.Builder

	switch result.Kind {
	case "module":
		formatModuleText(&sb, result)
	case "module-list":
		sb.WriteString("Modules:\n")
		for _, name := range result.Modules {
			fmt.Fprintf(&sb, "  %s\n", name)
		}
	case "function":
		fmt.Fprintf(&sb, "%s(%s)\n\n%s\n\nArity: %s\n", result.Name, result.Params, result.Description, result.Arity)
	case "constant":
		fmt.Fprintf(&sb, "%s\n\n%s\n", result.Name, result.Description)
	default:
		fmt.Fprintf(&sb, "Unknown result kind: %s\n", result.Kind)
	}

	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// FormatMarkdown formats a TopicResult as GitHub-flavoured Markdown.
func FormatMarkdown(result *TopicResult) string {
	var sb strings.Builder

	switch result.Kind {
	case "module":
		fmt.Fprintf(&sb, "# %s\n\n", result.Name)
		if result.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", result.Description)
		}
		sb.WriteString("| Name | Kind | Description |\n")
		sb.WriteString("| --- | --- | --- |\n")
		for _, e := range result.Exports {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", signature(result.Name, e), e.Kind, escapeCell(e.Description))
		}
	case "module-list":
		sb.WriteString("# Modules\n\n")
		for _, name := range result.Modules {
			fmt.Fprintf(&sb, "- `%s`\n", name)
		}
	case "function":
		fmt.Fprintf(&sb, "# `%s(%s)`\n\n%s\n\nArity: %s\n", result.Name, result.Params, result.Description, result.Arity)
	default:
		fmt.Fprintf(&sb, "# `%s`\n\n%s\n", result.Name, result.Description)
	}

	return sb.String()
}

// FormatHTML renders the Markdown form of a TopicResult to an HTML fragment.
func FormatHTML(result *TopicResult) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(goldmarkParser.WithAutoHeadingID()),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(result)), &buf); err != nil {
		return "", fmt.Errorf("rendering help for %s: %w", result.Name, err)
	}
	return buf.String(), nil
}

// formatModuleText formats module help output
func formatModuleText(sb *strings.Builder, result *TopicResult) {
	fmt.Fprintf(sb, "Module: %s\n", result.Name)
	if result.Description != "" {
		fmt.Fprintf(sb, "\n%s\n", result.Description)
	}

	if len(result.Exports) == 0 {
		sb.WriteString("\n(no documented exports)\n")
		return
	}

	var constants, functions []ExportEntry
	maxLen := 0
	for _, e := range result.Exports {
		if e.Kind == "constant" {
			constants = append(constants, e)
		} else {
			functions = append(functions, e)
		}
		maxLen = max(maxLen, len(display(e)))
	}

	sb.WriteString("\nExports:\n")
	writeGroup(sb, "Constants", constants, maxLen)
	if len(constants) > 0 && len(functions) > 0 {
		sb.WriteString("\n")
	}
	writeGroup(sb, "Functions", functions, maxLen)
}

func writeGroup(sb *strings.Builder, title string, entries []ExportEntry, width int) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s:\n", title)
	for _, e := range entries {
		d := display(e)
		if e.Description == "" {
			fmt.Fprintf(sb, "    %s\n", d)
			continue
		}
		fmt.Fprintf(sb, "    %s%s%s\n", d, strings.Repeat(" ", width-len(d)+2), e.Description)
	}
}

func display(e ExportEntry) string {
	if e.Kind == "constant" {
		return e.Name
	}
	return fmt.Sprintf("%s(%s)", e.Name, arityToParams(e.Arity))
}

func signature(module string, e ExportEntry) string {
	return module + "." + display(e)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// arityToParams converts an arity string to a parameter representation
func arityToParams(arity string) string {
	switch arity {
	case "", "0":
		return ""
	case "1":
		return "x"
	case "2":
		return "x, y"
	case "0-1":
		return "x?"
	case "1-2":
		return "x, y?"
	case "0-2":
		return "m?, n?"
	case "1+":
		return "x, ..."
	default:
		return "..."
	}
}
