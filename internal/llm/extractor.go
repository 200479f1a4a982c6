// Package llm - extractor.go provides generic LLM-based structured extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "Claims")
	Description string        // Instruction preamble describing the extraction task
	Fields      []SchemaField // Expected fields of each extracted item
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// PromptExample is a worked input/output pair shown to the model before the real input.
// Output is rendered verbatim, so it should already be the JSON the model is expected to return.
type PromptExample struct {
	Input  string
	Output string
}

// BuildExtractionPrompt constructs the LLM prompt from schema, worked examples and input text.
// The model is asked for {"extractions": [ ... ]} where each item follows schema.Fields.
func BuildExtractionPrompt(schema ExtractionSchema, examples []PromptExample, inputText string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	sb.WriteString("{\"extractions\": [\n  {\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  }\n]}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Copy extraction text verbatim from the input, do not paraphrase it.\n")
	sb.WriteString("- Return {\"extractions\": []} when nothing qualifies.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	for i, ex := range examples {
		sb.WriteString(fmt.Sprintf("Example %d input:\n\"\"\"\n%s\n\"\"\"\n", i+1, ex.Input))
		sb.WriteString(fmt.Sprintf("Example %d output:\n%s\n\n", i+1, strings.TrimSpace(ex.Output)))
	}

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
