// Package llm - extractor.go describes structured extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ResumeBasics")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions appended to the IMPORTANT list
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Use null for missing values and [] for missing lists.\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Resume Schemas ---

// ResumeBasicsSchema returns the schema for the personal and skill fields of a resume.
func ResumeBasicsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResumeBasics",
		Description: `You are an expert resume parser.
Extract the candidate's personal details and skills from the resume text below.`,
		Fields: []SchemaField{
			{Name: "name", Type: "\"string\"", Description: "Full name", Required: true},
			{Name: "email", Type: "\"string\""},
			{Name: "phone", Type: "\"string\""},
			{Name: "location", Type: "\"string\"", Description: "City, region or country"},
			{Name: "summary", Type: "\"string\"", Description: "Professional summary as written"},
			{
				Name:        "social",
				Type:        "{\"github\": \"url\", \"linkedin\": \"url\", \"website\": \"url\", \"twitter\": \"url\", \"leetcode\": \"url\"}",
				Description: "Only links present in the text",
			},
			{Name: "technicalSkills", Type: "[\"string\"]", Description: "Flat list of technical skills", Required: true},
			{Name: "softSkills", Type: "[\"string\"]"},
			{Name: "languages", Type: "[\"string\"]", Description: "Spoken languages"},
		},
		Rules: []string{
			"Skills must be a flat list of strings, not grouped by category.",
		},
	}
}

// ResumeSectionsSchema returns the schema for the structured sections of a resume.
// Every section is capped at maxEntries entries.
func ResumeSectionsSchema(maxEntries int) ExtractionSchema {
	return ExtractionSchema{
		Name: "ResumeSections",
		Description: `You are an expert resume parser.
Extract the structured sections of the resume text below.`,
		Fields: []SchemaField{
			{
				Name:        "experience",
				Type:        "[{\"title\": \"string\", \"company\": \"string\", \"location\": \"string\", \"startDate\": \"string\", \"endDate\": \"string\", \"description\": [\"string\"]}]",
				Description: "Most recent first",
				Required:    true,
			},
			{
				Name: "education",
				Type: "[{\"institution\": \"string\", \"degree\": \"string\", \"field\": \"string\", \"startDate\": \"string\", \"endDate\": \"string\", \"gpa\": \"string\"}]",
			},
			{
				Name: "projects",
				Type: "[{\"name\": \"string\", \"description\": \"string\", \"technologies\": [\"string\"], \"url\": \"string\"}]",
			},
			{
				Name: "certifications",
				Type: "[{\"name\": \"string\", \"issuer\": \"string\", \"year\": \"string\", \"url\": \"string\"}]",
			},
			{
				Name: "publications",
				Type: "[{\"title\": \"string\", \"publisher\": \"string\", \"date\": \"string\", \"url\": \"string\"}]",
			},
			{
				Name: "awards",
				Type: "[{\"name\": \"string\", \"issuer\": \"string\", \"year\": \"string\"}]",
			},
		},
		Rules: []string{
			fmt.Sprintf("Return at most %d entries per section.", maxEntries),
			"Keep descriptions short.",
		},
	}
}
