package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Name:        "Test",
		Description: "Extract things.",
		Fields: []SchemaField{
			{Name: "title", Type: "\"string\"", Description: "The title", Required: true},
			{Name: "tags", Type: "[\"string\"]"},
		},
		Rules: []string{"Be brief."},
	}

	prompt := BuildExtractionPrompt(schema, "some input")

	assert.True(t, strings.HasPrefix(prompt, "Extract things."))
	assert.Contains(t, prompt, `"title": "string" (required) // The title,`)
	assert.Contains(t, prompt, `"tags": ["string"]`)
	assert.Contains(t, prompt, "- Be brief.")
	assert.Contains(t, prompt, "\"\"\"\nsome input\n\"\"\"")
}

func TestResumeSchemas(t *testing.T) {
	basics := ResumeBasicsSchema()
	var names []string
	for _, f := range basics.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "email", "phone", "location", "summary", "social", "technicalSkills", "softSkills", "languages"}, names)

	sections := ResumeSectionsSchema(3)
	assert.Len(t, sections.Fields, 6)
	assert.Contains(t, BuildExtractionPrompt(sections, "x"), "at most 3 entries")
}
