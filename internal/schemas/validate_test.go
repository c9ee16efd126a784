package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResume() map[string]any {
	return map[string]any{
		"name":            "Jane Doe",
		"email":           "jane@x.com",
		"phone":           nil,
		"location":        nil,
		"summary":         nil,
		"social":          map[string]any{"github": "https://github.com/jane"},
		"technicalSkills": []any{"Python", "Go"},
		"softSkills":      []any{},
		"languages":       []any{},
		"experience":      []any{map[string]any{"title": "Engineer"}},
		"education":       []any{},
		"projects":        []any{},
		"certifications":  []any{map[string]any{"name": "CKA", "issuer": nil}},
		"publications":    []any{map[string]any{"title": "Paper"}},
		"awards":          []any{},
	}
}

func TestValidateResumeProfile_Valid(t *testing.T) {
	assert.NoError(t, ValidateResumeProfile(validResume()))
}

func TestValidateResumeProfile_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		patch func(map[string]any)
		field string
	}{
		{
			name:  "skills as bare string",
			patch: func(m map[string]any) { m["technicalSkills"] = "Python, Go" },
			field: "technicalSkills",
		},
		{
			name:  "missing list field",
			patch: func(m map[string]any) { delete(m, "awards") },
			field: "(root)",
		},
		{
			name:  "experience entry not a mapping",
			patch: func(m map[string]any) { m["experience"] = []any{"Engineer at Acme"} },
			field: "experience.0",
		},
		{
			name:  "certification without a name",
			patch: func(m map[string]any) { m["certifications"] = []any{map[string]any{"issuer": "CNCF"}} },
			field: "certifications.0",
		},
		{
			name:  "social value not a string",
			patch: func(m map[string]any) { m["social"] = map[string]any{"github": 42} },
			field: "social.github",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validResume()
			tt.patch(doc)

			err := ValidateResumeProfile(doc)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields(), tt.field)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
			{Field: "age", Message: "must be positive"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Equal(t, []string{"name", "age"}, err.Fields())
}
