package types

import (
	"github.com/go-playground/validator/v10"
)

// Portfolio template identifiers.
const (
	TemplateContemporary = "contemporary"
	TemplateProfessional = "professional"
	TemplateMinimalist   = "minimalist"
	TemplateAnimated     = "animated"
	TemplateNature       = "nature"
)

// BuildProfileRequest is the input to a profile build. At least one of the
// resume or GitHub inputs must be present.
type BuildProfileRequest struct {
	ResumeText      string         `json:"resume_text,omitempty" validate:"omitempty,max=100000"`
	GitHubUsername  string         `json:"github_username,omitempty" validate:"omitempty,max=39,excludesall=/?#@"`
	ResumeData      *ResumeProfile `json:"resume_data,omitempty"`
	GitHubData      *GitHubProfile `json:"github_data,omitempty"`
	SkipEnhancement bool           `json:"skip_enhancement,omitempty"`
}

// HasInput reports whether the request names any source.
func (r *BuildProfileRequest) HasInput() bool {
	return r.ResumeText != "" || r.GitHubUsername != "" || r.ResumeData != nil || r.GitHubData != nil
}

// CreatePortfolioRequest holds the portfolio metadata supplied with a build.
type CreatePortfolioRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=255"`
	TemplateType string `json:"template_type" validate:"omitempty,oneof=contemporary professional minimalist animated nature"`
}

// UpdatePortfolioRequest is a partial update; nil fields are left unchanged.
type UpdatePortfolioRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	TemplateType *string `json:"template_type,omitempty" validate:"omitempty,oneof=contemporary professional minimalist animated nature"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	IsPublic     *bool   `json:"is_public,omitempty"`
}

// SaveCredentialRequest stores a third-party API token for the caller.
type SaveCredentialRequest struct {
	Token    string `json:"token" validate:"required,min=8,max=500"`
	Username string `json:"username,omitempty" validate:"omitempty,max=255"`
}

// AnalyzeResumeRequest asks for a critique of raw resume text.
type AnalyzeResumeRequest struct {
	ResumeText string `json:"resume_text" validate:"max=100000"`
}

// Validate validates the BuildProfileRequest using the validator.
func (r *BuildProfileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreatePortfolioRequest using the validator.
func (r *CreatePortfolioRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdatePortfolioRequest using the validator.
func (r *UpdatePortfolioRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SaveCredentialRequest using the validator.
func (r *SaveCredentialRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeResumeRequest using the validator.
func (r *AnalyzeResumeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
