//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProfileRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request BuildProfileRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "resume text only",
			request: BuildProfileRequest{ResumeText: "Jane Doe\nEngineer"},
		},
		{
			name:    "github username only",
			request: BuildProfileRequest{GitHubUsername: "octocat"},
		},
		{
			name:    "empty request passes validation",
			request: BuildProfileRequest{},
		},
		{
			name:    "username too long",
			request: BuildProfileRequest{GitHubUsername: strings.Repeat("a", 40)},
			wantErr: true,
			errMsg:  "max",
		},
		{
			name:    "username with path characters",
			request: BuildProfileRequest{GitHubUsername: "octocat/repos"},
			wantErr: true,
			errMsg:  "excludesall",
		},
		{
			name:    "resume text too long",
			request: BuildProfileRequest{ResumeText: strings.Repeat("x", 100001)},
			wantErr: true,
			errMsg:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildProfileRequest_HasInput(t *testing.T) {
	assert.False(t, (&BuildProfileRequest{SkipEnhancement: true}).HasInput())
	assert.True(t, (&BuildProfileRequest{ResumeText: "x"}).HasInput())
	assert.True(t, (&BuildProfileRequest{GitHubUsername: "octocat"}).HasInput())
	assert.True(t, (&BuildProfileRequest{ResumeData: NewResumeProfile()}).HasInput())
	assert.True(t, (&BuildProfileRequest{GitHubData: &GitHubProfile{}}).HasInput())
}

func TestCreatePortfolioRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreatePortfolioRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: CreatePortfolioRequest{Title: "My Portfolio", TemplateType: TemplateMinimalist},
		},
		{
			name:    "template optional",
			request: CreatePortfolioRequest{Title: "My Portfolio"},
		},
		{
			name:    "missing title",
			request: CreatePortfolioRequest{TemplateType: TemplateNature},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "unknown template",
			request: CreatePortfolioRequest{Title: "My Portfolio", TemplateType: "brutalist"},
			wantErr: true,
			errMsg:  "oneof",
		},
		{
			name:    "title too long",
			request: CreatePortfolioRequest{Title: strings.Repeat("t", 256)},
			wantErr: true,
			errMsg:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdatePortfolioRequest_Validation(t *testing.T) {
	str := func(s string) *string { return &s }

	assert.NoError(t, (&UpdatePortfolioRequest{}).Validate(), "empty update is a no-op")
	assert.NoError(t, (&UpdatePortfolioRequest{Status: str("published")}).Validate())
	assert.NoError(t, (&UpdatePortfolioRequest{TemplateType: str(TemplateAnimated)}).Validate())

	err := (&UpdatePortfolioRequest{Status: str("deleted")}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")

	err = (&UpdatePortfolioRequest{Title: str("")}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min")
}

func TestSaveCredentialRequest_Validation(t *testing.T) {
	assert.NoError(t, (&SaveCredentialRequest{Token: "ghp_abcdefgh"}).Validate())

	err := (&SaveCredentialRequest{}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	err = (&SaveCredentialRequest{Token: "short"}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min")
}

func TestAnalyzeResumeRequest_Validation(t *testing.T) {
	assert.NoError(t, (&AnalyzeResumeRequest{}).Validate())
	assert.Error(t, (&AnalyzeResumeRequest{ResumeText: strings.Repeat("x", 100001)}).Validate())
}
