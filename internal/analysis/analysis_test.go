package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCompleter implements llm.Completer for testing
type MockCompleter struct {
	SendFunc func(ctx context.Context, prompt string) (string, error)
	Prompts  []string
}

func (m *MockCompleter) Send(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, prompt)
	}
	return `{}`, nil
}

func respond(body string) *MockCompleter {
	return &MockCompleter{
		SendFunc: func(context.Context, string) (string, error) { return body, nil },
	}
}

var profileData = map[string]any{"name": "Jane Doe", "technicalSkills": []string{"Go"}}

func TestAnalyze_Success(t *testing.T) {
	mock := respond("```json\n" + `{
		"score": 72.8,
		"hiring_trends_analysis": "Solid backend focus.",
		"strengths": ["Go"],
		"weaknesses": ["No metrics"],
		"suggestions": [
			{"section": "Projects", "current": "Built API", "suggestion": "Add user counts", "reason": "Impact"},
			{"section": "Skills", "text": "Add Kubernetes"},
			{"current": "x"},
			"Quantify your achievements",
			42
		],
		"missing_keywords": ["Kubernetes", "CI/CD"]
	}` + "\n```")

	result := NewAgent(mock).Analyze(context.Background(), profileData)

	assert.Equal(t, 72, result.Score)
	assert.Equal(t, "Solid backend focus.", result.HiringTrendsAnalysis)
	assert.Equal(t, []string{"Go"}, result.Strengths)
	assert.Equal(t, []string{"No metrics"}, result.Weaknesses)
	assert.Equal(t, []string{"Kubernetes", "CI/CD"}, result.MissingKeywords)
	assert.Empty(t, result.Error)

	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, types.Suggestion{Section: "Projects", Current: "Built API", Suggestion: "Add user counts", Reason: "Impact"}, result.Suggestions[0])
	assert.Equal(t, "Add Kubernetes", result.Suggestions[1].Suggestion)
	assert.Equal(t, types.SectionGeneral, result.Suggestions[2].Section)
	assert.Equal(t, types.Suggestion{Section: types.SectionGeneral, Suggestion: "Quantify your achievements"}, result.Suggestions[3])

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], `"name": "Jane Doe"`)
}

func TestAnalyze_ScoreClamping(t *testing.T) {
	tests := []struct {
		body     string
		expected int
	}{
		{`{"score": -10}`, 0},
		{`{"score": 150}`, 100},
		{`{"score": "high"}`, 0},
		{`{"score": "85"}`, 85},
		{`{"score": null}`, 0},
		{`{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			result := NewAgent(respond(tt.body)).Analyze(context.Background(), profileData)
			assert.Equal(t, tt.expected, result.Score)
		})
	}
}

func TestAnalyze_DefaultsNeverNil(t *testing.T) {
	result := NewAgent(respond(`{"strengths": "not a list", "suggestions": {}}`)).Analyze(context.Background(), profileData)

	assert.Equal(t, []string{}, result.Strengths)
	assert.Equal(t, []string{}, result.Weaknesses)
	assert.Equal(t, []string{}, result.MissingKeywords)
	assert.Equal(t, []types.Suggestion{}, result.Suggestions)
}

func TestAnalyze_EmptyData(t *testing.T) {
	mock := &MockCompleter{}

	result := NewAgent(mock).Analyze(context.Background(), nil)

	assert.Equal(t, MsgNoPortfolioData, result.HiringTrendsAnalysis)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, mock.Prompts)
}

func TestAnalyze_Unparsable(t *testing.T) {
	result := NewAgent(respond("Great profile!")).Analyze(context.Background(), profileData)

	assert.Equal(t, MsgUnparsable, result.HiringTrendsAnalysis)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, []string{}, result.Strengths)
}

func TestAnalyze_GatewayError(t *testing.T) {
	mock := &MockCompleter{
		SendFunc: func(context.Context, string) (string, error) {
			return "", &llm.ProviderError{Provider: "mock", StatusCode: 401, Body: "bad key"}
		},
	}

	result := NewAgent(mock).Analyze(context.Background(), profileData)

	assert.Equal(t, MsgUnparsable, result.HiringTrendsAnalysis)
	assert.Contains(t, result.Error, "401")
}

func TestAnalyzeResumeText(t *testing.T) {
	mock := respond(`{"score": 60}`)
	text := strings.Repeat("x", ResumeTextLimit+500)

	result := NewAgent(mock).AnalyzeResumeText(context.Background(), "  "+text+"  ")

	assert.Equal(t, 60, result.Score)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "raw_summary_or_resume")
	assert.Contains(t, mock.Prompts[0], strings.Repeat("x", ResumeTextLimit))
	assert.NotContains(t, mock.Prompts[0], strings.Repeat("x", ResumeTextLimit+1))
}

func TestAnalyzeResumeText_Empty(t *testing.T) {
	mock := &MockCompleter{}

	result := NewAgent(mock).AnalyzeResumeText(context.Background(), " \n ")

	assert.Equal(t, MsgNoResumeText, result.HiringTrendsAnalysis)
	assert.Empty(t, mock.Prompts)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-10.0))
	assert.Equal(t, 100, ClampScore(150.0))
	assert.Equal(t, 99, ClampScore(99.9))
	assert.Equal(t, 50, ClampScore(50))
	assert.Equal(t, 0, ClampScore(true))
	assert.Equal(t, 0, ClampScore("NaN"))
}
