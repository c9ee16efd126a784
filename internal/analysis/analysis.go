// Package analysis scores profiles against current hiring trends.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/prompts"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// ResumeTextLimit bounds the resume text embedded in the prompt.
const ResumeTextLimit = 8000

// Messages used for default results.
const (
	MsgNoPortfolioData = "No portfolio data to analyze."
	MsgNoResumeText    = "No resume text to analyze."
	MsgUnparsable      = "Analysis could not be parsed."
)

// Agent produces hiring-trend analyses. It never returns an error; failures
// degrade to a default result carrying a diagnostic.
type Agent struct {
	llm llm.Completer
}

// NewAgent creates an Agent.
func NewAgent(c llm.Completer) *Agent {
	return &Agent{llm: c}
}

// Analyze critiques profile data such as a merged profile or a stored
// portfolio snapshot.
func (a *Agent) Analyze(ctx context.Context, data map[string]any) *types.AnalysisResult {
	if len(data) == 0 {
		result := types.NewAnalysisResult()
		result.HiringTrendsAnalysis = MsgNoPortfolioData
		return result
	}
	return a.run(ctx, data)
}

// AnalyzeResumeText critiques raw resume text for users without a stored portfolio.
func (a *Agent) AnalyzeResumeText(ctx context.Context, text string) *types.AnalysisResult {
	text = strings.TrimSpace(text)
	if text == "" {
		result := types.NewAnalysisResult()
		result.HiringTrendsAnalysis = MsgNoResumeText
		return result
	}
	if r := []rune(text); len(r) > ResumeTextLimit {
		text = string(r[:ResumeTextLimit])
	}
	return a.run(ctx, map[string]any{"raw_summary_or_resume": text})
}

func (a *Agent) run(ctx context.Context, data map[string]any) *types.AnalysisResult {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return failed(err)
	}

	prompt, err := prompts.Render(prompts.AnalysisFile, prompts.AnalysisHiringTrend, map[string]string{"Data": string(encoded)})
	if err != nil {
		return failed(err)
	}

	raw, err := a.llm.Send(ctx, prompt)
	if err != nil {
		return failed(err)
	}

	var parsed map[string]any
	if err := llm.DecodeJSON(raw, &parsed); err != nil {
		return failed(err)
	}
	return normalize(parsed)
}

func failed(err error) *types.AnalysisResult {
	slog.Warn("analysis degraded", slog.Any("error", err))
	result := types.NewAnalysisResult()
	result.HiringTrendsAnalysis = MsgUnparsable
	result.Error = err.Error()
	return result
}

// normalize coerces the model's mapping into an AnalysisResult.
func normalize(data map[string]any) *types.AnalysisResult {
	result := types.NewAnalysisResult()
	result.Score = ClampScore(data["score"])
	result.HiringTrendsAnalysis = text(data["hiring_trends_analysis"])
	result.Strengths = stringList(data["strengths"])
	result.Weaknesses = stringList(data["weaknesses"])
	result.MissingKeywords = stringList(data["missing_keywords"])

	if items, ok := data["suggestions"].([]any); ok {
		for _, item := range items {
			switch s := item.(type) {
			case string:
				result.Suggestions = append(result.Suggestions, types.Suggestion{
					Section:    types.SectionGeneral,
					Suggestion: s,
				})
			case map[string]any:
				result.Suggestions = append(result.Suggestions, suggestionFromMap(s))
			}
		}
	}
	return result
}

func suggestionFromMap(m map[string]any) types.Suggestion {
	section := text(m["section"])
	if section == "" {
		section = types.SectionGeneral
	}
	body, ok := m["suggestion"]
	if !ok {
		body = m["text"]
	}
	return types.Suggestion{
		Section:    section,
		Current:    text(m["current"]),
		Suggestion: text(body),
		Reason:     text(m["reason"]),
	}
}

// ClampScore coerces a model-supplied score to an integer in [0,100].
// Numbers are truncated toward zero, numeric strings are parsed, and
// anything else yields 0.
func ClampScore(v any) int {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case int:
		f = float64(s)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Trunc(f))))
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, text(item))
		}
	}
	return out
}
