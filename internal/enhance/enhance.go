// Package enhance rewrites merged profile content for impact.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/prompts"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// EnhancementFailedError is returned when the LLM cannot be reached or its
// response cannot be parsed. Enhancement has no fallback.
type EnhancementFailedError struct {
	Message string
	Cause   error
}

func (e *EnhancementFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("content enhancement failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("content enhancement failed: %s", e.Message)
}

func (e *EnhancementFailedError) Unwrap() error {
	return e.Cause
}

// Agent produces enhanced profile content.
type Agent struct {
	llm llm.Completer
}

// NewAgent creates an Agent.
func NewAgent(c llm.Completer) *Agent {
	return &Agent{llm: c}
}

// promptInput is the subset of the profile sent to the model.
type promptInput struct {
	Name            string         `json:"name"`
	Summary         string         `json:"summary"`
	TechnicalSkills []string       `json:"technicalSkills"`
	Experience      []types.Record `json:"experience"`
	Projects        []types.Record `json:"projects"`
}

// Enhance asks the LLM for a headline, an enhanced summary and rewritten
// experience and project bullets.
func (a *Agent) Enhance(ctx context.Context, profile *types.MergedProfile) (*types.EnhancementResult, error) {
	if profile == nil {
		return nil, &EnhancementFailedError{Message: "profile is nil"}
	}

	input, err := json.Marshal(promptInput{
		Name:            profile.Name,
		Summary:         profile.Summary,
		TechnicalSkills: profile.TechnicalSkills,
		Experience:      profile.Experience,
		Projects:        profile.Projects,
	})
	if err != nil {
		return nil, &EnhancementFailedError{Message: "failed to encode profile", Cause: err}
	}

	prompt, err := prompts.Render(prompts.EnhanceFile, prompts.EnhanceProfileKey, map[string]string{"Profile": string(input)})
	if err != nil {
		return nil, &EnhancementFailedError{Message: "failed to load prompt", Cause: err}
	}

	raw, err := a.llm.Send(ctx, prompt)
	if err != nil {
		return nil, &EnhancementFailedError{Message: "LLM request failed", Cause: err}
	}

	result := &types.EnhancementResult{}
	if err := llm.DecodeJSON(raw, result); err != nil {
		return nil, &EnhancementFailedError{Message: "could not parse LLM response", Cause: err}
	}
	if result.Experience == nil {
		result.Experience = []types.EnhancedExperience{}
	}
	if result.Projects == nil {
		result.Projects = []types.EnhancedProject{}
	}
	return result, nil
}

// Apply folds an enhancement result into profile in place and returns the
// number of enhanced entries that matched nothing and were dropped.
//
// Experience entries match on exact title and, when the enhancement names
// one, exact company. Projects match on exact name. Each profile entry
// receives at most one enhancement.
func Apply(profile *types.MergedProfile, result *types.EnhancementResult) int {
	if profile == nil || result == nil {
		return 0
	}

	if h := strings.TrimSpace(result.Headline); h != "" {
		profile.Headline = h
	}
	if s := strings.TrimSpace(result.EnhancedSummary); s != "" {
		profile.EnhancedSummary = s
	}

	unmatched := 0

	usedExp := make([]bool, len(profile.Experience))
	for _, e := range result.Experience {
		title := strings.TrimSpace(e.Title)
		company := strings.TrimSpace(e.Company)
		i := findRecord(profile.Experience, usedExp, func(r types.Record) bool {
			if strings.TrimSpace(r.String("title")) != title {
				return false
			}
			return company == "" || strings.TrimSpace(r.String("company")) == company
		})
		if i < 0 || title == "" {
			unmatched++
			continue
		}
		usedExp[i] = true
		profile.Experience[i][types.EnhancedDescriptionKey] = bullets(e.EnhancedDescription)
	}

	usedProj := make([]bool, len(profile.Projects))
	for _, p := range result.Projects {
		name := strings.TrimSpace(p.Name)
		i := findRecord(profile.Projects, usedProj, func(r types.Record) bool {
			return strings.TrimSpace(r.String("name")) == name
		})
		if i < 0 || name == "" {
			unmatched++
			continue
		}
		usedProj[i] = true
		profile.Projects[i][types.EnhancedDescriptionKey] = bullets(p.EnhancedDescription)
	}

	if unmatched > 0 {
		slog.Info("dropped unmatched enhancement entries", slog.Int("count", unmatched))
	}
	return unmatched
}

func findRecord(records []types.Record, used []bool, match func(types.Record) bool) int {
	for i, r := range records {
		if !used[i] && r != nil && match(r) {
			return i
		}
	}
	return -1
}

func bullets(list types.StringList) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
