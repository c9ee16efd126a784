package resume

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/schemas"
	"github.com/jonathan/portfolio-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxSectionEntries caps every structured section.
const DefaultMaxSectionEntries = 3

// Degraded sub-steps reported in Result.Degraded.
const (
	StepBasics   = "basics"
	StepSections = "sections"
)

// Result is an extracted profile plus the sub-steps that fell back to defaults.
type Result struct {
	Profile  *types.ResumeProfile
	Degraded []string
}

// Agent extracts resume profiles with two independent LLM calls.
type Agent struct {
	llm               llm.Completer
	maxSectionEntries int
}

// NewAgent creates an Agent backed by the given completer.
func NewAgent(c llm.Completer) *Agent {
	return &Agent{llm: c, maxSectionEntries: DefaultMaxSectionEntries}
}

// WithMaxSectionEntries overrides the per-section cap. Non-positive values keep the default.
func (a *Agent) WithMaxSectionEntries(n int) *Agent {
	if n > 0 {
		a.maxSectionEntries = n
	}
	return a
}

// Extract turns resume text into a canonical profile.
//
// Each LLM call degrades to empty fields when its output cannot be used.
// Extraction fails only when the text is empty, when neither call could reach
// the LLM, or when the assembled profile violates the canonical schema.
func (a *Agent) Extract(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionFailedError{Message: "resume text is empty"}
	}

	var (
		basics, sections       map[string]any
		basicsErr, sectionsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		basics, basicsErr = a.complete(gctx, llm.BuildExtractionPrompt(llm.ResumeBasicsSchema(), text))
		return nil
	})
	g.Go(func() error {
		sections, sectionsErr = a.complete(gctx, llm.BuildExtractionPrompt(llm.ResumeSectionsSchema(a.maxSectionEntries), text))
		return nil
	})
	_ = g.Wait()

	if basicsErr != nil && sectionsErr != nil && !isOutputError(basicsErr) && !isOutputError(sectionsErr) {
		return nil, &ExtractionFailedError{Message: "LLM unavailable", Cause: basicsErr}
	}

	result := &Result{Degraded: []string{}}
	if basicsErr != nil {
		slog.Warn("resume basics extraction degraded", slog.Any("error", basicsErr))
		result.Degraded = append(result.Degraded, StepBasics)
		basics = map[string]any{}
	}
	if sectionsErr != nil {
		slog.Warn("resume sections extraction degraded", slog.Any("error", sectionsErr))
		result.Degraded = append(result.Degraded, StepSections)
		sections = map[string]any{}
	}

	doc := a.assemble(text, basics, sections)
	if err := schemas.ValidateResumeProfile(doc); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationFailedError{Fields: verr.Fields(), Cause: err}
		}
		return nil, err
	}

	profile, err := decodeProfile(doc)
	if err != nil {
		return nil, &ValidationFailedError{Fields: []string{"(root)"}, Cause: err}
	}
	result.Profile = profile
	return result, nil
}

func (a *Agent) complete(ctx context.Context, prompt string) (map[string]any, error) {
	raw, err := a.llm.Send(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// assemble builds the canonical mapping from both halves and the raw text.
// Values of an unexpected type are left in place for validation to report.
func (a *Agent) assemble(text string, basics, sections map[string]any) map[string]any {
	doc := map[string]any{}

	for _, field := range []string{"name", "email", "phone", "location", "summary"} {
		doc[field] = normalizeScalar(basics[field])
	}
	if doc["email"] == nil {
		if email := FindEmail(text); email != "" {
			doc["email"] = email
		}
	}
	if doc["phone"] == nil {
		if phone := FindPhone(text); phone != "" {
			doc["phone"] = phone
		}
	}

	social := normalizeSocial(basics["social"])
	if links, ok := social.(map[string]any); ok {
		for platform, url := range ExtractSocialLinks(text) {
			if _, exists := links[platform]; !exists {
				links[platform] = url
			}
		}
	}
	doc["social"] = social

	for _, field := range []string{"technicalSkills", "softSkills", "languages"} {
		list, err := NormalizeStringList(basics[field])
		if err != nil {
			slog.Warn("could not normalize list field", slog.String("field", field), slog.Any("error", err))
			doc[field] = basics[field]
			continue
		}
		doc[field] = list
	}

	for _, field := range []string{"experience", "education", "projects"} {
		doc[field] = capRecords(NormalizeRecords(sections[field], ""), a.maxSectionEntries)
	}
	doc["certifications"] = capRecords(normalizeShaped(sections["certifications"], certificationShape), a.maxSectionEntries)
	doc["publications"] = capRecords(normalizeShaped(sections["publications"], publicationShape), a.maxSectionEntries)
	doc["awards"] = capRecords(normalizeShaped(sections["awards"], awardShape), a.maxSectionEntries)

	return doc
}

func decodeProfile(doc map[string]any) (*types.ResumeProfile, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	profile := &types.ResumeProfile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, err
	}
	profile.EnsureCollections()
	return profile, nil
}

// isOutputError reports whether err came from unusable model output rather
// than from failing to reach the model.
func isOutputError(err error) bool {
	var unparsable *llm.UnparsableJSONError
	return errors.Is(err, llm.ErrNoJSONFound) || errors.As(err, &unparsable) || errors.Is(err, llm.ErrEmptyCompletion)
}
