// Package pipeline orchestrates a portfolio profile build: resume extraction
// and GitHub summarization in parallel, then merge and enhancement.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/portfolio-builder/internal/enhance"
	"github.com/jonathan/portfolio-builder/internal/github"
	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/merge"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// ErrNoInput is returned when neither resume nor GitHub input is provided.
var ErrNoInput = errors.New("provide either resume_text/resume_data or github_username/github_data")

// Build steps reported in progress events and degraded lists.
const (
	StepResume      = "resume"
	StepGitHub      = "github"
	StepMerge       = "merge"
	StepEnhancement = "enhancement"
)

// ProgressEvent represents a progress update during a build
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when build progress occurs
type ProgressCallback func(event ProgressEvent)

// ResumeExtractor is satisfied by *resume.Agent.
type ResumeExtractor interface {
	Extract(ctx context.Context, text string) (*resume.Result, error)
}

// GitHubSummarizer is satisfied by *github.Agent.
type GitHubSummarizer interface {
	Summarize(ctx context.Context, username string) (*github.Result, error)
}

// Enhancer is satisfied by *enhance.Agent.
type Enhancer interface {
	Enhance(ctx context.Context, profile *types.MergedProfile) (*types.EnhancementResult, error)
}

// Input selects the sources for a build. Pre-extracted data takes precedence
// over the raw input for the same source.
type Input struct {
	ResumeText      string
	GitHubUsername  string
	ResumeData      *types.ResumeProfile
	GitHubData      *types.GitHubProfile
	SkipEnhancement bool
	// OnProgress may be called from more than one goroutine.
	OnProgress ProgressCallback
}

// HasInput reports whether at least one source is present.
func (in Input) HasInput() bool {
	return strings.TrimSpace(in.ResumeText) != "" || strings.TrimSpace(in.GitHubUsername) != "" ||
		in.ResumeData != nil || in.GitHubData != nil
}

// Output holds everything a build produced.
type Output struct {
	// Raw is the merged profile before enhancement.
	Raw *types.MergedProfile
	// Enhanced is a copy of Raw with enhancement content applied. It equals
	// Raw when enhancement was skipped or failed.
	Enhanced    *types.MergedProfile
	Enhancement *types.EnhancementResult
	Resume      *types.ResumeProfile
	GitHub      *types.GitHubProfile
	// Degraded lists sub-steps that fell back to defaults, prefixed by
	// source (e.g. "resume.sections", "github.projects", "enhancement").
	Degraded  []string
	Unmatched int
	Duration  time.Duration
}

// Builder runs builds. A Builder is safe for concurrent use.
type Builder struct {
	Resume   ResumeExtractor
	GitHub   GitHubSummarizer
	Enhancer Enhancer
}

// NewBuilder wires the default agents around one completer and GitHub source.
func NewBuilder(c llm.Completer, source github.Source) *Builder {
	return &Builder{
		Resume:   resume.NewAgent(c),
		GitHub:   github.NewAgent(source, c),
		Enhancer: enhance.NewAgent(c),
	}
}

func emitProgress(in Input, step, message string, content any) {
	if in.OnProgress != nil {
		in.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Build extracts, merges and enhances a profile. Extraction failures are
// fatal; enhancement failure is recorded in Output.Degraded.
func (b *Builder) Build(ctx context.Context, in Input) (*Output, error) {
	if !in.HasInput() {
		return nil, ErrNoInput
	}
	start := time.Now()
	out := &Output{Degraded: []string{}}

	var resumeDegraded, githubDegraded []string

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		switch {
		case in.ResumeData != nil:
			p := *in.ResumeData
			p.EnsureCollections()
			out.Resume = &p
		case strings.TrimSpace(in.ResumeText) != "":
			emitProgress(in, StepResume, "Extracting resume", nil)
			result, err := b.Resume.Extract(gCtx, in.ResumeText)
			if err != nil {
				return fmt.Errorf("resume extraction failed: %w", err)
			}
			out.Resume = result.Profile
			resumeDegraded = result.Degraded
			emitProgress(in, StepResume, "Resume extracted", result.Profile)
		}
		return nil
	})

	g.Go(func() error {
		switch {
		case in.GitHubData != nil:
			p := *in.GitHubData
			p.EnsureCollections()
			out.GitHub = &p
		case strings.TrimSpace(in.GitHubUsername) != "":
			emitProgress(in, StepGitHub, "Summarizing GitHub profile", nil)
			result, err := b.GitHub.Summarize(gCtx, in.GitHubUsername)
			if err != nil {
				return fmt.Errorf("github summarization failed: %w", err)
			}
			out.GitHub = result.Profile
			githubDegraded = result.Degraded
			emitProgress(in, StepGitHub, "GitHub profile summarized", result.Profile)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range resumeDegraded {
		out.Degraded = append(out.Degraded, StepResume+"."+d)
	}
	for _, d := range githubDegraded {
		out.Degraded = append(out.Degraded, StepGitHub+"."+d)
	}

	out.Raw = merge.Merge(out.Resume, out.GitHub)
	emitProgress(in, StepMerge, "Profiles merged", out.Raw)

	out.Enhanced = out.Raw.Clone()
	if !in.SkipEnhancement && b.Enhancer != nil {
		emitProgress(in, StepEnhancement, "Enhancing content", nil)
		result, err := b.Enhancer.Enhance(ctx, out.Raw)
		if err != nil {
			slog.Warn("enhancement skipped", slog.Any("error", err))
			out.Degraded = append(out.Degraded, StepEnhancement)
		} else {
			out.Enhancement = result
			out.Unmatched = enhance.Apply(out.Enhanced, result)
			emitProgress(in, StepEnhancement, "Content enhanced", result)
		}
	}

	out.Duration = time.Since(start)
	slog.Info("profile build complete",
		slog.Duration("duration", out.Duration),
		slog.Any("degraded", out.Degraded),
		slog.Int("unmatched_enhancements", out.Unmatched))
	return out, nil
}
