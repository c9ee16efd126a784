package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/prompts"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	// PromptRepoLimit is the number of repositories included in the prompt.
	PromptRepoLimit = 10
	// FallbackRepoLimit is the number of repositories mapped to projects when
	// the LLM yields none.
	FallbackRepoLimit = 5
	// MinimalSummaryLimit bounds the README-derived summary used without an LLM call.
	MinimalSummaryLimit = 200
)

// Degraded sub-steps reported in Result.Degraded.
const (
	StepUser     = "user"
	StepReadme   = "readme"
	StepRepos    = "repos"
	StepSummary  = "summary"
	StepProjects = "projects"
)

// ErrInvalidUsername is returned for usernames GitHub would never accept.
var ErrInvalidUsername = errors.New("invalid GitHub username")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// Result is a synthesized profile plus the sub-steps that fell back to defaults.
type Result struct {
	Profile  *types.GitHubProfile
	Degraded []string
}

// Agent synthesizes GitHub profiles.
type Agent struct {
	source Source
	llm    llm.Completer
}

// NewAgent creates an Agent.
func NewAgent(source Source, c llm.Completer) *Agent {
	return &Agent{source: source, llm: c}
}

// ProfileURL returns the public profile URL for username.
func ProfileURL(username string) string {
	return "https://github.com/" + username
}

// Summarize builds a GitHub profile for username. Absent users, READMEs and
// repositories degrade to defaults; only an invalid username is an error.
func (a *Agent) Summarize(ctx context.Context, username string) (*Result, error) {
	username = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}

	result := &Result{Degraded: []string{}}
	user, readme, repos := a.fetch(ctx, username, result)

	name := username
	if user != nil && user.Name != "" {
		name = user.Name
	}

	if len(repos) == 0 {
		result.Profile = minimalProfile(username, name, readme)
		return result, nil
	}

	profile, err := a.synthesize(ctx, username, user, readme, repos)
	if err != nil {
		slog.Warn("github summarization degraded", slog.String("username", username), slog.Any("error", err))
		result.Degraded = append(result.Degraded, StepSummary)
		profile = minimalProfile(username, name, readme)
	}

	if len(profile.Projects) == 0 {
		result.Degraded = append(result.Degraded, StepProjects)
		profile.Projects = fallbackProjects(repos)
	}
	if profile.Name == "" {
		profile.Name = name
	}
	profile.Social[types.PlatformGitHub] = ProfileURL(username)

	result.Profile = profile
	return result, nil
}

// fetch runs the three collaborator calls concurrently. Failures other than
// not-found are recorded as degraded steps.
func (a *Agent) fetch(ctx context.Context, username string, result *Result) (*UserProfile, string, []Repo) {
	var (
		user                        *UserProfile
		readme                      string
		all                         []Repo
		userErr, readmeErr, repoErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, userErr = a.source.GetUser(gctx, username)
		return nil
	})
	g.Go(func() error {
		readme, readmeErr = a.source.GetReadme(gctx, username)
		return nil
	})
	g.Go(func() error {
		all, repoErr = a.source.ListRepos(gctx, username)
		return nil
	})
	_ = g.Wait()

	for _, f := range []struct {
		step string
		err  error
	}{{StepUser, userErr}, {StepReadme, readmeErr}, {StepRepos, repoErr}} {
		if f.err == nil || errors.Is(f.err, ErrNotFound) {
			continue
		}
		slog.Warn("github fetch failed", slog.String("step", f.step), slog.String("username", username), slog.Any("error", f.err))
		result.Degraded = append(result.Degraded, f.step)
	}
	if userErr != nil {
		user = nil
	}
	if readmeErr != nil {
		readme = ""
	}

	repos := make([]Repo, 0, len(all))
	for _, r := range all {
		if !r.Fork && r.Name != "" {
			repos = append(repos, r)
		}
	}
	return user, readme, repos
}

func (a *Agent) synthesize(ctx context.Context, username string, user *UserProfile, readme string, repos []Repo) (*types.GitHubProfile, error) {
	if user == nil {
		user = &UserProfile{Login: username}
	}
	if len(repos) > PromptRepoLimit {
		repos = repos[:PromptRepoLimit]
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	reposJSON, err := json.Marshal(repos)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(prompts.GitHubFile, prompts.GitHubSummarizeKey, map[string]string{
		"Profile": string(userJSON),
		"Readme":  readme,
		"Repos":   string(reposJSON),
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.llm.Send(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := llm.DecodeJSON(raw, &data); err != nil {
		return nil, err
	}
	return profileFromLLM(data, repos), nil
}

// profileFromLLM converts the model's mapping into a GitHubProfile, dropping
// values of unexpected types.
func profileFromLLM(data map[string]any, repos []Repo) *types.GitHubProfile {
	profile := &types.GitHubProfile{}
	profile.Name, _ = data["name"].(string)
	profile.Summary, _ = data["summary"].(string)
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Summary = strings.TrimSpace(profile.Summary)

	profile.Social = types.SocialLinks{}
	if social, ok := data["social"].(map[string]any); ok {
		for k, v := range social {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				profile.Social[strings.ToLower(k)] = strings.TrimSpace(s)
			}
		}
	}

	if skills, err := resume.NormalizeStringList(data["technicalSkills"]); err == nil {
		profile.TechnicalSkills = skills
	}

	repoURLs := make(map[string]string, len(repos))
	for _, r := range repos {
		repoURLs[strings.ToLower(r.Name)] = r.URL
	}

	if items, ok := data["projects"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			p := types.Project{}
			p.Name, _ = m["name"].(string)
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				continue
			}
			p.Description, _ = m["description"].(string)
			p.URL, _ = m["url"].(string)
			if p.URL == "" {
				p.URL = repoURLs[strings.ToLower(p.Name)]
			}
			if techs, err := resume.NormalizeStringList(m["technologies"]); err == nil {
				p.Technologies = techs
			}
			profile.Projects = append(profile.Projects, p)
		}
	}

	profile.EnsureCollections()
	return profile
}

func minimalProfile(username, name, readme string) *types.GitHubProfile {
	profile := &types.GitHubProfile{
		Name:    name,
		Summary: truncateRunes(readme, MinimalSummaryLimit),
		Social:  types.SocialLinks{types.PlatformGitHub: ProfileURL(username)},
	}
	profile.EnsureCollections()
	return profile
}

// fallbackProjects maps the first FallbackRepoLimit repositories to projects.
func fallbackProjects(repos []Repo) []types.Project {
	n := min(len(repos), FallbackRepoLimit)
	projects := make([]types.Project, 0, n)
	for _, r := range repos[:n] {
		techs := []string{}
		if r.Language != "" {
			techs = append(techs, r.Language)
		}
		projects = append(projects, types.Project{
			Name:         r.Name,
			Description:  r.Description,
			URL:          r.URL,
			Technologies: techs,
		})
	}
	return projects
}
