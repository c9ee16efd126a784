// Package github summarizes a GitHub account into a developer profile.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// ErrNotFound is returned by a Source when the user or README does not exist.
var ErrNotFound = errors.New("github resource not found")

// UserProfile is the account metadata used in the summarization prompt.
type UserProfile struct {
	Login           string `json:"login"`
	Name            string `json:"name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
	Company         string `json:"company,omitempty"`
	Blog            string `json:"blog,omitempty"`
	TwitterUsername string `json:"twitter_username,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	HTMLURL         string `json:"profile_url,omitempty"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepos     int    `json:"public_repos"`
}

// Repo is a repository as returned by a Source. Forks are included; the
// agent filters them.
type Repo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Stars       int      `json:"stars"`
	Topics      []string `json:"topics,omitempty"`
	URL         string   `json:"url"`
	Fork        bool     `json:"-"`
}

// Source is the third-party profile collaborator.
type Source interface {
	GetUser(ctx context.Context, username string) (*UserProfile, error)
	GetReadme(ctx context.Context, username string) (string, error)
	ListRepos(ctx context.Context, username string) ([]Repo, error)
}

// DefaultTimeout bounds each GitHub API request.
const DefaultTimeout = 15 * time.Second

// RESTSource implements Source against the GitHub REST API.
type RESTSource struct {
	client *gh.Client
}

// NewRESTSource creates a source. An empty token uses unauthenticated access.
func NewRESTSource(token string, httpClient *http.Client) *RESTSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &RESTSource{client: client}
}

// WithBaseURL points the source at a different API root (GitHub Enterprise or tests).
func (s *RESTSource) WithBaseURL(baseURL string) (*RESTSource, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
	}
	s.client.BaseURL = u
	return s, nil
}

// GetUser fetches account metadata.
func (s *RESTSource) GetUser(ctx context.Context, username string) (*UserProfile, error) {
	user, _, err := s.client.Users.Get(ctx, username)
	if err != nil {
		return nil, classify(err, "user "+username)
	}
	return &UserProfile{
		Login:           user.GetLogin(),
		Name:            user.GetName(),
		Bio:             user.GetBio(),
		Location:        user.GetLocation(),
		Company:         user.GetCompany(),
		Blog:            user.GetBlog(),
		TwitterUsername: user.GetTwitterUsername(),
		AvatarURL:       user.GetAvatarURL(),
		HTMLURL:         user.GetHTMLURL(),
		Followers:       user.GetFollowers(),
		Following:       user.GetFollowing(),
		PublicRepos:     user.GetPublicRepos(),
	}, nil
}

// GetReadme fetches the profile README from the <username>/<username>
// repository and returns it as cleaned text, at most ReadmeLimit characters.
func (s *RESTSource) GetReadme(ctx context.Context, username string) (string, error) {
	content, _, err := s.client.Repositories.GetReadme(ctx, username, username, nil)
	if err != nil {
		return "", classify(err, "readme for "+username)
	}
	raw, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode readme for %s: %w", username, err)
	}
	return CleanReadme(raw), nil
}

// ListRepos lists the user's public repositories, most recently updated first.
func (s *RESTSource) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	opts := &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	repos, _, err := s.client.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		return nil, classify(err, "repositories for "+username)
	}

	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repo{
			Name:        r.GetName(),
			Description: r.GetDescription(),
			Language:    r.GetLanguage(),
			Stars:       r.GetStargazersCount(),
			Topics:      r.Topics,
			URL:         r.GetHTMLURL(),
			Fork:        r.GetFork(),
		})
	}
	return out, nil
}

func classify(err error, what string) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}
