package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, mux *http.ServeMux) *RESTSource {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	source, err := NewRESTSource("", server.Client()).WithBaseURL(server.URL)
	require.NoError(t, err)
	return source
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRESTSource_GetUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/jane", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"login":        "jane",
			"name":         "Jane Doe",
			"bio":          "Gopher",
			"followers":    12,
			"public_repos": 3,
			"html_url":     "https://github.com/jane",
		})
	})

	user, err := newTestSource(t, mux).GetUser(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "Gopher", user.Bio)
	assert.Equal(t, 12, user.Followers)
	assert.Equal(t, 3, user.PublicRepos)
}

func TestRESTSource_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"message": "Not Found"})
	})
	source := newTestSource(t, mux)

	_, err := source.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = source.GetReadme(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRESTSource_GetReadme(t *testing.T) {
	readme := "# Hi, I'm Jane\n<p align=\"center\"><img src=\"badge.svg\"></p>\nI build **Go** services."
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/jane/jane/readme", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(readme)),
		})
	})

	text, err := newTestSource(t, mux).GetReadme(context.Background(), "jane")
	require.NoError(t, err)
	assert.Contains(t, text, "# Hi, I'm Jane")
	assert.Contains(t, text, "I build **Go** services.")
	assert.NotContains(t, text, "<img")
}

func TestRESTSource_ListRepos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/jane/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		writeJSON(w, []map[string]any{
			{"name": "api", "description": "REST API", "language": "Go", "stargazers_count": 5, "html_url": "https://github.com/jane/api", "topics": []string{"rest"}},
			{"name": "fork", "fork": true, "html_url": "https://github.com/jane/fork"},
		})
	})

	repos, err := newTestSource(t, mux).ListRepos(context.Background(), "jane")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, Repo{
		Name:        "api",
		Description: "REST API",
		Language:    "Go",
		Stars:       5,
		Topics:      []string{"rest"},
		URL:         "https://github.com/jane/api",
	}, repos[0])
	assert.True(t, repos[1].Fork)
}

func TestRESTSource_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newTestSource(t, mux).ListRepos(context.Background(), "jane")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
