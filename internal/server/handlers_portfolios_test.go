package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-builder/internal/db"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/types"
)

func TestBuildPortfolio_CreatesAndSaves(t *testing.T) {
	env := newTestEnv(t)
	req := withAuth(multipartRequest(t, "/portfolios/build", map[string]string{
		"github_username": "octocat",
		"title":           "Jane's Work",
		"template_type":   "minimalist",
	}, &filePart{name: "jane.pdf", contentType: "application/pdf", data: []byte("Jane Doe resume")}), janeToken)

	w := env.do(req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["version"])
	portfolio := body["portfolio"].(map[string]any)
	assert.Equal(t, "Jane's Work", portfolio["title"])
	assert.True(t, strings.HasPrefix(portfolio["slug"].(string), "jane-s-work-"))

	require.Len(t, env.builder.inputs, 1)
	assert.Equal(t, "Jane Doe resume", env.builder.inputs[0].ResumeText)
	assert.Equal(t, "octocat", env.builder.inputs[0].GitHubUsername)

	require.Len(t, env.store.builds, 1)
	saved := env.store.builds[0]
	assert.Equal(t, "jane.pdf", saved.FileName)
	assert.True(t, strings.HasPrefix(saved.FileURL, "https://files.example.com/resumes/"))
	assert.Equal(t, "Backend engineer shipping reliable systems", saved.Merged.Headline)
	assert.Equal(t, "octocat", saved.GitHubUsername)
	assert.Equal(t, "Built from jane.pdf and github:octocat", saved.ChangeDescription)

	user := env.user(t, "uid-jane")
	assert.Equal(t, user.ID, saved.UserID)
	require.Len(t, env.uploads.keys, 1)
	assert.True(t, strings.HasPrefix(env.uploads.keys[0], "resumes/"+user.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(env.uploads.keys[0], ".pdf"))
}

func TestBuildPortfolio_Defaults(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{"github_username": "octocat"}, nil), janeToken))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	portfolio := decodeBody(t, w)["portfolio"].(map[string]any)
	assert.Equal(t, defaultPortfolioTitle, portfolio["title"])
	assert.Equal(t, types.TemplateContemporary, portfolio["template_type"])
	assert.Empty(t, env.uploads.keys)
	assert.Equal(t, "Built from github:octocat", env.store.builds[0].ChangeDescription)
}

func TestBuildPortfolio_NoInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{"title": "x"}, nil), janeToken))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.builder.inputs)
	assert.Empty(t, env.store.portfolios)
}

func TestBuildPortfolio_InvalidTemplate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{
		"github_username": "octocat",
		"template_type":   "neon",
	}, nil), janeToken))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.builder.inputs)
}

func TestBuildPortfolio_BuildFailureCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.builder.BuildFunc = func(context.Context, pipeline.Input) (*pipeline.Output, error) {
		return nil, pipeline.ErrNoInput
	}

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{"github_username": "octocat"}, nil), janeToken))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.store.portfolios)
}

func TestBuildPortfolio_UploadFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	env.uploads.PutErr = errors.New("bucket unavailable")
	req := withAuth(multipartRequest(t, "/portfolios/build", nil,
		&filePart{name: "cv.pdf", contentType: "application/pdf", data: []byte("resume")}), janeToken)

	w := env.do(req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.store.builds, 1)
	assert.Equal(t, "cv.pdf", env.store.builds[0].FileName)
	assert.Empty(t, env.store.builds[0].FileURL)
}

func TestBuildPortfolio_WithoutUploadStore(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Uploads = nil })
	req := withAuth(multipartRequest(t, "/portfolios/build", nil,
		&filePart{name: "cv.pdf", contentType: "application/pdf", data: []byte("resume")}), janeToken)

	w := env.do(req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, env.store.builds[0].FileURL)
}

func TestBuildPortfolio_RebuildExisting(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	existing := env.store.addPortfolio(jane.ID, "Existing")

	for i := 0; i < 2; i++ {
		w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{
			"github_username": "octocat",
			"portfolio_id":    existing.ID.String(),
		}, nil), janeToken))
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, float64(i+1), decodeBody(t, w)["version"])
	}
	assert.Len(t, env.store.portfolios, 1)
}

func TestBuildPortfolio_RebuildOthersPortfolio(t *testing.T) {
	env := newTestEnv(t)
	bob := env.user(t, "uid-bob")
	theirs := env.store.addPortfolio(bob.ID, "Bob's")

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{
		"github_username": "octocat",
		"portfolio_id":    theirs.ID.String(),
	}, nil), janeToken))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, env.builder.inputs)
}

func TestBuildPortfolio_SaveFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.SaveBuildErr = errors.New("tx aborted")

	w := env.do(withAuth(multipartRequest(t, "/portfolios/build", map[string]string{"github_username": "octocat"}, nil), janeToken))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListPortfolios(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios", nil), janeToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeBody(t, w)["portfolios"])

	jane := env.user(t, "uid-jane")
	bob := env.user(t, "uid-bob")
	env.store.addPortfolio(jane.ID, "A")
	env.store.addPortfolio(jane.ID, "B")
	env.store.addPortfolio(bob.ID, "C")

	w = env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios", nil), janeToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["portfolios"], 2)
}

func TestGetPortfolio(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Mine")

	w := env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios/"+p.ID.String(), nil), janeToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mine", decodeBody(t, w)["portfolio"].(map[string]any)["title"])

	w = env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios/"+p.ID.String(), nil), bobToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios/not-a-uuid", nil), janeToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(withAuth(httptest.NewRequest(http.MethodGet, "/portfolios/00000000-0000-0000-0000-000000000001", nil), janeToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePortfolio(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Old")
	path := "/portfolios/" + p.ID.String()

	w := env.do(withAuth(jsonRequest(t, http.MethodPut, path, map[string]any{"title": "New", "status": "archived"}), janeToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody(t, w)["portfolio"].(map[string]any)
	assert.Equal(t, "New", updated["title"])
	assert.Equal(t, db.StatusArchived, updated["status"])

	w = env.do(withAuth(jsonRequest(t, http.MethodPut, path, map[string]any{"status": "deleted"}), janeToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(withAuth(jsonRequest(t, http.MethodPut, path, map[string]any{"title": "Stolen"}), bobToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePortfolio(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Gone")

	w := env.do(withAuth(httptest.NewRequest(http.MethodDelete, "/portfolios/"+p.ID.String(), nil), janeToken))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.store.portfolios)
}

func TestPublishAndPublicRead(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Public Me")

	w := env.do(httptest.NewRequest(http.MethodGet, "/public/portfolios/"+p.Slug, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(withAuth(httptest.NewRequest(http.MethodPost, "/portfolios/"+p.ID.String()+"/publish", nil), janeToken))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "/public/portfolios/"+p.Slug, body["public_url"])
	assert.Equal(t, true, body["portfolio"].(map[string]any)["is_public"])

	w = env.do(httptest.NewRequest(http.MethodGet, "/public/portfolios/"+p.Slug, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Public Me", decodeBody(t, w)["portfolio"].(map[string]any)["title"])
}

func TestAnalyzePortfolio_UsesMergedSnapshot(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Analyze Me")
	_, err := env.store.SaveBuild(context.Background(), p.ID, db.SaveBuildParams{Merged: sampleOutput().Enhanced})
	require.NoError(t, err)

	w := env.do(withAuth(httptest.NewRequest(http.MethodPost, "/portfolios/"+p.ID.String()+"/analyze", nil), janeToken))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(70), decodeBody(t, w)["analysis"].(map[string]any)["score"])
	require.Len(t, env.analyzer.data, 1)
	assert.Equal(t, "Jane Doe", env.analyzer.data[0]["name"])
	assert.Equal(t, "Backend engineer shipping reliable systems", env.analyzer.data[0]["headline"])
}

func TestAnalyzePortfolio_NoBuildYet(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Empty")

	w := env.do(withAuth(httptest.NewRequest(http.MethodPost, "/portfolios/"+p.ID.String()+"/analyze", nil), janeToken))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.analyzer.data, 1)
	assert.Nil(t, env.analyzer.data[0])
}

func TestAnalysisInput_FallsBackToView(t *testing.T) {
	assert.Nil(t, analysisInput(nil))
	assert.Nil(t, analysisInput(&db.PortfolioProfile{}))

	pp := &db.PortfolioProfile{Profile: &db.ProfileView{
		Name:            "Jane",
		TechnicalSkills: []string{"Go"},
		ResumeData:      []byte(`{"secret":"raw"}`),
	}}
	data := analysisInput(pp)
	assert.Equal(t, "Jane", data["name"])
	assert.Equal(t, []any{"Go"}, data["technicalSkills"])
	assert.NotContains(t, data, "resume_data")
}

func TestListVersions(t *testing.T) {
	env := newTestEnv(t)
	jane := env.user(t, "uid-jane")
	p := env.store.addPortfolio(jane.ID, "Versions")
	path := "/portfolios/" + p.ID.String() + "/versions"

	w := env.do(withAuth(httptest.NewRequest(http.MethodGet, path, nil), janeToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeBody(t, w)["versions"])

	for i := 0; i < 2; i++ {
		_, err := env.store.SaveBuild(context.Background(), p.ID, db.SaveBuildParams{Merged: sampleOutput().Raw})
		require.NoError(t, err)
	}
	w = env.do(withAuth(httptest.NewRequest(http.MethodGet, path, nil), janeToken))
	versions := decodeBody(t, w)["versions"].([]any)
	require.Len(t, versions, 2)
	assert.Equal(t, float64(2), versions[0].(map[string]any)["version_number"])
}

func TestChangeDescription(t *testing.T) {
	up := &upload{Meta: ingestion.NewMetadata("", ingestion.ContentTypePDF, nil)}
	assert.Equal(t, "Built from resume and github:octo", changeDescription(up, "octo"))
	assert.Equal(t, "Built from github:octo", changeDescription(nil, "octo"))
}
