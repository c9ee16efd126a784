package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/portfolio-builder/internal/db"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/server/middleware"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// defaultPortfolioTitle is used when a build names no title.
const defaultPortfolioTitle = "My Portfolio"

// currentUser resolves the authenticated identity to a stored user,
// creating the user on first sight.
func (s *Server) currentUser(r *http.Request) (*db.User, error) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		return nil, err
	}
	return s.store.GetOrCreateUserByFirebaseUID(r.Context(), id.UID, id.Email, id.Name)
}

// ownedPortfolio loads a portfolio and checks that user owns it.
func (s *Server) ownedPortfolio(ctx context.Context, rawID string, user *db.User) (*db.Portfolio, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "invalid portfolio ID format"}
	}
	p, err := s.store.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("portfolio %s: %w", id, db.ErrNotFound)
	}
	if p.UserID != user.ID {
		return nil, ErrForbidden
	}
	return p, nil
}

// requestPortfolio resolves the caller and the {id} portfolio they own.
func (s *Server) requestPortfolio(r *http.Request) (*db.User, *db.Portfolio, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.ownedPortfolio(r.Context(), r.PathValue("id"), user)
	if err != nil {
		return nil, nil, err
	}
	return user, p, nil
}

// handleBuildPortfolio builds a profile from an uploaded resume and/or GitHub
// username and saves it as a new portfolio version. Sending portfolio_id
// rebuilds an existing portfolio.
func (s *Server) handleBuildPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := s.currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		s.handleError(w, r, err)
		return
	}

	up, err := s.readUpload(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	req := types.BuildProfileRequest{
		GitHubUsername:  strings.TrimSpace(r.FormValue("github_username")),
		SkipEnhancement: formBool(r, "skip_enhancement"),
	}
	if up != nil {
		req.ResumeText = up.Text
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}
	if !req.HasInput() {
		s.handleError(w, r, pipeline.ErrNoInput)
		return
	}

	meta := types.CreatePortfolioRequest{
		Title:        strings.TrimSpace(r.FormValue("title")),
		TemplateType: r.FormValue("template_type"),
	}
	if meta.Title == "" {
		meta.Title = defaultPortfolioTitle
	}
	if meta.TemplateType == "" {
		meta.TemplateType = types.TemplateContemporary
	}
	if err := meta.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	var portfolio *db.Portfolio
	if rawID := r.FormValue("portfolio_id"); rawID != "" {
		if portfolio, err = s.ownedPortfolio(ctx, rawID, user); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	out, err := s.builders(s.githubTokenFor(ctx, user.ID)).Build(ctx, buildInput(&req))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if portfolio == nil {
		if portfolio, err = s.store.CreatePortfolio(ctx, user.ID, meta.Title, meta.TemplateType); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	params := db.SaveBuildParams{
		UserID:            user.ID,
		GitHubUsername:    req.GitHubUsername,
		Resume:            out.Resume,
		GitHub:            out.GitHub,
		Merged:            out.Enhanced,
		ChangeDescription: changeDescription(up, req.GitHubUsername),
	}
	if up != nil {
		params.FileName = up.Meta.Filename
		params.FileURL = s.storeUpload(ctx, user.ID, up)
	}

	version, err := s.store.SaveBuild(ctx, portfolio.ID, params)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	slog.Info("portfolio built",
		slog.String("portfolio_id", portfolio.ID.String()),
		slog.Int("version", version),
		slog.Any("degraded", out.Degraded))

	s.successResponse(w, http.StatusCreated, map[string]any{
		"portfolio": portfolio,
		"version":   version,
		"degraded":  out.Degraded,
	})
}

func changeDescription(up *upload, githubUsername string) string {
	var sources []string
	if up != nil {
		name := up.Meta.Filename
		if name == "" {
			name = "resume"
		}
		sources = append(sources, name)
	}
	if githubUsername != "" {
		sources = append(sources, "github:"+githubUsername)
	}
	return "Built from " + strings.Join(sources, " and ")
}

// storeUpload saves the original resume document. Storage is best-effort; the
// build is saved without a file URL when it fails or is not configured.
func (s *Server) storeUpload(ctx context.Context, userID uuid.UUID, up *upload) string {
	if s.uploads == nil {
		return ""
	}
	key := up.Meta.ObjectKey("resumes/" + userID.String() + "/")
	url, err := s.uploads.Put(ctx, key, up.Data, up.Meta.ContentType)
	if err != nil {
		slog.Warn("failed to store resume upload", slog.String("key", key), slog.Any("error", err))
		return ""
	}
	return url
}

// handleListPortfolios lists the caller's portfolios.
func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	portfolios, err := s.store.ListPortfolios(r.Context(), user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if portfolios == nil {
		portfolios = []db.Portfolio{}
	}
	s.successResponse(w, http.StatusOK, map[string]any{"portfolios": portfolios})
}

// handleGetPortfolio returns a portfolio with its assembled profile.
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	pp, err := s.store.GetPortfolioProfile(r.Context(), p.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"portfolio": pp})
}

// handleUpdatePortfolio applies a partial update.
func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req types.UpdatePortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	update := db.PortfolioUpdate{
		Title:        req.Title,
		TemplateType: req.TemplateType,
		Status:       req.Status,
		IsPublic:     req.IsPublic,
	}
	if err := update.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	updated, err := s.store.UpdatePortfolio(r.Context(), p.ID, update)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"portfolio": updated})
}

// handleDeletePortfolio deletes a portfolio and all of its data.
func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.store.DeletePortfolio(r.Context(), p.ID); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"message": "portfolio deleted"})
}

// handlePublishPortfolio makes a portfolio public under its slug.
func (s *Server) handlePublishPortfolio(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	published, err := s.store.PublishPortfolio(r.Context(), p.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{
		"portfolio":  published,
		"public_url": "/public/portfolios/" + published.Slug,
	})
}

// handleListVersions lists a portfolio's build snapshots, newest first.
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	versions, err := s.store.ListVersions(r.Context(), p.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if versions == nil {
		versions = []db.Version{}
	}
	s.successResponse(w, http.StatusOK, map[string]any{"versions": versions})
}

// handleAnalyzePortfolio critiques the stored profile of a portfolio.
func (s *Server) handleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requestPortfolio(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	pp, err := s.store.GetPortfolioProfile(r.Context(), p.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	result := s.analyzer.Analyze(r.Context(), analysisInput(pp))
	s.successResponse(w, http.StatusOK, map[string]any{"analysis": result})
}

// analysisInput prefers the stored merged snapshot and falls back to the
// assembled view without its raw source blobs.
func analysisInput(pp *db.PortfolioProfile) map[string]any {
	if pp == nil || pp.Profile == nil {
		return nil
	}
	var data map[string]any
	if len(pp.Profile.MergedData) > 0 {
		if err := json.Unmarshal(pp.Profile.MergedData, &data); err == nil && len(data) > 0 {
			return data
		}
	}

	view := *pp.Profile
	view.GitHubData, view.ResumeData, view.MergedData = nil, nil, nil
	raw, err := json.Marshal(view)
	if err != nil {
		return nil
	}
	data = nil
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

// handleGetPublicPortfolio serves a published portfolio by slug.
func (s *Server) handleGetPublicPortfolio(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	pp, err := s.store.GetPublicPortfolioProfile(r.Context(), slug)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if pp == nil {
		s.handleError(w, r, fmt.Errorf("portfolio %q: %w", slug, db.ErrNotFound))
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"portfolio": pp})
}
