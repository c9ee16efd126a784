package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/portfolio-builder/internal/db"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// handleSaveGitHubCredential stores the caller's GitHub token, sealed.
func (s *Server) handleSaveGitHubCredential(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if s.sealer == nil {
		s.handleError(w, r, ErrCredentialsDisabled)
		return
	}

	var req types.SaveCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	sealed, err := s.sealer.Seal(req.Token)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	cred, err := s.store.SaveCredential(r.Context(), user.ID, db.ServiceGitHub, sealed, req.Username)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"credential": cred})
}

// handleDeleteGitHubCredential removes the caller's GitHub token.
func (s *Server) handleDeleteGitHubCredential(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.store.DeleteCredential(r.Context(), user.ID, db.ServiceGitHub); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{"message": "credential deleted"})
}

// githubTokenFor returns the user's stored GitHub token, or the server-wide
// token when none is stored or it cannot be opened.
func (s *Server) githubTokenFor(ctx context.Context, userID uuid.UUID) string {
	if s.sealer == nil {
		return s.githubToken
	}
	cred, err := s.store.GetCredential(ctx, userID, db.ServiceGitHub)
	if err != nil {
		slog.Warn("failed to load github credential", slog.Any("error", err))
		return s.githubToken
	}
	if cred == nil {
		return s.githubToken
	}
	token, err := s.sealer.Open(cred.SealedToken)
	if err != nil {
		slog.Warn("failed to open github credential", slog.String("user_id", userID.String()), slog.Any("error", err))
		return s.githubToken
	}
	return token
}
