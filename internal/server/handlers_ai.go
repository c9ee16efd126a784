package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// maxUploadSize bounds uploaded resume documents.
const maxUploadSize = 10 << 20

// upload is a resume document received with a request.
type upload struct {
	Data []byte
	Meta *ingestion.Metadata
	Text string
}

// parseMultipart parses a multipart body bounded by maxUploadSize.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()}
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload extracts the text of the "file" form field. It returns nil when
// the request carries no file.
func (s *Server) readUpload(r *http.Request) (*upload, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: "file", Message: err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, &ErrValidation{Field: "file", Message: "file exceeds 10 MB"}
	}

	contentType := uploadContentType(header)
	text, err := s.extractText(data, contentType)
	if err != nil {
		return nil, err
	}
	return &upload{
		Data: data,
		Meta: ingestion.NewMetadata(header.Filename, contentType, data),
		Text: text,
	}, nil
}

// uploadContentType trusts a .pdf extension over a generic part header.
func uploadContentType(h *multipart.FileHeader) string {
	if strings.EqualFold(filepath.Ext(h.Filename), ".pdf") {
		return ingestion.ContentTypePDF
	}
	return h.Header.Get("Content-Type")
}

// decodeJSON decodes the request body into v and validates it.
func decodeJSON(r *http.Request, v interface{ Validate() error }) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return v.Validate()
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b
}

func buildInput(req *types.BuildProfileRequest) pipeline.Input {
	return pipeline.Input{
		ResumeText:      req.ResumeText,
		GitHubUsername:  strings.TrimSpace(req.GitHubUsername),
		ResumeData:      req.ResumeData,
		GitHubData:      req.GitHubData,
		SkipEnhancement: req.SkipEnhancement,
	}
}

func buildProfileFields(out *pipeline.Output) map[string]any {
	return map[string]any{
		"raw_profile":      out.Raw,
		"enhanced_profile": out.Enhanced,
		"degraded":         out.Degraded,
	}
}

// handleParseResume extracts a resume profile from an uploaded PDF.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		s.handleError(w, r, err)
		return
	}
	up, err := s.readUpload(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if up == nil {
		s.handleError(w, r, &ErrValidation{Field: "file", Message: "a PDF resume is required"})
		return
	}

	result, err := s.extractor.Extract(r.Context(), up.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, map[string]any{
		"data":     result.Profile,
		"degraded": result.Degraded,
	})
}

// handleBuildProfile runs a full build and returns the raw and enhanced profiles.
func (s *Server) handleBuildProfile(w http.ResponseWriter, r *http.Request) {
	var req types.BuildProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if !req.HasInput() {
		s.handleError(w, r, pipeline.ErrNoInput)
		return
	}

	out, err := s.builders(s.githubToken).Build(r.Context(), buildInput(&req))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.successResponse(w, http.StatusOK, buildProfileFields(out))
}

// handleBuildProfileStream runs a build and streams progress via SSE.
func (s *Server) handleBuildProfileStream(w http.ResponseWriter, r *http.Request) {
	var req types.BuildProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if !req.HasInput() {
		s.handleError(w, r, pipeline.ErrNoInput)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	in := buildInput(&req)
	in.OnProgress = func(ev pipeline.ProgressEvent) {
		_ = sse.WriteEvent(EventProgress, ev)
	}

	out, err := s.builders(s.githubToken).Build(r.Context(), in)
	if err != nil {
		sse.WriteError(publicMessage(err, HTTPStatus(err)))
		sse.WriteComplete("error")
		return
	}

	fields := buildProfileFields(out)
	fields["status"] = "success"
	_ = sse.WriteEvent(EventResult, fields)
	sse.WriteComplete("success")
}

// handleAnalyzeResume critiques resume text sent as a PDF upload, a form
// field, or a JSON body.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var text string
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			s.handleError(w, r, err)
			return
		}
		up, err := s.readUpload(r)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		if up != nil {
			text = up.Text
		} else {
			text = r.FormValue("resume_text")
		}
	} else {
		var req types.AnalyzeResumeRequest
		if err := decodeJSON(r, &req); err != nil {
			s.handleError(w, r, err)
			return
		}
		text = req.ResumeText
	}

	result := s.analyzer.AnalyzeResumeText(r.Context(), text)
	s.successResponse(w, http.StatusOK, map[string]any{"analysis": result})
}
