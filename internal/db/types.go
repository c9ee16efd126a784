package db

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Portfolio statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Skill categories
const (
	SkillTechnical = "technical"
	SkillSoft      = "soft"
	SkillLanguage  = "language"
)

// Section types stored in portfolio_sections, in display order.
const (
	SectionAbout          = "about"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionCertifications = "certifications"
	SectionPublications   = "publications"
	SectionAwards         = "awards"
)

// User is an account identified by its external identity-provider UID.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	FirebaseUID string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Portfolio is a generated portfolio owned by a user.
type Portfolio struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Status       string     `json:"status"`
	TemplateType string     `json:"template_type,omitempty"`
	IsPublic     bool       `json:"is_public"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PortfolioUpdate holds optional portfolio field changes. Nil fields are left unchanged.
type PortfolioUpdate struct {
	Title        *string `json:"title,omitempty"`
	TemplateType *string `json:"template_type,omitempty"`
	Status       *string `json:"status,omitempty"`
	IsPublic     *bool   `json:"is_public,omitempty"`
}

// ErrInvalidStatus is returned for unknown portfolio statuses.
var ErrInvalidStatus = errors.New("status must be one of draft, published, archived")

// Validate checks the requested status.
func (u *PortfolioUpdate) Validate() error {
	if u.Status == nil {
		return nil
	}
	switch *u.Status {
	case StatusDraft, StatusPublished, StatusArchived:
		return nil
	}
	return ErrInvalidStatus
}

// ResumeData is an uploaded resume and its parsed JSON.
type ResumeData struct {
	ID          uuid.UUID       `json:"id"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	FileName    string          `json:"file_name,omitempty"`
	FileURL     string          `json:"file_url,omitempty"`
	ParsedJSON  json.RawMessage `json:"parsed_json,omitempty"`
	UploadDate  time.Time       `json:"upload_date"`
}

// ProfileData is the merged profile of a portfolio plus its raw sources.
type ProfileData struct {
	ID             uuid.UUID       `json:"id"`
	PortfolioID    uuid.UUID       `json:"portfolio_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	Summary        string          `json:"summary"`
	GitHubUsername string          `json:"github_username,omitempty"`
	GitHubData     json.RawMessage `json:"github_data,omitempty"`
	ResumeData     json.RawMessage `json:"resume_data,omitempty"`
	MergedData     json.RawMessage `json:"merged_data,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Project is a portfolio project row.
type Project struct {
	ID           uuid.UUID `json:"id"`
	PortfolioID  uuid.UUID `json:"portfolio_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	GitHubURL    string    `json:"github_url"`
	Technologies []string  `json:"technologies"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
}

// Skill is a categorized skill row.
type Skill struct {
	ID          uuid.UUID `json:"id"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Name        string    `json:"skill_name"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// SocialLink is one external profile link.
type SocialLink struct {
	ID          uuid.UUID `json:"id"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Platform    string    `json:"platform"`
	URL         string    `json:"url"`
	Username    string    `json:"username,omitempty"`
}

// Section is a free-form portfolio section.
type Section struct {
	ID          uuid.UUID       `json:"id"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	SectionType string          `json:"section_type"`
	Content     json.RawMessage `json:"content"`
	OrderIndex  int             `json:"order_index"`
	IsVisible   bool            `json:"is_visible"`
}

// Version is a portfolio snapshot.
type Version struct {
	ID                uuid.UUID       `json:"id"`
	PortfolioID       uuid.UUID       `json:"portfolio_id"`
	VersionNumber     int             `json:"version_number"`
	Data              json.RawMessage `json:"data"`
	ChangedBy         *uuid.UUID      `json:"changed_by,omitempty"`
	ChangeDescription string          `json:"change_description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Credential is a sealed third-party API token.
type Credential struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Service     string     `json:"service"`
	SealedToken string     `json:"-"`
	Username    string     `json:"username,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
}

// SocialLinkView is the public shape of a social link.
type SocialLinkView struct {
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
}

// ProfileView is the public read model assembled from a portfolio's rows.
type ProfileView struct {
	Name            string                     `json:"name"`
	Email           string                     `json:"email"`
	Phone           string                     `json:"phone"`
	Location        string                     `json:"location"`
	Summary         string                     `json:"summary"`
	GitHubUsername  string                     `json:"github_username,omitempty"`
	TechnicalSkills []string                   `json:"technicalSkills"`
	SoftSkills      []string                   `json:"softSkills"`
	Languages       []string                   `json:"languages"`
	AllSkills       map[string][]string        `json:"allSkills"`
	Projects        []Project                  `json:"projects"`
	Social          map[string]SocialLinkView  `json:"social"`
	Sections        map[string]json.RawMessage `json:"sections"`
	GitHubData      json.RawMessage            `json:"github_data,omitempty"`
	ResumeData      json.RawMessage            `json:"resume_data,omitempty"`
	MergedData      json.RawMessage            `json:"merged_data,omitempty"`
}

// PortfolioProfile is a portfolio with its assembled profile.
type PortfolioProfile struct {
	Portfolio
	Profile *ProfileView `json:"profile,omitempty"`
}
