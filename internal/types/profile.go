// Package types provides type definitions for structured data used throughout the portfolio-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
)

// Record is a free-form entry extracted from irregular source text
// (experience, education, projects, certifications, publications, awards).
type Record map[string]any

// SocialLinks maps a platform name (github, linkedin, website, twitter, leetcode) to a URL.
// Platforms without a link are omitted.
type SocialLinks map[string]string

// Social platform keys.
const (
	PlatformGitHub   = "github"
	PlatformLinkedIn = "linkedin"
	PlatformWebsite  = "website"
	PlatformTwitter  = "twitter"
	PlatformLeetCode = "leetcode"
)

// Platforms lists the social platforms recognized by link extraction, in display order.
var Platforms = []string{PlatformGitHub, PlatformLinkedIn, PlatformWebsite, PlatformTwitter, PlatformLeetCode}

// ResumeProfile is the canonical profile extracted from a resume.
// Every list field is non-nil after normalization.
type ResumeProfile struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Location string      `json:"location"`
	Summary  string      `json:"summary"`
	Social   SocialLinks `json:"social"`

	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	Languages       []string `json:"languages"`

	Experience     []Record `json:"experience"`
	Education      []Record `json:"education"`
	Projects       []Record `json:"projects"`
	Certifications []Record `json:"certifications"`
	Publications   []Record `json:"publications"`
	Awards         []Record `json:"awards"`
}

// NewResumeProfile returns an empty profile with every collection initialized.
func NewResumeProfile() *ResumeProfile {
	p := &ResumeProfile{}
	p.EnsureCollections()
	return p
}

// EnsureCollections replaces nil collections with empty ones.
func (p *ResumeProfile) EnsureCollections() {
	if p.Social == nil {
		p.Social = SocialLinks{}
	}
	p.TechnicalSkills = nonNilStrings(p.TechnicalSkills)
	p.SoftSkills = nonNilStrings(p.SoftSkills)
	p.Languages = nonNilStrings(p.Languages)
	p.Experience = nonNilRecords(p.Experience)
	p.Education = nonNilRecords(p.Education)
	p.Projects = nonNilRecords(p.Projects)
	p.Certifications = nonNilRecords(p.Certifications)
	p.Publications = nonNilRecords(p.Publications)
	p.Awards = nonNilRecords(p.Awards)
}

// Project is a repository-backed project summarized from GitHub.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Technologies []string `json:"technologies"`
}

// Record converts the project into the free-form shape shared with resume projects.
func (p Project) Record() Record {
	techs := make([]any, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		techs = append(techs, t)
	}
	return Record{
		"name":         p.Name,
		"description":  p.Description,
		"url":          p.URL,
		"technologies": techs,
	}
}

// GitHubProfile is the profile synthesized from a GitHub account.
type GitHubProfile struct {
	Name            string      `json:"name"`
	Summary         string      `json:"summary"`
	Social          SocialLinks `json:"social"`
	TechnicalSkills []string    `json:"technicalSkills"`
	Projects        []Project   `json:"projects"`
}

// EnsureCollections replaces nil collections with empty ones.
func (g *GitHubProfile) EnsureCollections() {
	if g.Social == nil {
		g.Social = SocialLinks{}
	}
	g.TechnicalSkills = nonNilStrings(g.TechnicalSkills)
	if g.Projects == nil {
		g.Projects = []Project{}
	}
	for i := range g.Projects {
		g.Projects[i].Technologies = nonNilStrings(g.Projects[i].Technologies)
	}
}

// MergedProfile is the union of a resume profile and a GitHub profile,
// optionally carrying enhancement content.
type MergedProfile struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	Location        string      `json:"location"`
	Summary         string      `json:"summary"`
	Headline        string      `json:"headline,omitempty"`
	EnhancedSummary string      `json:"enhanced_summary,omitempty"`
	Social          SocialLinks `json:"social"`

	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	Languages       []string `json:"languages"`

	Experience     []Record `json:"experience"`
	Education      []Record `json:"education"`
	Projects       []Record `json:"projects"`
	Certifications []Record `json:"certifications"`
	Publications   []Record `json:"publications"`
	Awards         []Record `json:"awards"`
}

// EnsureCollections replaces nil collections with empty ones.
func (m *MergedProfile) EnsureCollections() {
	if m.Social == nil {
		m.Social = SocialLinks{}
	}
	m.TechnicalSkills = nonNilStrings(m.TechnicalSkills)
	m.SoftSkills = nonNilStrings(m.SoftSkills)
	m.Languages = nonNilStrings(m.Languages)
	m.Experience = nonNilRecords(m.Experience)
	m.Education = nonNilRecords(m.Education)
	m.Projects = nonNilRecords(m.Projects)
	m.Certifications = nonNilRecords(m.Certifications)
	m.Publications = nonNilRecords(m.Publications)
	m.Awards = nonNilRecords(m.Awards)
}

// EnhancedDescriptionKey is the record key under which enhanced bullet points are attached.
const EnhancedDescriptionKey = "enhanced_description"

// Clone returns a deep copy of the profile.
func (m *MergedProfile) Clone() *MergedProfile {
	if m == nil {
		return nil
	}
	c := *m
	c.Social = m.Social.Clone()
	c.TechnicalSkills = CloneStrings(m.TechnicalSkills)
	c.SoftSkills = CloneStrings(m.SoftSkills)
	c.Languages = CloneStrings(m.Languages)
	c.Experience = CloneRecords(m.Experience)
	c.Education = CloneRecords(m.Education)
	c.Projects = CloneRecords(m.Projects)
	c.Certifications = CloneRecords(m.Certifications)
	c.Publications = CloneRecords(m.Publications)
	c.Awards = CloneRecords(m.Awards)
	return &c
}

// Clone returns a copy of the links.
func (s SocialLinks) Clone() SocialLinks {
	c := make(SocialLinks, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// String returns the value at key when it is a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = cloneValue(v)
	}
	return c
}

// CloneRecords deep-copies a record list; the result is never nil.
func CloneRecords(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		out = append(out, r.Clone())
	}
	return out
}

// CloneStrings copies a string list; the result is never nil.
func CloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case Record:
		return t.Clone()
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	case []string:
		return CloneStrings(t)
	default:
		return v
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilRecords(r []Record) []Record {
	if r == nil {
		return []Record{}
	}
	return r
}

// StringList decodes either a JSON array of strings or a single string.
// LLMs alternate between the two for bullet-style fields.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	single = strings.TrimSpace(single)
	if single == "" {
		*l = StringList{}
		return nil
	}
	*l = StringList{single}
	return nil
}
