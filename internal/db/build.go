package db

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-builder/internal/types"
)

// SaveBuildParams carries the outputs of one profile build.
type SaveBuildParams struct {
	UserID            uuid.UUID
	FileName          string
	FileURL           string
	GitHubUsername    string
	Resume            *types.ResumeProfile
	GitHub            *types.GitHubProfile
	Merged            *types.MergedProfile
	ChangeDescription string
}

// SaveBuild persists a build in one transaction: the resume upload, the profile
// row, replacement projects, skills, social links and sections, and a new
// version snapshot. It returns the new version number.
func (db *DB) SaveBuild(ctx context.Context, portfolioID uuid.UUID, params SaveBuildParams) (int, error) {
	if params.Merged == nil {
		return 0, fmt.Errorf("merged profile is required")
	}
	var resumeJSON, githubJSON []byte
	var err error
	if params.Resume != nil {
		if resumeJSON, err = json.Marshal(params.Resume); err != nil {
			return 0, fmt.Errorf("failed to marshal resume profile: %w", err)
		}
	}
	if params.GitHub != nil {
		if githubJSON, err = json.Marshal(params.GitHub); err != nil {
			return 0, fmt.Errorf("failed to marshal github profile: %w", err)
		}
	}
	mergedJSON, err := json.Marshal(params.Merged)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal merged profile: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if resumeJSON != nil || params.FileName != "" {
		_, err = tx.Exec(ctx,
			`INSERT INTO resume_data (portfolio_id, file_name, file_url, parsed_json)
			 VALUES ($1, $2, $3, $4)`,
			portfolioID, nullIfEmpty(params.FileName), nullIfEmpty(params.FileURL), resumeJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert resume data: %w", err)
		}
	}

	m := params.Merged
	_, err = tx.Exec(ctx,
		`INSERT INTO profile_data (portfolio_id, name, email, phone, location, summary,
		                           github_username, github_data, resume_data, merged_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (portfolio_id) DO UPDATE SET
		     name = $2, email = $3, phone = $4, location = $5, summary = $6,
		     github_username = $7, github_data = $8, resume_data = $9, merged_data = $10,
		     updated_at = NOW()`,
		portfolioID, m.Name, m.Email, m.Phone, m.Location, displaySummary(m),
		nullIfEmpty(params.GitHubUsername), githubJSON, resumeJSON, mergedJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert profile data: %w", err)
	}

	for _, table := range []string{"projects", "skills", "social_links", "portfolio_sections"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE portfolio_id = $1`, portfolioID); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, p := range ProjectsFromProfile(m) {
		techs, err := json.Marshal(p.Technologies)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal technologies: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO projects (portfolio_id, name, description, url, github_url, technologies, is_featured)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			portfolioID, p.Name, nullIfEmpty(p.Description), nullIfEmpty(p.URL), nullIfEmpty(p.GitHubURL), techs, p.IsFeatured,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert project %q: %w", p.Name, err)
		}
	}

	for _, s := range SkillsFromProfile(m) {
		_, err = tx.Exec(ctx,
			`INSERT INTO skills (portfolio_id, skill_name, category) VALUES ($1, $2, $3)`,
			portfolioID, s.Name, s.Category,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert skill %q: %w", s.Name, err)
		}
	}

	for _, l := range SocialLinksFromProfile(m) {
		_, err = tx.Exec(ctx,
			`INSERT INTO social_links (portfolio_id, platform, url, username) VALUES ($1, $2, $3, $4)`,
			portfolioID, l.Platform, l.URL, nullIfEmpty(l.Username),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert social link %s: %w", l.Platform, err)
		}
	}

	sections, err := SectionsFromProfile(m)
	if err != nil {
		return 0, err
	}
	for _, s := range sections {
		_, err = tx.Exec(ctx,
			`INSERT INTO portfolio_sections (portfolio_id, section_type, content, order_index, is_visible)
			 VALUES ($1, $2, $3, $4, $5)`,
			portfolioID, s.SectionType, []byte(s.Content), s.OrderIndex, s.IsVisible,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert section %s: %w", s.SectionType, err)
		}
	}

	version, err := insertVersion(ctx, tx, portfolioID, params.UserID, mergedJSON, params.ChangeDescription)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `UPDATE portfolios SET updated_at = NOW() WHERE id = $1`, portfolioID); err != nil {
		return 0, fmt.Errorf("failed to touch portfolio: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return version, nil
}

func insertVersion(ctx context.Context, tx pgx.Tx, portfolioID, userID uuid.UUID, data []byte, description string) (int, error) {
	var changedBy *uuid.UUID
	if userID != uuid.Nil {
		changedBy = &userID
	}
	var version int
	err := tx.QueryRow(ctx,
		`INSERT INTO portfolio_versions (portfolio_id, version_number, data, changed_by, change_description)
		 SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2, $3, $4
		 FROM portfolio_versions WHERE portfolio_id = $1
		 RETURNING version_number`,
		portfolioID, data, changedBy, nullIfEmpty(description),
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to insert portfolio version: %w", err)
	}
	return version, nil
}

// displaySummary prefers enhanced content over the extracted summary.
func displaySummary(m *types.MergedProfile) string {
	if m.EnhancedSummary != "" {
		return m.EnhancedSummary
	}
	return m.Summary
}

// ProjectsFromProfile maps merged project records to rows. Records without a
// name are skipped.
func ProjectsFromProfile(m *types.MergedProfile) []Project {
	projects := make([]Project, 0, len(m.Projects))
	for _, r := range m.Projects {
		name := strings.TrimSpace(r.String("name"))
		if name == "" {
			name = strings.TrimSpace(r.String("title"))
		}
		if name == "" {
			continue
		}
		p := Project{
			Name:         name,
			Description:  recordDescription(r),
			URL:          firstNonEmpty(r.String("url"), r.String("link")),
			Technologies: stringsOf(r["technologies"]),
		}
		if isGitHubURL(p.URL) {
			p.GitHubURL = p.URL
		}
		if gh := r.String("github_url"); gh != "" {
			p.GitHubURL = gh
		}
		_, p.IsFeatured = r[types.EnhancedDescriptionKey]
		projects = append(projects, p)
	}
	return projects
}

// SkillsFromProfile flattens the three skill lists into categorized rows.
func SkillsFromProfile(m *types.MergedProfile) []Skill {
	var skills []Skill
	add := func(category string, names []string) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				skills = append(skills, Skill{Name: n, Category: category})
			}
		}
	}
	add(SkillTechnical, m.TechnicalSkills)
	add(SkillSoft, m.SoftSkills)
	add(SkillLanguage, m.Languages)
	return skills
}

// SocialLinksFromProfile converts the social mapping into rows in platform order.
func SocialLinksFromProfile(m *types.MergedProfile) []SocialLink {
	var links []SocialLink
	seen := map[string]bool{}
	emit := func(platform string) {
		u := strings.TrimSpace(m.Social[platform])
		if u == "" || seen[platform] {
			return
		}
		seen[platform] = true
		links = append(links, SocialLink{Platform: platform, URL: u, Username: usernameFromURL(platform, u)})
	}
	for _, p := range types.Platforms {
		emit(p)
	}
	extra := make([]string, 0)
	for p := range m.Social {
		if !seen[p] {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)
	for _, p := range extra {
		emit(p)
	}
	return links
}

// SectionsFromProfile builds the visible sections. Empty lists produce no section.
func SectionsFromProfile(m *types.MergedProfile) ([]Section, error) {
	var sections []Section
	add := func(sectionType string, content any) error {
		b, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("failed to marshal %s section: %w", sectionType, err)
		}
		sections = append(sections, Section{
			SectionType: sectionType,
			Content:     b,
			OrderIndex:  len(sections),
			IsVisible:   true,
		})
		return nil
	}

	if m.Summary != "" || m.EnhancedSummary != "" || m.Headline != "" {
		about := map[string]string{"summary": m.Summary}
		if m.Headline != "" {
			about["headline"] = m.Headline
		}
		if m.EnhancedSummary != "" {
			about["enhanced_summary"] = m.EnhancedSummary
		}
		if err := add(SectionAbout, about); err != nil {
			return nil, err
		}
	}

	lists := []struct {
		name    string
		records []types.Record
	}{
		{SectionExperience, m.Experience},
		{SectionEducation, m.Education},
		{SectionCertifications, m.Certifications},
		{SectionPublications, m.Publications},
		{SectionAwards, m.Awards},
	}
	for _, l := range lists {
		if len(l.records) == 0 {
			continue
		}
		if err := add(l.name, l.records); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

func recordDescription(r types.Record) string {
	if d := r.String("description"); d != "" {
		return d
	}
	return strings.Join(stringsOf(r["description"]), "\n")
}

func stringsOf(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func isGitHubURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "github.com"
}

// usernameFromURL extracts the account handle from a profile URL.
func usernameFromURL(platform, raw string) string {
	if platform == types.PlatformWebsite {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	// linkedin.com/in/<handle>, leetcode.com/u/<handle>
	if (parts[0] == "in" || parts[0] == "u") && len(parts) > 1 {
		return strings.TrimPrefix(parts[1], "@")
	}
	return strings.TrimPrefix(parts[0], "@")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
