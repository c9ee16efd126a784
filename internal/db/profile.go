package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetProfileData retrieves the profile row of a portfolio. Returns nil, nil when absent.
func (db *DB) GetProfileData(ctx context.Context, portfolioID uuid.UUID) (*ProfileData, error) {
	var pd ProfileData
	err := db.pool.QueryRow(ctx,
		`SELECT id, portfolio_id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''),
		        COALESCE(location, ''), COALESCE(summary, ''), COALESCE(github_username, ''),
		        github_data, resume_data, merged_data, updated_at
		 FROM profile_data WHERE portfolio_id = $1`,
		portfolioID,
	).Scan(&pd.ID, &pd.PortfolioID, &pd.Name, &pd.Email, &pd.Phone, &pd.Location, &pd.Summary,
		&pd.GitHubUsername, &pd.GitHubData, &pd.ResumeData, &pd.MergedData, &pd.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile data: %w", err)
	}
	return &pd, nil
}

// ListProjects returns a portfolio's projects in insertion order.
func (db *DB) ListProjects(ctx context.Context, portfolioID uuid.UUID) ([]Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, portfolio_id, name, COALESCE(description, ''), COALESCE(url, ''),
		        COALESCE(github_url, ''), technologies, is_featured, created_at
		 FROM projects WHERE portfolio_id = $1 ORDER BY created_at, id`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		var techs []byte
		if err := rows.Scan(&p.ID, &p.PortfolioID, &p.Name, &p.Description, &p.URL,
			&p.GitHubURL, &techs, &p.IsFeatured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Technologies = []string{}
		if len(techs) > 0 {
			_ = json.Unmarshal(techs, &p.Technologies)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListSkills returns a portfolio's skills in insertion order.
func (db *DB) ListSkills(ctx context.Context, portfolioID uuid.UUID) ([]Skill, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, portfolio_id, skill_name, COALESCE(category, ''), created_at
		 FROM skills WHERE portfolio_id = $1 ORDER BY created_at, id`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []Skill{}
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// ListSocialLinks returns a portfolio's social links.
func (db *DB) ListSocialLinks(ctx context.Context, portfolioID uuid.UUID) ([]SocialLink, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, portfolio_id, platform, url, COALESCE(username, '')
		 FROM social_links WHERE portfolio_id = $1 ORDER BY created_at, id`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list social links: %w", err)
	}
	defer rows.Close()

	links := []SocialLink{}
	for rows.Next() {
		var l SocialLink
		if err := rows.Scan(&l.ID, &l.PortfolioID, &l.Platform, &l.URL, &l.Username); err != nil {
			return nil, fmt.Errorf("failed to scan social link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ListSections returns a portfolio's visible sections by order index.
func (db *DB) ListSections(ctx context.Context, portfolioID uuid.UUID) ([]Section, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, portfolio_id, section_type, content, order_index, is_visible
		 FROM portfolio_sections WHERE portfolio_id = $1 AND is_visible = TRUE
		 ORDER BY order_index`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.SectionType, &s.Content, &s.OrderIndex, &s.IsVisible); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetPortfolioProfile assembles the read model of a portfolio. The profile is
// nil when no build has been saved yet. Returns nil, nil for unknown portfolios.
func (db *DB) GetPortfolioProfile(ctx context.Context, portfolioID uuid.UUID) (*PortfolioProfile, error) {
	p, err := db.GetPortfolio(ctx, portfolioID)
	if err != nil || p == nil {
		return nil, err
	}
	return db.loadProfile(ctx, p)
}

// GetPublicPortfolioProfile is GetPortfolioProfile addressed by public slug.
func (db *DB) GetPublicPortfolioProfile(ctx context.Context, slug string) (*PortfolioProfile, error) {
	p, err := db.GetPublicPortfolioBySlug(ctx, slug)
	if err != nil || p == nil {
		return nil, err
	}
	return db.loadProfile(ctx, p)
}

func (db *DB) loadProfile(ctx context.Context, p *Portfolio) (*PortfolioProfile, error) {
	result := &PortfolioProfile{Portfolio: *p}

	pd, err := db.GetProfileData(ctx, p.ID)
	if err != nil || pd == nil {
		return result, err
	}
	skills, err := db.ListSkills(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	projects, err := db.ListProjects(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	links, err := db.ListSocialLinks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sections, err := db.ListSections(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	result.Profile = AssembleProfile(pd, skills, projects, links, sections)
	return result, nil
}

// AssembleProfile builds the public profile view from stored rows.
// Skills without a category count as technical.
func AssembleProfile(pd *ProfileData, skills []Skill, projects []Project, links []SocialLink, sections []Section) *ProfileView {
	view := &ProfileView{
		Name:           pd.Name,
		Email:          pd.Email,
		Phone:          pd.Phone,
		Location:       pd.Location,
		Summary:        pd.Summary,
		GitHubUsername: pd.GitHubUsername,
		AllSkills:      map[string][]string{},
		Projects:       projects,
		Social:         map[string]SocialLinkView{},
		Sections:       map[string]json.RawMessage{},
		GitHubData:     pd.GitHubData,
		ResumeData:     pd.ResumeData,
		MergedData:     pd.MergedData,
	}
	if view.Projects == nil {
		view.Projects = []Project{}
	}

	for _, s := range skills {
		category := s.Category
		if category == "" {
			category = SkillTechnical
		}
		view.AllSkills[category] = append(view.AllSkills[category], s.Name)
	}
	view.TechnicalSkills = skillList(view.AllSkills, SkillTechnical)
	view.SoftSkills = skillList(view.AllSkills, SkillSoft)
	view.Languages = skillList(view.AllSkills, SkillLanguage)

	for _, l := range links {
		view.Social[l.Platform] = SocialLinkView{URL: l.URL, Username: l.Username}
	}
	for _, s := range sections {
		if s.IsVisible {
			view.Sections[s.SectionType] = s.Content
		}
	}
	return view
}

func skillList(all map[string][]string, category string) []string {
	if s, ok := all[category]; ok {
		return s
	}
	return []string{}
}
