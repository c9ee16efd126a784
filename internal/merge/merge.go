// Package merge combines resume and GitHub profiles into one portfolio profile.
package merge

import (
	"strings"

	"github.com/jonathan/portfolio-builder/internal/types"
)

// Merge combines a resume profile and a GitHub profile. Either may be nil.
// The result never aliases either input.
//
// Resume data is authoritative. Its name passes through unchanged, its summary
// wins when non-empty, its projects win on a case-insensitive name collision,
// and its social links override GitHub's. Technical skills are the exact-match union, resume skills first.
func Merge(resume *types.ResumeProfile, gh *types.GitHubProfile) *types.MergedProfile {
	switch {
	case resume == nil && gh == nil:
		m := &types.MergedProfile{}
		m.EnsureCollections()
		return m
	case gh == nil:
		return FromResume(resume)
	case resume == nil:
		return FromGitHub(gh)
	}

	m := FromResume(resume)

	if m.Summary == "" {
		m.Summary = gh.Summary
	}

	m.TechnicalSkills = unionStrings(m.TechnicalSkills, gh.TechnicalSkills)

	projects := newOrderedMap()
	for _, p := range m.Projects {
		projects.Add(p.String("name"), p)
	}
	for _, p := range gh.Projects {
		projects.Add(p.Name, p.Record())
	}
	m.Projects = projects.Values()

	social := gh.Social.Clone()
	for k, v := range resume.Social {
		social[k] = v
	}
	m.Social = social

	return m
}

// FromResume adapts a resume profile to the merged shape.
func FromResume(r *types.ResumeProfile) *types.MergedProfile {
	m := &types.MergedProfile{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Location:        r.Location,
		Summary:         r.Summary,
		Social:          r.Social.Clone(),
		TechnicalSkills: types.CloneStrings(r.TechnicalSkills),
		SoftSkills:      types.CloneStrings(r.SoftSkills),
		Languages:       types.CloneStrings(r.Languages),
		Experience:      types.CloneRecords(r.Experience),
		Education:       types.CloneRecords(r.Education),
		Projects:        types.CloneRecords(r.Projects),
		Certifications:  types.CloneRecords(r.Certifications),
		Publications:    types.CloneRecords(r.Publications),
		Awards:          types.CloneRecords(r.Awards),
	}
	m.EnsureCollections()
	return m
}

// FromGitHub adapts a GitHub profile to the merged shape.
func FromGitHub(g *types.GitHubProfile) *types.MergedProfile {
	m := &types.MergedProfile{
		Name:            g.Name,
		Summary:         g.Summary,
		Social:          g.Social.Clone(),
		TechnicalSkills: types.CloneStrings(g.TechnicalSkills),
		Projects:        make([]types.Record, 0, len(g.Projects)),
	}
	for _, p := range g.Projects {
		m.Projects = append(m.Projects, p.Record())
	}
	m.EnsureCollections()
	return m
}

func unionStrings(primary, secondary []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	out := make([]string, 0, len(primary)+len(secondary))
	for _, list := range [][]string{primary, secondary} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// orderedMap holds records keyed by lower-cased name, iterated in insertion
// order. The first record added under a key is kept. Records without a name
// are always kept.
type orderedMap struct {
	keys   map[string]struct{}
	values []types.Record
}

func newOrderedMap() *orderedMap {
	return &orderedMap{keys: map[string]struct{}{}}
}

// Add inserts rec under name unless the key is already present.
func (o *orderedMap) Add(name string, rec types.Record) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if key != "" {
		if _, exists := o.keys[key]; exists {
			return false
		}
		o.keys[key] = struct{}{}
	}
	o.values = append(o.values, rec)
	return true
}

// Values returns the records in insertion order.
func (o *orderedMap) Values() []types.Record {
	if o.values == nil {
		return []types.Record{}
	}
	return o.values
}
