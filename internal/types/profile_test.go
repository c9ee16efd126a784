package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResumeProfile_CollectionsNonNil(t *testing.T) {
	p := NewResumeProfile()

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, field := range []string{
		"technicalSkills", "softSkills", "languages",
		"experience", "education", "projects", "certifications", "publications", "awards",
	} {
		assert.Equal(t, []any{}, decoded[field], field)
	}
	assert.Equal(t, map[string]any{}, decoded["social"])
}

func TestGitHubProfile_EnsureCollections(t *testing.T) {
	g := &GitHubProfile{Projects: []Project{{Name: "cli"}}}
	g.EnsureCollections()

	assert.NotNil(t, g.Social)
	assert.NotNil(t, g.TechnicalSkills)
	assert.NotNil(t, g.Projects[0].Technologies)
}

func TestProject_Record(t *testing.T) {
	r := Project{Name: "cli", URL: "https://github.com/octocat/cli", Technologies: []string{"Go"}}.Record()

	assert.Equal(t, "cli", r.String("name"))
	assert.Equal(t, "https://github.com/octocat/cli", r.String("url"))
	assert.Equal(t, []any{"Go"}, r["technologies"])
}

func TestRecord_String(t *testing.T) {
	r := Record{"title": "Engineer", "years": 3}

	assert.Equal(t, "Engineer", r.String("title"))
	assert.Equal(t, "", r.String("years"))
	assert.Equal(t, "", r.String("missing"))
}

func TestMergedProfile_CloneIsDeep(t *testing.T) {
	orig := &MergedProfile{
		Name:            "Jane",
		Social:          SocialLinks{PlatformGitHub: "https://github.com/jane"},
		TechnicalSkills: []string{"Go"},
		Experience: []Record{{
			"title":   "Engineer",
			"details": map[string]any{"team": "payments"},
			"tags":    []any{"backend"},
		}},
	}

	c := orig.Clone()
	c.Social[PlatformLinkedIn] = "https://linkedin.com/in/jane"
	c.TechnicalSkills[0] = "Rust"
	c.Experience[0]["title"] = "Staff Engineer"
	c.Experience[0]["details"].(map[string]any)["team"] = "search"
	c.Experience[0]["tags"].([]any)[0] = "frontend"

	assert.Len(t, orig.Social, 1)
	assert.Equal(t, "Go", orig.TechnicalSkills[0])
	assert.Equal(t, "Engineer", orig.Experience[0].String("title"))
	assert.Equal(t, "payments", orig.Experience[0]["details"].(map[string]any)["team"])
	assert.Equal(t, "backend", orig.Experience[0]["tags"].([]any)[0])
	assert.NotNil(t, c.Education)
}

func TestMergedProfile_CloneNil(t *testing.T) {
	var m *MergedProfile
	assert.Nil(t, m.Clone())
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  StringList
	}{
		{name: "array", input: `["Led migration", "Cut latency 40%"]`, want: StringList{"Led migration", "Cut latency 40%"}},
		{name: "single string", input: `"  Led migration "`, want: StringList{"Led migration"}},
		{name: "blank string", input: `"   "`, want: StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestNewAnalysisResult_Defaults(t *testing.T) {
	r := NewAnalysisResult()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"score": 0,
		"hiring_trends_analysis": "",
		"strengths": [],
		"weaknesses": [],
		"suggestions": [],
		"missing_keywords": []
	}`, string(data))
}
