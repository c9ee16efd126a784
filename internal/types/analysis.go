package types

// Suggestion sections accepted by the analysis rubric.
const (
	SectionExperience = "Experience"
	SectionProjects   = "Projects"
	SectionSkills     = "Skills"
	SectionSummary    = "Summary"
	SectionContact    = "Contact"
	SectionGeneral    = "General"
)

// AnalysisResult is a recruiter-oriented critique of a profile.
// Score is always within [0,100] and list fields are never nil.
type AnalysisResult struct {
	Score                int          `json:"score"`
	HiringTrendsAnalysis string       `json:"hiring_trends_analysis"`
	Strengths            []string     `json:"strengths"`
	Weaknesses           []string     `json:"weaknesses"`
	Suggestions          []Suggestion `json:"suggestions"`
	MissingKeywords      []string     `json:"missing_keywords"`
	Error                string       `json:"error,omitempty"`
}

// Suggestion is a single actionable improvement.
type Suggestion struct {
	Section    string `json:"section"`
	Current    string `json:"current"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// NewAnalysisResult returns the default result with empty collections.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Suggestions:     []Suggestion{},
		MissingKeywords: []string{},
	}
}

// EnhancementResult carries rewritten, impact-oriented content for a merged profile.
type EnhancementResult struct {
	Headline        string               `json:"headline"`
	EnhancedSummary string               `json:"enhanced_summary"`
	Experience      []EnhancedExperience `json:"experience"`
	Projects        []EnhancedProject    `json:"projects"`
}

// EnhancedExperience holds rewritten bullets for one experience entry.
type EnhancedExperience struct {
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	EnhancedDescription StringList `json:"enhanced_description"`
}

// EnhancedProject holds rewritten bullets for one project.
type EnhancedProject struct {
	Name                string     `json:"name"`
	EnhancedDescription StringList `json:"enhanced_description"`
}
