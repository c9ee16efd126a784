// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/portfolio-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items under a heading, followed by a
// "... and N more" line when the list is longer.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

func writeContact(sb *strings.Builder, name, email, location string) {
	if name != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	}
	if email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", email))
	}
	if location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", location))
	}
}

func recordTitles(records []types.Record, keys ...string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		var parts []string
		for _, k := range keys {
			if v := r.String(k); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " @ "))
		}
	}
	return out
}

// PrintResumeProfile outputs a human-readable summary of an extracted resume.
func (p *Printer) PrintResumeProfile(profile *types.ResumeProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	writeContact(&sb, profile.Name, profile.Email, profile.Location)
	sb.WriteString("\n")
	writeList(&sb, "Technical Skills", profile.TechnicalSkills, maxItemsToShow)
	writeList(&sb, "Experience", recordTitles(profile.Experience, "title", "company"), maxItemsToShow)
	writeList(&sb, "Education", recordTitles(profile.Education, "degree", "institution"), 3)

	p.printBox("EXTRACTED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGitHubProfile outputs the synthesized GitHub profile.
func (p *Printer) PrintGitHubProfile(profile *types.GitHubProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	writeContact(&sb, profile.Name, "", "")
	if url := profile.Social[types.PlatformGitHub]; url != "" {
		sb.WriteString(fmt.Sprintf("Profile:  %s\n", url))
	}
	sb.WriteString("\n")
	writeList(&sb, "Technical Skills", profile.TechnicalSkills, maxItemsToShow)

	projects := make([]string, 0, len(profile.Projects))
	for _, proj := range profile.Projects {
		line := proj.Name
		if len(proj.Technologies) > 0 {
			line += " [" + strings.Join(proj.Technologies, ", ") + "]"
		}
		projects = append(projects, line)
	}
	writeList(&sb, "Projects", projects, maxItemsToShow)

	p.printBox("GITHUB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMergedProfile outputs the merged profile with any enhancement headline.
func (p *Printer) PrintMergedProfile(profile *types.MergedProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	writeContact(&sb, profile.Name, profile.Email, profile.Location)
	if profile.Headline != "" {
		sb.WriteString(fmt.Sprintf("Headline: %s\n", profile.Headline))
	}
	sb.WriteString(fmt.Sprintf("\nSkills: %d  Experience: %d  Projects: %d\n\n",
		len(profile.TechnicalSkills), len(profile.Experience), len(profile.Projects)))

	links := make([]string, 0, len(profile.Social))
	for _, platform := range types.Platforms {
		if url, ok := profile.Social[platform]; ok {
			links = append(links, platform+": "+url)
		}
	}
	writeList(&sb, "Links", links, len(types.Platforms))
	writeList(&sb, "Projects", recordTitles(profile.Projects, "name"), maxItemsToShow)

	p.printBox("MERGED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the score and critique from a hiring-trend analysis.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d/100\n", result.Score))
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", result.Error))
	}
	sb.WriteString("\n")
	writeList(&sb, "Strengths", result.Strengths, 3)
	writeList(&sb, "Weaknesses", result.Weaknesses, 3)
	writeList(&sb, "Missing Keywords", result.MissingKeywords, maxItemsToShow)

	suggestions := make([]string, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		suggestions = append(suggestions, fmt.Sprintf("[%s] %s", s.Section, s.Suggestion))
	}
	writeList(&sb, "Suggestions", suggestions, 3)

	p.printBox("HIRING TREND ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDegraded outputs the build steps that fell back to defaults.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDegraded(degraded []string) {
	if len(degraded) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL STEPS COMPLETED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d steps fell back to defaults:\n\n", len(degraded)))
	for _, d := range degraded {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", d))
	}

	p.printBox("DEGRADED STEPS", strings.TrimSuffix(sb.String(), "\n"))
}
