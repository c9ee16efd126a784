package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/types"
)

var (
	githubPattern   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_-]+`)
	linkedinPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+`)
	twitterPattern  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?\b(?:twitter|x)\.com/[A-Za-z0-9_]+`)
	leetcodePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?leetcode\.com/(?:u/)?[A-Za-z0-9_-]+`)
	urlPattern      = regexp.MustCompile(`(?i)https?://[^\s,;()<>"']+`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d \t().-]{8,}\d`)
)

// knownHosts are excluded from the generic website match.
var knownHosts = []string{"github.com", "linkedin.com", "twitter.com", "x.com", "leetcode.com"}

// ExtractSocialLinks scans raw resume text for profile links. Platforms with
// no match are absent from the result.
func ExtractSocialLinks(text string) types.SocialLinks {
	links := types.SocialLinks{}

	for platform, pattern := range map[string]*regexp.Regexp{
		types.PlatformGitHub:   githubPattern,
		types.PlatformLinkedIn: linkedinPattern,
		types.PlatformTwitter:  twitterPattern,
		types.PlatformLeetCode: leetcodePattern,
	} {
		if m := pattern.FindString(text); m != "" {
			links[platform] = withScheme(m)
		}
	}

	for _, m := range urlPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".")
		if !isKnownHost(m) {
			links[types.PlatformWebsite] = m
			break
		}
	}

	return links
}

// FindEmail returns the first email address in text.
func FindEmail(text string) string {
	return emailPattern.FindString(text)
}

// FindPhone returns the first phone-number-like sequence with 10 to 15 digits.
func FindPhone(text string) string {
	for _, m := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func withScheme(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}

func isKnownHost(link string) bool {
	host := strings.ToLower(link)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	for _, known := range knownHosts {
		if host == known || strings.HasSuffix(host, "."+known) {
			return true
		}
	}
	return false
}
