package resume

import (
	"testing"

	"github.com/jonathan/portfolio-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestExtractSocialLinks(t *testing.T) {
	text := `Jane Doe | https://github.com/janedoe | linkedin.com/in/jane-doe
Twitter: x.com/jane_codes  LeetCode: https://leetcode.com/u/jane
Portfolio: https://jane.dev/work.`

	links := ExtractSocialLinks(text)

	assert.Equal(t, "https://github.com/janedoe", links[types.PlatformGitHub])
	assert.Equal(t, "https://linkedin.com/in/jane-doe", links[types.PlatformLinkedIn])
	assert.Equal(t, "https://x.com/jane_codes", links[types.PlatformTwitter])
	assert.Equal(t, "https://leetcode.com/u/jane", links[types.PlatformLeetCode])
	assert.Equal(t, "https://jane.dev/work", links[types.PlatformWebsite])
}

func TestExtractSocialLinks_NoLinks(t *testing.T) {
	links := ExtractSocialLinks("Jane Doe\njane@x.com\nSkills: Python, Go")

	for _, platform := range types.Platforms {
		_, ok := links[platform]
		assert.False(t, ok, platform)
	}
}

func TestExtractSocialLinks_WebsiteSkipsKnownPlatforms(t *testing.T) {
	links := ExtractSocialLinks("https://www.linkedin.com/in/jane https://blog.jane.io")

	assert.Equal(t, "https://blog.jane.io", links[types.PlatformWebsite])
	assert.Equal(t, "https://www.linkedin.com/in/jane", links[types.PlatformLinkedIn])
}

func TestFindPhone(t *testing.T) {
	assert.Equal(t, "+91 9876543210", FindPhone("Call +91 9876543210 today"))
	assert.Equal(t, "555-123-4567", FindPhone("Phone: 555-123-4567"))
	assert.Equal(t, "", FindPhone("Acme Corp, 2019 - 2021"))
}

func TestFindEmail(t *testing.T) {
	assert.Equal(t, "jane.doe+cv@mail.example.org", FindEmail("Contact: jane.doe+cv@mail.example.org"))
	assert.Equal(t, "", FindEmail("no email"))
}
