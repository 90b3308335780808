package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Growth Playbook 2024":        "growth-playbook-2024",
		"  Café  Crème  ":             "cafe-creme",
		"SEO & Content -- Strategy!":  "seo-content-strategy",
		"Über naïve résumé":           "uber-naive-resume",
		"???":                         "",
		"already-a-slug":              "already-a-slug",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestMakeTruncates(t *testing.T) {
	got := Make(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(got), maxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("web-design"))
	assert.False(t, Valid("Web Design"))
	assert.False(t, Valid(""))
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "post", WithSuffix("post", 1))
	assert.Equal(t, "post-3", WithSuffix("post", 3))
	long := strings.Repeat("a", maxLength)
	assert.Len(t, WithSuffix(long, 12), maxLength)
}
