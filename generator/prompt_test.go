package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRecipePrompt(t *testing.T) {
	p := BuildRecipePrompt(Request{Mood: "stressed", Age: 42, City: "Kolkata"})

	assert.Equal(t, systemPrompt, p.System)
	assert.Contains(t, p.User, "- Feeling: stressed\n")
	assert.Contains(t, p.User, "- Age: 42 years old")
	assert.Contains(t, p.User, "Kolkata, India")
	assert.Contains(t, p.User, `"mood": "stressed"`)
	assert.Contains(t, p.User, "Return ONLY the JSON object")
}
