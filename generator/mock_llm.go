package generator

import (
	"context"
	"fmt"
	"regexp"
)

var moodLineRe = regexp.MustCompile(`- Feeling: (.+)`)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// The reply is fenced and uses a numeric prepTime so the normalizer still has work to do.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	mood := "happy"
	if match := moodLineRe.FindStringSubmatch(prompt.User); len(match) == 2 {
		mood = match[1]
	}
	return fmt.Sprintf("```json\n{\n"+
		"  \"name\": \"Masala Khichdi\",\n"+
		"  \"prepTime\": 25,\n"+
		"  \"ingredients\": [\"1 cup rice\", \"1/2 cup moong dal\", \"1 tsp cumin\", \"Salt to taste\"],\n"+
		"  \"instructions\": \"1. Rinse rice and dal\\n2. Temper cumin in ghee\\n3. Pressure cook with 4 cups water for 3 whistles\",\n"+
		"  \"mood\": %q\n"+
		"}\n```", mood), nil
}
