package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are an Indian home-cooking assistant. Reply with a single JSON object and nothing else."

// BuildRecipePrompt 生成菜谱提示词。
func BuildRecipePrompt(req Request) Prompt {
	var sb strings.Builder
	sb.WriteString("Generate an Indian recipe suitable for someone who is:\n")
	sb.WriteString(fmt.Sprintf("- Feeling: %s\n", req.Mood))
	sb.WriteString(fmt.Sprintf("- Age: %d years old\n", req.Age))
	sb.WriteString(fmt.Sprintf("- Location: %s, India\n\n", req.City))

	sb.WriteString("Create a recipe that:\n")
	sb.WriteString(fmt.Sprintf("1. Uses ingredients commonly available in %s\n", req.City))
	sb.WriteString(fmt.Sprintf("2. Matches the mood '%s'\n", req.Mood))
	sb.WriteString(fmt.Sprintf("3. Is age-appropriate for %d years old\n", req.Age))
	sb.WriteString("4. Reflects local Indian cooking styles\n\n")

	sb.WriteString("Format the response EXACTLY as a JSON object with this structure:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"name\": \"Recipe Name (include Indian name if applicable)\",\n")
	sb.WriteString("    \"prepTime\": \"preparation time in minutes\",\n")
	sb.WriteString("    \"ingredients\": [\n")
	sb.WriteString("        \"ingredient 1 with quantity\",\n")
	sb.WriteString("        \"ingredient 2 with quantity\"\n")
	sb.WriteString("    ],\n")
	sb.WriteString("    \"instructions\": \"1. First step\\n2. Second step\\n3. Third step\",\n")
	sb.WriteString(fmt.Sprintf("    \"mood\": %q\n", req.Mood))
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object without any additional text or formatting.")

	return Prompt{
		System: systemPrompt,
		User:   sb.String(),
	}
}
