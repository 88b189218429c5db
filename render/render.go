// Package render turns recipe instruction text into HTML.
package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// Steps that the model ran together on one line: "1. Rinse 2. Boil".
var inlineStepRe = regexp.MustCompile(`\s+(\d+\.\s)`)

// md ignores raw HTML in the input, so model text cannot inject markup.
var md = goldmark.New()

// Instructions renders the enumerated instructions as an HTML ordered list.
func Instructions(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(normalizeSteps(text)), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// normalizeSteps puts each "N. " step on its own line.
func normalizeSteps(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if strings.Contains(text, "\n") {
		return text
	}
	return inlineStepRe.ReplaceAllString(text, "\n$1")
}
