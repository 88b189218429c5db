package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FormatError reports model output that could not be turned into a Draft.
type FormatError struct {
	// Text is the text that was last attempted.
	Text string
	// Missing lists required keys absent from an otherwise parseable object.
	Missing []string
	// Err is the parser or decoder diagnostic, if any.
	Err error
}

func (e *FormatError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "model response missing required fields: " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		return "model response is not a valid recipe: " + e.Err.Error()
	default:
		return "model response is not a valid recipe"
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

// Textual repairs for the malformations models actually emit. They run
// globally over the string, in this order.
var (
	quoteNewlineQuoteRe = regexp.MustCompile(`"([ \t\r]*\n\s*)"`)
	quoteNewlineRe      = regexp.MustCompile(`"([ \t\r]*\n)`)
	valueNewlineKeyRe   = regexp.MustCompile(`([\]}0-9]|true|false|null)([ \t\r]*\n\s*")`)
	trailingCommaRe     = regexp.MustCompile(`,(\s*[}\]])`)
)

var errNotObject = errors.New("response is not a JSON object")

// Normalize 把模型返回的原始文本整理成 Draft。
// Every failure is a *FormatError.
func Normalize(raw string) (Draft, error) {
	stripped := stripWrapping(raw)
	text, err := parseObject(stripped)
	if err != nil {
		if text, err = repairObject(stripped); err != nil {
			return Draft{}, &FormatError{Text: text, Err: err}
		}
	}

	text, err = coercePrepTime(text)
	if err != nil {
		return Draft{}, &FormatError{Text: text, Err: err}
	}

	if missing := missingFields(text); len(missing) > 0 {
		return Draft{}, &FormatError{Text: text, Missing: missing}
	}

	var d Draft
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return Draft{}, &FormatError{Text: text, Err: err}
	}
	if strings.TrimSpace(d.Name) == "" {
		return Draft{}, &FormatError{Text: text, Missing: []string{"name"}}
	}
	if d.Ingredients == nil {
		d.Ingredients = []string{}
	}
	return d, nil
}

// stripWrapping removes a leading "JSON" label and markdown code fences.
func stripWrapping(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = strings.TrimSpace(s[4:])
	}
	if strings.HasPrefix(s, "```") {
		s = strings.Trim(s, "`")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// repairObject runs the repairs over each {...} span of s, outermost
// first, and returns the first one that parses. Prose around the object,
// braces in it included, is dropped. Without any span, s itself is repaired.
func repairObject(s string) (string, error) {
	var starts, ends []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			starts = append(starts, i)
		case '}':
			ends = append(ends, i)
		}
	}

	var (
		firstText string
		firstErr  error
	)
	for _, start := range starts {
		for j := len(ends) - 1; j >= 0 && ends[j] > start; j-- {
			span := repair(s[start : ends[j]+1])
			text, err := parseObject(span)
			if err == nil {
				return text, nil
			}
			if firstErr == nil {
				firstText, firstErr = span, err
			}
		}
	}
	if firstErr != nil {
		return firstText, firstErr
	}
	return parseObject(repair(s))
}

func repair(s string) string {
	s = quoteNewlineQuoteRe.ReplaceAllString(s, `",$1"`)
	s = quoteNewlineRe.ReplaceAllString(s, `",$1`)
	s = valueNewlineKeyRe.ReplaceAllString(s, `$1,$2`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	return s
}

// parseObject decodes s as a JSON object and returns it re-encoded. The
// re-encoded text has one value per key (the last, as encoding/json keeps),
// so the gjson lookups below see the same values the final decode does.
func parseObject(s string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s, err
	}
	if obj == nil {
		return s, errNotObject
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return s, err
	}
	return strings.TrimSpace(buf.String()), nil
}

// coercePrepTime turns a numeric prepTime into "<n> minutes".
func coercePrepTime(s string) (string, error) {
	pt := gjson.Get(s, "prepTime")
	if pt.Type != gjson.Number {
		return s, nil
	}
	return sjson.Set(s, "prepTime", pt.Raw+" minutes")
}

func missingFields(s string) []string {
	var missing []string
	for _, key := range requiredFields {
		if !gjson.Get(s, key).Exists() {
			missing = append(missing, key)
		}
	}
	return missing
}
