package mcq

import (
	"bytes"
	"encoding/json"
	"strings"

	"mcqengine/internal/models"
)

// InvalidJSON is the error text carried by an ErrorRecord
const InvalidJSON = "Invalid JSON"

// requiredKeys must all be present for a parsed object to count as an MCQ
var requiredKeys = []string{"reasoning", "statement", "options", "answer"}

// JSONObjects returns every complete, correctly nested top-level {...} object
// in text, in order of appearance. Braces inside JSON strings are ignored. An
// opening brace that is never closed is skipped and scanning resumes after it.
func JSONObjects(text string) []string {
	var objects []string
	for i := 0; i < len(text); {
		j := strings.IndexByte(text[i:], '{')
		if j < 0 {
			break
		}
		start := i + j
		end := objectEnd(text, start)
		if end < 0 {
			i = start + 1
			continue
		}
		objects = append(objects, text[start:end+1])
		i = end + 1
	}
	return objects
}

// objectEnd returns the index of the brace closing the object opened at start, or -1.
func objectEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// LastJSONObject tries the objects found in text from last to first and
// returns the first one that parses.
func LastJSONObject(text string) (map[string]json.RawMessage, bool) {
	objects := JSONObjects(text)
	for i := len(objects) - 1; i >= 0; i-- {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(objects[i]), &obj); err == nil {
			return obj, true
		}
	}
	return nil, false
}

// ParseMCQ extracts an MCQ from raw model output. Anything short of an
// object with all required keys, correctly typed and with a non-empty
// statement, yields an ErrorRecord carrying raw unmodified.
func ParseMCQ(raw string) models.Generated {
	invalid := models.Generated{Err: &models.ErrorRecord{Error: InvalidJSON, Raw: raw}}

	obj, ok := LastJSONObject(raw)
	if !ok {
		return invalid
	}
	for _, k := range requiredKeys {
		if _, ok := obj[k]; !ok {
			return invalid
		}
	}

	var mcq models.MCQ
	if json.Unmarshal(obj["reasoning"], &mcq.Reasoning) != nil ||
		json.Unmarshal(obj["statement"], &mcq.Statement) != nil ||
		json.Unmarshal(obj["options"], &mcq.Options) != nil ||
		json.Unmarshal(obj["answer"], &mcq.Answer) != nil {
		return invalid
	}
	if strings.TrimSpace(mcq.Statement) == "" {
		return invalid
	}
	mcq.Answer = strings.TrimSpace(mcq.Answer)

	return models.Generated{MCQ: &mcq}
}

// ParseGlossary decodes the JSON value starting at the first '{' in raw.
// Trailing text after the object is ignored. Non-string definitions are kept
// as compact JSON.
func ParseGlossary(raw string) (models.Glossary, error) {
	idx := strings.IndexByte(raw, '{')
	if idx < 0 {
		return nil, errNoObject
	}

	var obj map[string]json.RawMessage
	if err := json.NewDecoder(strings.NewReader(raw[idx:])).Decode(&obj); err != nil {
		return nil, err
	}

	glossary := make(models.Glossary, len(obj))
	for term, val := range obj {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		var def string
		if err := json.Unmarshal(val, &def); err != nil {
			def = compact(val)
		}
		glossary[term] = def
	}
	return glossary, nil
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
