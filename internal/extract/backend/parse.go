package backend

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseOutcome is either ParseSuccess or ParseFailure.
type ParseOutcome interface {
	parseOutcome()
}

type ParseSuccess struct {
	Payload map[string]any
}

type ParseFailure struct {
	Reason string
}

func (ParseSuccess) parseOutcome() {}
func (ParseFailure) parseOutcome() {}

var (
	fencedJSON    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// Parse recovers the JSON object from a model response. Models wrap JSON
// in code fences, prepend prose and leak raw newlines into strings, so the
// text is cleaned before decoding. Trailing commas get a second pass.
func Parse(raw string) ParseOutcome {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ParseFailure{Reason: "empty response"}
	}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ParseFailure{Reason: "no JSON object in response"}
	}
	text = sanitize(text[start : end+1])

	var payload map[string]any
	err := json.Unmarshal([]byte(text), &payload)
	if err != nil {
		err = json.Unmarshal([]byte(trailingComma.ReplaceAllString(text, "$1")), &payload)
	}
	if err != nil {
		return ParseFailure{Reason: err.Error()}
	}
	if payload == nil {
		return ParseFailure{Reason: "null payload"}
	}
	return ParseSuccess{Payload: payload}
}

// sanitize drops control characters outside string literals and turns raw
// tabs and line breaks inside them into spaces.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\t' || r == '\n' || r == '\r':
				b.WriteByte(' ')
				continue
			case r < 0x20 || r == 0x7f:
				continue
			}
			b.WriteRune(r)
			continue
		}
		if r == '"' {
			inString = true
		}
		if (r < 0x20 && r != '\n' && r != '\r' && r != '\t') || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
