package crew

import (
	"encoding/json"
	"strings"
)

// ResponseFormatJSON is the declared response format for models configured
// to emit a structured JSON object.
const ResponseFormatJSON = "json_object"

// ParseResponse converts raw model output into a Message according to the
// declared response format. Parsing never fails: any malformed payload
// degrades to the raw text passed through unchanged, so a bad model turn
// flows into the review loop instead of aborting the workflow.
//
// For the json_object format the conventions are, in order:
//  1. a top-level "response" key holds the payload (string or object);
//  2. a JSON-Schema-shaped object ("type" plus properties.response.description)
//     yields the description string;
//  3. anything else passes through as raw text.
//
// Models routinely wrap JSON in markdown code fences; those are stripped
// before parsing.
func ParseResponse(content string, responseFormat string) Message {
	if responseFormat != ResponseFormatJSON {
		return TextMessage(content)
	}

	stripped := stripCodeFences(content)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripped), &parsed); err != nil {
		return TextMessage(content)
	}

	if response, ok := parsed["response"]; ok && response != nil {
		switch v := response.(type) {
		case string:
			return TextMessage(v)
		case map[string]any:
			return StructuredMessage(v)
		}
	}

	if t, ok := parsed["type"].(string); ok && (t == "string" || t == "object") {
		if desc, ok := schemaDescription(parsed); ok {
			return TextMessage(desc)
		}
		return TextMessage(content)
	}

	// Valid JSON but no recognized envelope: pass the raw text through.
	return TextMessage(content)
}

// schemaDescription digs properties.response.description out of a
// JSON-Schema-shaped payload.
func schemaDescription(parsed map[string]any) (string, bool) {
	props, ok := parsed["properties"].(map[string]any)
	if !ok {
		return "", false
	}
	response, ok := props["response"].(map[string]any)
	if !ok {
		return "", false
	}
	desc, ok := response["description"].(string)
	return desc, ok
}

// stripCodeFences removes a surrounding markdown code block, if present.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
