package crew

import "testing"

func TestParseResponse(t *testing.T) {
	t.Run("text format passes through", func(t *testing.T) {
		msg := ParseResponse("plain text", "text")
		if msg.Text != "plain text" || msg.Fields != nil {
			t.Fatalf("msg = %+v", msg)
		}
	})

	t.Run("response key with string payload", func(t *testing.T) {
		msg := ParseResponse(`{"response": "the answer"}`, ResponseFormatJSON)
		if msg.Text != "the answer" {
			t.Fatalf("msg = %+v", msg)
		}
	})

	t.Run("response key with object payload", func(t *testing.T) {
		msg := ParseResponse(`{"response": {"pass_review": true}}`, ResponseFormatJSON)
		if !msg.PassReview() {
			t.Fatalf("msg = %+v, want passing verdict", msg)
		}
	})

	t.Run("fenced json is unwrapped", func(t *testing.T) {
		msg := ParseResponse("```json\n{\"response\": \"fenced\"}\n```", ResponseFormatJSON)
		if msg.Text != "fenced" {
			t.Fatalf("msg = %+v", msg)
		}
	})

	t.Run("schema shape yields description", func(t *testing.T) {
		content := `{"type": "string", "properties": {"response": {"description": "from schema"}}}`
		msg := ParseResponse(content, ResponseFormatJSON)
		if msg.Text != "from schema" {
			t.Fatalf("msg = %+v", msg)
		}
	})

	t.Run("malformed json degrades to raw text", func(t *testing.T) {
		msg := ParseResponse("not json at all", ResponseFormatJSON)
		if msg.Text != "not json at all" {
			t.Fatalf("msg = %+v", msg)
		}
	})

	t.Run("unrecognized envelope degrades to raw text", func(t *testing.T) {
		content := `{"something": "else"}`
		msg := ParseResponse(content, ResponseFormatJSON)
		if msg.Text != content {
			t.Fatalf("msg = %+v", msg)
		}
	})
}
