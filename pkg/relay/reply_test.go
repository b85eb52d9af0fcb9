package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Reply
	}{
		{"message field", `{"message":"Use 93 octane."}`, Reply{Text: "Use 93 octane.", Shape: ShapeMessage}},
		{"final_message fallback", `{"final_message":"Upgrade the intake."}`, Reply{Text: "Upgrade the intake.", Shape: ShapeFinalMessage}},
		{"message preferred over final_message", `{"final_message":"b","message":"a"}`, Reply{Text: "a", Shape: ShapeMessage}},
		{"empty message falls through", `{"message":"","final_message":"b"}`, Reply{Text: "b", Shape: ShapeFinalMessage}},
		{"non string message falls through", `{"message":{"text":"a"}}`, Reply{Text: `{"message":{"text":"a"}}`, Shape: ShapeRaw}},
		{"unknown fields", `{"answer":"x"}`, Reply{Text: `{"answer":"x"}`, Shape: ShapeRaw}},
		{"json array", `["a","b"]`, Reply{Text: `["a","b"]`, Shape: ShapeRaw}},
		{"plain text", "hello there\n", Reply{Text: "hello there", Shape: ShapeRaw}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReply([]byte(tt.body)))
		})
	}
}

func TestParseUpstreamError(t *testing.T) {
	msg, ok := parseUpstreamError([]byte(`{"error":"quota exceeded"}`))
	assert.True(t, ok)
	assert.Equal(t, "quota exceeded", msg)

	msg, ok = parseUpstreamError([]byte(`{"error":{"message":"bad input"}}`))
	assert.True(t, ok)
	assert.Equal(t, "bad input", msg)

	_, ok = parseUpstreamError([]byte(`{"detail":"nope"}`))
	assert.False(t, ok)

	_, ok = parseUpstreamError([]byte(`<html>502</html>`))
	assert.False(t, ok)
}
