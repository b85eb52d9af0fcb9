package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, Timeout: timeout}, logger.Discard())
	require.NoError(t, err)
	return c
}

func TestClientChatForwardsRequest(t *testing.T) {
	var got Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, defaultOrigin, r.Header.Get("Origin"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"final_message":"Go with a front-mount."}`))
	}))
	defer upstream.Close()

	c := newTestClient(t, upstream.URL+"/", 0)
	reply, err := c.Chat(context.Background(), Request{Query: "intercooler?", UserID: "u1", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, Request{Query: "intercooler?", UserID: "u1", SessionID: "s1"}, got)
	assert.Equal(t, Reply{Text: "Go with a front-mount.", Shape: ShapeFinalMessage}, reply)
}

func TestClientChatUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error field", http.StatusTooManyRequests, `{"error":"rate limited"}`, "rate limited"},
		{"json without error field", http.StatusBadRequest, `{"detail":"x"}`, "upstream error: 400"},
		{"non json body", http.StatusBadGateway, `<html>bad gateway</html>`, "upstream error: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer upstream.Close()

			_, err := newTestClient(t, upstream.URL, 0).Chat(context.Background(), Request{Query: "q", UserID: "u", SessionID: "s"})
			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.status, upErr.StatusCode)
			assert.Equal(t, tt.wantMsg, upErr.Message)
		})
	}
}

func TestClientChatEmptyReply(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no content", http.StatusNoContent, ""},
		{"blank body", http.StatusOK, "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer upstream.Close()

			_, err := newTestClient(t, upstream.URL, 0).Chat(context.Background(), Request{Query: "q", UserID: "u", SessionID: "s"})
			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
			assert.Equal(t, EmptyReplyMessage, upErr.Message)
		})
	}
}

func TestClientChatUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	_, err := newTestClient(t, url, 0).Chat(context.Background(), Request{Query: "q", UserID: "u", SessionID: "s"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientChatTimeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	_, err := newTestClient(t, upstream.URL, 50*time.Millisecond).Chat(context.Background(), Request{Query: "q", UserID: "u", SessionID: "s"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, logger.Discard())
	assert.Error(t, err)
}
