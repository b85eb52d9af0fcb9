package chat

import (
	"context"
	"net/http"
	"testing"

	domain "github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/internal/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SessionLifecycle(t *testing.T) {
	srv := apitest.NewServer(t)
	client, err := NewClient(srv.URL, Options{})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "u1", "session_1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTitle, created.Title)

	_, err = client.CreateSession(ctx, "u1", "session_1", "")
	assert.ErrorIs(t, err, ErrConflict)

	messages := []domain.Message{
		domain.NewMessage(domain.SenderUser, "Best brake pads?"),
		domain.NewMessage(domain.SenderAgent, "Ceramic for the street."),
	}
	saved, err := client.SaveMessages(ctx, "u1", "session_1", messages)
	require.NoError(t, err)
	assert.Equal(t, "Best brake pads?", saved.Title)

	got, err := client.GetSession(ctx, "u1", "session_1")
	require.NoError(t, err)
	assert.Equal(t, messages, got.Messages)

	list, err := client.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, client.DeleteSession(ctx, "u1", "session_1"))
	_, err = client.GetSession(ctx, "u1", "session_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Ask(t *testing.T) {
	srv := apitest.NewServer(t)
	client, err := NewClient(srv.URL, Options{})
	require.NoError(t, err)

	reply, err := client.Ask(context.Background(), "u1", "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, Reply{Message: "echo", Source: "message"}, reply)

	srv.SetUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = client.Ask(context.Background(), "u1", "s1", "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream error: 502", apiErr.Message)
}

func TestClient_ValidationErrorKeepsDetails(t *testing.T) {
	srv := apitest.NewServer(t)
	client, err := NewClient(srv.URL, Options{})
	require.NoError(t, err)

	_, err = client.SaveMessages(context.Background(), "u1", "s1", []domain.Message{{Sender: "robot", Text: "x"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "sender")
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url", Options{})
	assert.Error(t, err)
}
