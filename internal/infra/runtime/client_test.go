package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reminder_relay/internal/domain/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntimeServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func TestClient_InvokeSuccess(t *testing.T) {
	srv, path := newRuntimeServer(t, http.StatusOK, `{"status":"success","result":{"rearmed":3}}`)
	c := NewClient(srv.URL, "reminder_channel_darahaas")

	result, err := c.Invoke(context.Background(), channel.MethodRescheduleNotifications, nil)
	require.NoError(t, err)
	assert.Equal(t, "/channels/reminder_channel_darahaas/methods/rescheduleNotifications", *path)
	assert.Equal(t, map[string]any{"rearmed": float64(3)}, result)
}

func TestClient_InvokeSuccessWithoutResult(t *testing.T) {
	srv, _ := newRuntimeServer(t, http.StatusOK, `{"status":"success"}`)
	c := NewClient(srv.URL, "ch")

	result, err := c.Invoke(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestClient_InvokeErrorReply(t *testing.T) {
	srv, _ := newRuntimeServer(t, http.StatusOK, `{"status":"error","code":"DB_LOCKED","message":"reminder store busy"}`)
	c := NewClient(srv.URL, "ch")

	_, err := c.Invoke(context.Background(), "m", nil)
	var methodErr *channel.MethodError
	require.True(t, errors.As(err, &methodErr))
	assert.Equal(t, "DB_LOCKED", methodErr.Code)
	assert.Equal(t, "reminder store busy", methodErr.Message)
}

func TestClient_InvokeNotImplemented(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
	}{
		{"http 501", http.StatusNotImplemented, ""},
		{"reply status", http.StatusOK, `{"status":"notImplemented"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newRuntimeServer(t, tc.status, tc.body)
			_, err := NewClient(srv.URL, "ch").Invoke(context.Background(), "m", nil)
			assert.ErrorIs(t, err, channel.ErrNotImplemented)
		})
	}
}

func TestClient_InvokeSendsArgs(t *testing.T) {
	var got invokeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "ch").Invoke(context.Background(), "m", map[string]any{"title": "t"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "t"}, got.Args)
}

func TestClient_InvokeTransportFailure(t *testing.T) {
	srv, _ := newRuntimeServer(t, http.StatusOK, "")
	srv.Close()

	_, err := NewClient(srv.URL, "ch").Invoke(context.Background(), "m", nil)
	assert.Error(t, err)
}

func TestClient_InvokeGarbledReply(t *testing.T) {
	srv, _ := newRuntimeServer(t, http.StatusInternalServerError, "<html>oops</html>")

	_, err := NewClient(srv.URL, "ch").Invoke(context.Background(), "m", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, channel.ErrNotImplemented)
}
