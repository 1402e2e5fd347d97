package sendgrid

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

func TestSendPostsMailAndRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))

		var body mailSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "site@adaosilva.com.br", body.From.Email)
		assert.Equal(t, "Novo lead", body.Subject)

		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "sg-key", BaseURL: srv.URL, DefaultFromEmail: "site@adaosilva.com.br"})
	require.NoError(t, err)

	res, err := c.Send(t.Context(), SendEmailRequest{
		To:      []EmailAddress{{Email: "corretor@adaosilva.com.br"}},
		Subject: "Novo lead",
		Text:    "Maria quer conversar",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "msg-1", res.MessageID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendValidates(t *testing.T) {
	c, err := New(logger.Nop(), Config{APIKey: "k"})
	require.NoError(t, err)
	_, err = c.Send(t.Context(), SendEmailRequest{Subject: "x", Text: "y"})
	assert.Error(t, err)

	_, err = New(logger.Nop(), Config{})
	assert.Error(t, err)
}
