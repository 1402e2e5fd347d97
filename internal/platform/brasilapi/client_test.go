package brasilapi

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

func TestLookupCEPRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/76100000", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"cep":"76100000","state":"GO","city":"São Luís de Montes Belos","neighborhood":"Centro","street":"Rua Rio Verde"}`))
	}))
	defer srv.Close()

	c := New(logger.Nop(), Config{BaseURL: srv.URL})
	addr, err := c.LookupCEP(t.Context(), "76100000")
	require.NoError(t, err)
	assert.Equal(t, "GO", addr.State)
	assert.Equal(t, "Centro", addr.Neighborhood)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLookupCEPNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(logger.Nop(), Config{BaseURL: srv.URL})
	_, err := c.LookupCEP(t.Context(), "00000000")
	require.ErrorIs(t, err, ErrCEPNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
