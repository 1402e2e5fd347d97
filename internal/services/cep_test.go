package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/brasilapi"
)

type fakeCEPClient struct {
	addr *brasilapi.Address
	err  error
	got  string
}

func (f *fakeCEPClient) LookupCEP(_ context.Context, cep string) (*brasilapi.Address, error) {
	f.got = cep
	return f.addr, f.err
}

func TestCEPLookup(t *testing.T) {
	client := &fakeCEPClient{addr: &brasilapi.Address{
		CEP:          "76100000",
		State:        "GO",
		City:         "São Luís de Montes Belos",
		Neighborhood: "Setor Montes Belos",
		Street:       "Rua Rio Verde",
	}}
	svc := NewCEPService(testutil.Logger(t), client)

	res, err := svc.Lookup(context.Background(), "76.100-000")
	require.NoError(t, err)
	assert.Equal(t, "76100000", client.got)
	assert.Equal(t, "Setor Montes Belos, São Luís de Montes Belos - GO", res.Location)
	assert.Equal(t, "Rua Rio Verde", res.Street)
}

func TestCEPLookupErrors(t *testing.T) {
	svc := NewCEPService(testutil.Logger(t), &fakeCEPClient{err: brasilapi.ErrCEPNotFound})

	_, err := svc.Lookup(context.Background(), "123")
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "CEP deve conter 8 dígitos", apierr.Message(err))

	_, err = svc.Lookup(context.Background(), "76100-000")
	requireStatus(t, err, http.StatusNotFound)

	down := NewCEPService(testutil.Logger(t), &fakeCEPClient{err: errors.New("timeout")})
	_, err = down.Lookup(context.Background(), "76100000")
	requireStatus(t, err, http.StatusBadGateway)
	_, code := apierr.StatusOf(err)
	assert.Equal(t, "upstream_unavailable", code)
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "Centro, Goiânia - GO", FormatLocation("Centro", "Goiânia", "GO"))
	assert.Equal(t, "Goiânia - GO", FormatLocation(" ", "Goiânia", "GO"))
	assert.Equal(t, "GO", FormatLocation("", "", "GO"))
	assert.Equal(t, "Centro", FormatLocation("Centro", "", ""))
	assert.Equal(t, "", FormatLocation("", "", ""))
}
