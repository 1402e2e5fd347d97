package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/brasilapi"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/textutil"
)

type CEPResult struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Location     string `json:"localizacao"`
}

type CEPService interface {
	Lookup(ctx context.Context, cep string) (*CEPResult, error)
}

type cepService struct {
	log    *logger.Logger
	client brasilapi.Client
}

func NewCEPService(log *logger.Logger, client brasilapi.Client) CEPService {
	return &cepService{log: log.With("service", "CEPService"), client: client}
}

func (cs *cepService) Lookup(ctx context.Context, cep string) (*CEPResult, error) {
	digits := textutil.Digits(cep)
	if len(digits) != 8 {
		return nil, apierr.Invalid("CEP deve conter 8 dígitos")
	}
	addr, err := cs.client.LookupCEP(ctx, digits)
	if err != nil {
		if errors.Is(err, brasilapi.ErrCEPNotFound) {
			return nil, apierr.NotFound("CEP não encontrado")
		}
		cs.log.Warn("cep lookup failed", "cep", digits, "error", err)
		return nil, apierr.Coded(http.StatusBadGateway, "upstream_unavailable",
			"Serviço de CEP indisponível", fmt.Errorf("lookup cep: %w", err))
	}
	return &CEPResult{
		CEP:          digits,
		State:        addr.State,
		City:         addr.City,
		Neighborhood: addr.Neighborhood,
		Street:       addr.Street,
		Location:     FormatLocation(addr.Neighborhood, addr.City, addr.State),
	}, nil
}

// FormatLocation renders "<bairro>, <cidade> - <UF>", dropping empty parts.
func FormatLocation(neighborhood, city, state string) string {
	neighborhood = strings.TrimSpace(neighborhood)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)

	place := city
	if state != "" {
		if place != "" {
			place += " - " + state
		} else {
			place = state
		}
	}
	if neighborhood == "" {
		return place
	}
	if place == "" {
		return neighborhood
	}
	return neighborhood + ", " + place
}
