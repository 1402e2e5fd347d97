package brasilapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/adaosilva/imoveis-backend/internal/pkg/httpx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://brasilapi.com.br/api/cep/v1"

// ErrCEPNotFound is returned when the upstream has no record for the CEP.
var ErrCEPNotFound = errors.New("cep not found")

type Client interface {
	LookupCEP(ctx context.Context, cep string) (*Address, error)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Address mirrors the BrasilAPI CEP v1 payload.
type Address struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Service      string `json:"service,omitempty"`
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &client{
		log:        log.With("client", "BrasilAPIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *client) LookupCEP(ctx context.Context, cep string) (*Address, error) {
	var out *Address
	err := retry.Do(func() error {
		addr, err := c.lookupOnce(ctx, cep)
		if err != nil {
			return err
		}
		out = addr
		return nil
	}, httpx.RetryOptions(ctx, uint(c.cfg.MaxRetries), func(n uint, err error) {
		c.log.Warn("CEP lookup retrying", "cep", cep, "attempt", n+1, "error", err.Error())
	})...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) lookupOnce(ctx context.Context, cep string) (*Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+cep, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ErrCEPNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpx.NewStatusError("brasilapi", resp)
	}
	defer resp.Body.Close()

	var addr Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("brasilapi decode: %w", err))
	}
	return &addr, nil
}
