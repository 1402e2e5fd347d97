package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/adaosilva/imoveis-backend/internal/pkg/httpx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type Client interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
}

type Config struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	// DefaultFrom may be a phone number or "whatsapp:+55..." for the WhatsApp sender.
	DefaultFrom string
	Timeout     time.Duration
	MaxRetries  int
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing twilio account sid")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing twilio auth token")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &client{
		log:        log.With("client", "TwilioClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type SendMessageRequest struct {
	To   string
	From string
	Body string
}

type Message struct {
	SID    string `json:"sid,omitempty"`
	To     string `json:"to,omitempty"`
	From   string `json:"from,omitempty"`
	Status string `json:"status,omitempty"`
}

func (c *client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	req.To = strings.TrimSpace(req.To)
	req.From = strings.TrimSpace(req.From)
	req.Body = strings.TrimSpace(req.Body)
	if req.To == "" {
		return nil, fmt.Errorf("twilio: To required")
	}
	if req.From == "" {
		req.From = strings.TrimSpace(c.cfg.DefaultFrom)
	}
	if req.From == "" {
		return nil, fmt.Errorf("twilio: sender required")
	}
	if req.Body == "" {
		return nil, fmt.Errorf("twilio: Body required")
	}
	// WhatsApp senders require WhatsApp recipients.
	if strings.HasPrefix(req.From, "whatsapp:") && !strings.HasPrefix(req.To, "whatsapp:") {
		req.To = "whatsapp:" + req.To
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Body", req.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)

	var out *Message
	err := retry.Do(func() error {
		msg, err := c.doFormOnce(ctx, endpoint, form)
		if err != nil {
			return err
		}
		out = msg
		return nil
	}, httpx.RetryOptions(ctx, uint(c.cfg.MaxRetries), func(n uint, err error) {
		c.log.Warn("Twilio request retrying", "attempt", n+1, "max_retries", c.cfg.MaxRetries, "error", err.Error())
	})...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) doFormOnce(ctx context.Context, endpoint string, form url.Values) (*Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpx.NewStatusError("twilio", resp)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	var out Message
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("twilio decode error: %w", err))
	}
	return &out, nil
}
