package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/adaosilva/imoveis-backend/internal/pkg/httpx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing sendgrid api key")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From    EmailAddress
	ReplyTo *EmailAddress
	To      []EmailAddress
	Subject string
	Text    string
	HTML    string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	ReplyTo          *EmailAddress     `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if strings.TrimSpace(req.From.Email) == "" {
		req.From.Email = c.cfg.DefaultFromEmail
		if strings.TrimSpace(req.From.Name) == "" {
			req.From.Name = c.cfg.DefaultFromName
		}
	}
	req.From.Email = strings.TrimSpace(req.From.Email)
	req.Subject = strings.TrimSpace(req.Subject)

	if req.From.Email == "" {
		return nil, fmt.Errorf("sendgrid: From.Email required")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("sendgrid: To required")
	}
	if req.Subject == "" {
		return nil, fmt.Errorf("sendgrid: Subject required")
	}

	contents := []mailContent{}
	if t := strings.TrimSpace(req.Text); t != "" {
		contents = append(contents, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(req.HTML); h != "" {
		contents = append(contents, mailContent{Type: "text/html", Value: h})
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("sendgrid: Text or HTML content required")
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: req.To}},
		From:             req.From,
		ReplyTo:          req.ReplyTo,
		Subject:          req.Subject,
		Content:          contents,
	}

	var result *SendEmailResult
	err := retry.Do(func() error {
		res, err := c.doOnce(ctx, wire)
		if err != nil {
			return err
		}
		result = res
		return nil
	}, httpx.RetryOptions(ctx, uint(c.cfg.MaxRetries), func(n uint, err error) {
		c.log.Warn("Sendgrid request retrying", "attempt", n+1, "max_retries", c.cfg.MaxRetries, "error", err.Error())
	})...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) doOnce(ctx context.Context, body mailSendRequest) (*SendEmailResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, retry.Unrecoverable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", &buf)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpx.NewStatusError("sendgrid", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}
