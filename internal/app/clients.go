package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/adaosilva/imoveis-backend/internal/platform/brasilapi"
	"github.com/adaosilva/imoveis-backend/internal/platform/gcp"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/sendgrid"
	"github.com/adaosilva/imoveis-backend/internal/platform/twilio"
	"github.com/adaosilva/imoveis-backend/internal/realtime/bus"
)

type Clients struct {
	Bus      bus.Bus
	Bucket   gcp.BucketService
	CEP      brasilapi.Client
	SendGrid sendgrid.Client
	Twilio   twilio.Client
}

// wireClients builds the outbound integrations. Optional ones (Redis,
// object storage, SendGrid, Twilio) stay nil when unconfigured.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err := bus.NewRedisBus(ctx, log, bus.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis realtime bus: %w", err)
		}
		out.Bus = b
	} else {
		out.Bus = bus.NewLocalBus()
	}

	// Gcs
	bucket, err := resolveObjectStore(ctx, log, cfg.Storage)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Bucket = bucket

	out.CEP = brasilapi.New(log, brasilapi.Config{
		BaseURL:    cfg.CEP.BaseURL,
		Timeout:    cfg.CEP.Timeout,
		MaxRetries: cfg.CEP.Retries,
	})

	if strings.TrimSpace(cfg.Notify.SendGridAPIKey) != "" {
		mail, err := sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.Notify.SendGridAPIKey,
			DefaultFromEmail: cfg.Notify.FromEmail,
			DefaultFromName:  cfg.Notify.FromName,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.SendGrid = mail
	}
	if strings.TrimSpace(cfg.Notify.TwilioAccountSID) != "" {
		sms, err := twilio.New(log, twilio.Config{
			AccountSID:  cfg.Notify.TwilioAccountSID,
			AuthToken:   cfg.Notify.TwilioAuthToken,
			DefaultFrom: cfg.Notify.TwilioFrom,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		out.Twilio = sms
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
