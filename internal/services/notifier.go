package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/sendgrid"
	"github.com/adaosilva/imoveis-backend/internal/platform/twilio"
)

// LeadNotifier alerts the brokerage about a new lead. Implementations are
// best effort and never return errors to the caller.
type LeadNotifier interface {
	NewLead(ctx context.Context, lead *types.Lead)
}

type AlertConfig struct {
	// Email recipients for the SendGrid alert.
	ToEmails []string
	// Phone numbers for the Twilio alert, e.g. "+5564999990000".
	ToPhones []string
	Timeout  time.Duration
}

type AlertNotifier struct {
	log      *logger.Logger
	mail     sendgrid.Client
	sms      twilio.Client
	cfg      AlertConfig
	inFlight sync.WaitGroup
}

// NewAlertNotifier always logs the alert; mail and sms are optional.
func NewAlertNotifier(log *logger.Logger, mail sendgrid.Client, sms twilio.Client, cfg AlertConfig) *AlertNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &AlertNotifier{
		log:  log.With("service", "LeadNotifier"),
		mail: mail,
		sms:  sms,
		cfg:  cfg,
	}
}

func (n *AlertNotifier) NewLead(ctx context.Context, lead *types.Lead) {
	if n == nil || lead == nil {
		return
	}
	n.log.Info("ALERT: Novo Lead!", "lead_id", lead.ID, "nome", lead.Name, "origem", lead.Origin)

	sendMail := n.mail != nil && len(n.cfg.ToEmails) > 0
	sendSMS := n.sms != nil && len(n.cfg.ToPhones) > 0
	if !sendMail && !sendSMS {
		return
	}
	snapshot := *lead
	n.inFlight.Add(1)
	go func() {
		defer n.inFlight.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.cfg.Timeout)
		defer cancel()
		if sendMail {
			n.sendMail(sendCtx, &snapshot)
		}
		if sendSMS {
			n.sendSMS(sendCtx, &snapshot)
		}
	}()
}

// Wait blocks until in-flight alerts finish.
func (n *AlertNotifier) Wait() {
	if n == nil {
		return
	}
	n.inFlight.Wait()
}

func (n *AlertNotifier) sendMail(ctx context.Context, lead *types.Lead) {
	to := make([]sendgrid.EmailAddress, 0, len(n.cfg.ToEmails))
	for _, addr := range n.cfg.ToEmails {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, sendgrid.EmailAddress{Email: addr})
		}
	}
	if len(to) == 0 {
		return
	}
	req := sendgrid.SendEmailRequest{
		To:      to,
		Subject: fmt.Sprintf("Novo lead: %s", lead.Name),
		Text:    leadAlertText(lead),
	}
	if lead.Email != "" {
		req.ReplyTo = &sendgrid.EmailAddress{Email: lead.Email, Name: lead.Name}
	}
	if _, err := n.mail.Send(ctx, req); err != nil {
		n.log.Warn("lead alert email failed", "lead_id", lead.ID, "error", err)
	}
}

func (n *AlertNotifier) sendSMS(ctx context.Context, lead *types.Lead) {
	body := leadAlertText(lead)
	for _, phone := range n.cfg.ToPhones {
		phone = strings.TrimSpace(phone)
		if phone == "" {
			continue
		}
		if _, err := n.sms.SendMessage(ctx, twilio.SendMessageRequest{To: phone, Body: body}); err != nil {
			n.log.Warn("lead alert message failed", "lead_id", lead.ID, "error", err)
		}
	}
}

func leadAlertText(lead *types.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Novo Lead! Nome: %s, WhatsApp: %s", lead.Name, lead.WhatsApp)
	if lead.Email != "" {
		fmt.Fprintf(&b, ", Email: %s", lead.Email)
	}
	if lead.Origin != "" {
		fmt.Fprintf(&b, ", Origem: %s", lead.Origin)
	}
	if lead.Notes != "" {
		fmt.Fprintf(&b, "\n%s", lead.Notes)
	}
	return b.String()
}
