package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/platform/sendgrid"
	"github.com/adaosilva/imoveis-backend/internal/platform/twilio"
)

type fakeMail struct {
	mu   sync.Mutex
	reqs []sendgrid.SendEmailRequest
	err  error
}

func (f *fakeMail) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

type fakeSMS struct {
	mu   sync.Mutex
	reqs []twilio.SendMessageRequest
}

func (f *fakeSMS) SendMessage(_ context.Context, req twilio.SendMessageRequest) (*twilio.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return &twilio.Message{SID: "SM1", To: req.To}, nil
}

func TestAlertNotifierSendsMailAndSMS(t *testing.T) {
	mail := &fakeMail{}
	sms := &fakeSMS{}
	n := NewAlertNotifier(testutil.Logger(t), mail, sms, AlertConfig{
		ToEmails: []string{"corretor@crm.com", " "},
		ToPhones: []string{"+5564999990000", "+5564999990001"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	n.NewLead(ctx, &types.Lead{ID: 3, Name: "Ana", WhatsApp: "64999990001", Email: "ana@mail.com", Origin: "Site"})
	cancel()
	n.Wait()

	require.Len(t, mail.reqs, 1)
	assert.Equal(t, "Novo lead: Ana", mail.reqs[0].Subject)
	require.Len(t, mail.reqs[0].To, 1)
	require.NotNil(t, mail.reqs[0].ReplyTo)
	assert.Equal(t, "ana@mail.com", mail.reqs[0].ReplyTo.Email)
	assert.Contains(t, mail.reqs[0].Text, "WhatsApp: 64999990001")

	require.Len(t, sms.reqs, 2)
	assert.Equal(t, "+5564999990001", sms.reqs[1].To)
}

func TestAlertNotifierSwallowsFailures(t *testing.T) {
	mail := &fakeMail{err: errors.New("sendgrid down")}
	n := NewAlertNotifier(testutil.Logger(t), mail, nil, AlertConfig{ToEmails: []string{"a@crm.com"}})

	n.NewLead(context.Background(), &types.Lead{Name: "Ana", WhatsApp: "64999990001"})
	n.Wait()
	assert.Len(t, mail.reqs, 1)
}

func TestAlertNotifierLogOnly(t *testing.T) {
	n := NewAlertNotifier(testutil.Logger(t), nil, nil, AlertConfig{})
	n.NewLead(context.Background(), &types.Lead{Name: "Ana"})
	n.NewLead(context.Background(), nil)
	n.Wait()

	var nilNotifier *AlertNotifier
	nilNotifier.NewLead(context.Background(), &types.Lead{Name: "Ana"})
}

func TestLeadAlertText(t *testing.T) {
	text := leadAlertText(&types.Lead{Name: "Ana", WhatsApp: "64999990001", Origin: "Instagram", Notes: "quer visitar"})
	assert.Equal(t, "Novo Lead! Nome: Ana, WhatsApp: 64999990001, Origem: Instagram\nquer visitar", text)
}
