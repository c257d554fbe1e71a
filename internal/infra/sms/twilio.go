// Package sms delivers emergency booking alerts to electricians' phones.
package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/resilience"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var tracer = otel.Tracer("sms")

var (
	_ port.SMSSender = (*TwilioSender)(nil)
	_ port.SMSSender = (*LogSender)(nil)
)

// MessageAPI is the slice of the Twilio REST client the sender uses.
type MessageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioConfig holds the account credentials and sender number.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Enabled reports whether enough is configured to talk to Twilio.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	api     MessageAPI
	from    string
	guard   *resilience.Guard
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTwilioSender builds a sender with a real REST client.
func NewTwilioSender(cfg TwilioConfig, guard *resilience.Guard, metrics *observability.Metrics, logger *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewTwilioSenderWithAPI(client.Api, cfg.FromNumber, guard, metrics, logger)
}

// NewTwilioSenderWithAPI builds a sender over any MessageAPI. guard and
// metrics may be nil.
func NewTwilioSenderWithAPI(api MessageAPI, from string, guard *resilience.Guard, metrics *observability.Metrics, logger *zap.Logger) *TwilioSender {
	return &TwilioSender{api: api, from: from, guard: guard, metrics: metrics, logger: logger}
}

// Send delivers body to the given phone number.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	ctx, span := tracer.Start(ctx, "Twilio.Send")
	defer span.End()

	to = NormalizePhone(to)
	if to == "" {
		return &domain.ErrValidation{Field: "phone", Message: "recipient phone is empty"}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	call := func(ctx context.Context) error {
		resp, err := s.api.CreateMessage(params)
		if err != nil {
			return &domain.ErrExternalService{Service: "twilio", Err: err}
		}
		if resp != nil && resp.Sid != nil {
			s.logger.Info("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
		}
		return nil
	}

	var err error
	if s.guard != nil {
		err = s.guard.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		s.record("failed")
		s.logger.Warn("sms failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send sms: %w", err)
	}
	s.record("sent")
	return nil
}

func (s *TwilioSender) record(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrSMS(outcome)
	}
}

// LogSender only logs the message. It stands in when Twilio is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender returns a sender that writes messages to the log.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, body string) error {
	s.logger.Info("sms (not delivered, twilio disabled)",
		zap.String("to", NormalizePhone(to)),
		zap.String("body", body),
	)
	return nil
}

// NormalizePhone turns a local ten-digit Indian number into E.164.
// Numbers that already carry a country code are returned trimmed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) == 10 {
		return "+91" + digits
	}
	return "+" + digits
}
