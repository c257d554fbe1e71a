package sms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/observability"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/resilience"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/sms"
)

type fakeAPI struct {
	calls []*twilioApi.CreateMessageParams
	err   error
}

func (f *fakeAPI) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender_Send(t *testing.T) {
	api := &fakeAPI{}
	metrics := observability.NewMetrics()
	s := sms.NewTwilioSenderWithAPI(api, "+15550001111", nil, metrics, zap.NewNop())

	require.NoError(t, s.Send(context.Background(), "9876543212", "Emergency job"))
	require.Len(t, api.calls, 1)
	assert.Equal(t, "+919876543212", *api.calls[0].To)
	assert.Equal(t, "+15550001111", *api.calls[0].From)
	assert.Equal(t, "Emergency job", *api.calls[0].Body)
	assert.Equal(t, float64(1), metrics.Snapshot().SMSSent)
}

func TestTwilioSender_FailureIsCounted(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	metrics := observability.NewMetrics()
	guard := resilience.NewGuard("twilio", resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxConcurrency: 2}, zap.NewNop())
	s := sms.NewTwilioSenderWithAPI(api, "+15550001111", guard, metrics, zap.NewNop())

	err := s.Send(context.Background(), "+919876543212", "hi")
	require.Error(t, err)
	var ext *domain.ErrExternalService
	assert.ErrorAs(t, err, &ext)
	assert.Len(t, api.calls, 2, "one retry expected")
	assert.Equal(t, float64(1), metrics.Snapshot().SMSFailed)
}

func TestTwilioSender_EmptyPhone(t *testing.T) {
	s := sms.NewTwilioSenderWithAPI(&fakeAPI{}, "+1", nil, nil, zap.NewNop())
	var ve *domain.ErrValidation
	assert.ErrorAs(t, s.Send(context.Background(), " ", "x"), &ve)
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"9876543210":   "+919876543210",
		"98765 43210":  "+919876543210",
		"+14155550100": "+14155550100",
		"919876543210": "+919876543210",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sms.NormalizePhone(in), in)
	}
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, sms.TwilioConfig{AccountSID: "AC1"}.Enabled())
	assert.True(t, sms.TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "+1"}.Enabled())
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, sms.NewLogSender(zap.NewNop()).Send(context.Background(), "9876543210", "x"))
}
