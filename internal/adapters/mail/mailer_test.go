package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testMessage() portssvc.MailMessage {
	return portssvc.MailMessage{To: "ada@example.com", Subject: "Deposit confirmed", Text: "hi", HTML: "<p>hi</p>"}
}

func TestSMTPMailer_SendDelivers(t *testing.T) {
	var got *gomail.Msg
	m := newMailer("vault@example.com", func(_ context.Context, msg *gomail.Msg) error {
		got = msg
		return nil
	}, DefaultBreakerConfig(), quietLogger())

	require.NoError(t, m.Send(context.Background(), testMessage()))
	require.NotNil(t, got)
	assert.Equal(t, []string{"Deposit confirmed"}, got.GetGenHeader(gomail.HeaderSubject))
	rcpts, err := got.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, rcpts)
}

func TestSMTPMailer_RejectsBadAddresses(t *testing.T) {
	called := false
	send := func(context.Context, *gomail.Msg) error { called = true; return nil }

	err := newMailer("not an address", send, DefaultBreakerConfig(), quietLogger()).Send(context.Background(), testMessage())
	assert.Error(t, err)

	msg := testMessage()
	msg.To = "nope"
	err = newMailer("vault@example.com", send, DefaultBreakerConfig(), quietLogger()).Send(context.Background(), msg)
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSMTPMailer_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	m := newMailer("vault@example.com", func(context.Context, *gomail.Msg) error {
		calls++
		return boom
	}, BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, ConsecutiveFailures: 2}, quietLogger())

	for i := 0; i < 2; i++ {
		err := m.Send(context.Background(), testMessage())
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, m.State())

	err := m.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}

func TestNew_FallsBackToNoop(t *testing.T) {
	m, err := New(SMTPConfig{}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, NoopMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), testMessage()))

	m, err = New(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "vault@example.com"}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)
}
