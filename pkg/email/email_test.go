package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"scholarship-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Host:     "smtp.example.edu",
		Port:     "587",
		Username: "alerts@example.edu",
		Password: "secret",
		To:       "ops@example.edu",
	}
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewEmailService(testConfig()).IsConfigured())

	cfg := testConfig()
	cfg.To = ""
	assert.False(t, NewEmailService(cfg).IsConfigured())
	assert.False(t, NewEmailService(Config{}).IsConfigured())
}

func TestNotifyFailure(t *testing.T) {
	failure := domain.TickFailure{
		ID:        12,
		Job:       "call-transition",
		Attempts:  5,
		LastError: "serialization failure <40001>",
		FailedAt:  time.Date(2026, 3, 16, 0, 25, 0, 0, time.UTC),
	}

	t.Run("Should send an HTML alert to the recipient", func(t *testing.T) {
		svc := NewEmailService(testConfig())
		var (
			gotAddr string
			gotFrom string
			gotTo   []string
			gotMsg  string
		)
		svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		}

		require.NoError(t, svc.NotifyFailure(context.Background(), failure))

		assert.Equal(t, "smtp.example.edu:587", gotAddr)
		assert.Equal(t, "alerts@example.edu", gotFrom)
		assert.Equal(t, []string{"ops@example.edu"}, gotTo)
		assert.Contains(t, gotMsg, "Subject: [scholarships] call-transition failed after 5 attempts")
		assert.Contains(t, gotMsg, "2026-03-16T00:25:00Z")
		assert.Contains(t, gotMsg, "#12")
		assert.Contains(t, gotMsg, "serialization failure &lt;40001&gt;")
	})

	t.Run("Should use the configured sender", func(t *testing.T) {
		cfg := testConfig()
		cfg.From = "noreply@example.edu"
		svc := NewEmailService(cfg)
		var gotFrom string
		svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotFrom = from
			return nil
		}

		require.NoError(t, svc.NotifyFailure(context.Background(), failure))
		assert.Equal(t, "noreply@example.edu", gotFrom)
	})

	t.Run("Should wrap transport errors", func(t *testing.T) {
		svc := NewEmailService(testConfig())
		svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		}

		err := svc.NotifyFailure(context.Background(), failure)
		assert.EqualError(t, err, "failed to send email: connection refused")
	})

	t.Run("Should not send when the context is done", func(t *testing.T) {
		svc := NewEmailService(testConfig())
		called := false
		svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			called = true
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, svc.NotifyFailure(ctx, failure), context.Canceled)
		assert.False(t, called)
	})
}
