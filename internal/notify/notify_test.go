package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

func TestNewShareCodeMessage(t *testing.T) {
	msg, err := NewShareCodeMessage(ShareCode{
		OwnerEmail:    "owner@example.com",
		FileName:      "tax-report.pdf",
		Code:          "042137",
		RequesterAddr: "203.0.113.9",
		ValidFor:      30 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", msg.To)
	assert.Contains(t, msg.Subject, "tax-report.pdf")
	assert.Contains(t, msg.Text, "042137")
	assert.Contains(t, msg.Text, "203.0.113.9")
	assert.Contains(t, msg.HTML, "042137")
	assert.Contains(t, msg.HTML, "tax-report.pdf")
	assert.Contains(t, msg.HTML, "30m0s")
}

func TestNewShareCodeMessage_EscapesFileName(t *testing.T) {
	msg, err := NewShareCodeMessage(ShareCode{
		OwnerEmail: "owner@example.com",
		FileName:   `<script>alert("x")</script>`,
		Code:       "000001",
		ValidFor:   time.Minute,
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestSMTPNotifier_Notify(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	orig := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, body []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, body
		return nil
	}
	defer func() { sendMail = orig }()

	n := NewSMTPNotifier(SMTPConfig{
		Host: "mail.local", Port: "587",
		User: "relay", Password: "pw",
		From: "security@secureshare.local",
	})

	err := n.Notify(context.Background(), &Message{
		To:      "owner@example.com",
		Subject: "Access request",
		Text:    "code: 123456",
		HTML:    "<b>123456</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, "security@secureshare.local", gotFrom)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)

	body := string(gotBody)
	assert.Contains(t, body, "Subject: Access request")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "code: 123456")
	assert.True(t, strings.Contains(body, "<b>123456</b>"))
}

func TestSMTPNotifier_FailureIsNotifierFailure(t *testing.T) {
	orig := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, body []byte) error {
		return errors.New("relay refused")
	}
	defer func() { sendMail = orig }()

	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: "25", From: "x@y"})
	err := n.Notify(context.Background(), &Message{To: "owner@example.com", Text: "hi"})
	assert.ErrorIs(t, err, common.ErrNotifierFailure)
}
