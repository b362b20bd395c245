package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakeshop-backend/pkg/config"
)

func confirmationFixture() Confirmation {
	return Confirmation{
		RecipientName: "Lena",
		OrderNumber:   "ORD-20250812-K4XQ",
		OrderDate:     "2025-08-12",
		Total:         decimal.RequireFromString("29.00"),
		Items: []ConfirmationItem{
			{Name: "Croissant", Quantity: 4, UnitPrice: decimal.RequireFromString("3.50"), LineTotal: decimal.RequireFromString("14.00")},
			{Name: "Tarte Tatin", Quantity: 1, UnitPrice: decimal.RequireFromString("15.00"), LineTotal: decimal.RequireFromString("15.00")},
		},
	}
}

func TestSendOrderConfirmationRendersBody(t *testing.T) {
	t.Parallel()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := &smtpMailer{
		cfg: config.SMTPConfig{
			Host:        "smtp.example.com",
			Port:        "587",
			FromAddress: "orders@ovenlight.example",
		},
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	err := m.SendOrderConfirmation(context.Background(), "lena@example.com", confirmationFixture())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("unexpected addr %s", gotAddr)
	}
	if gotFrom != "orders@ovenlight.example" {
		t.Fatalf("unexpected from %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "lena@example.com" {
		t.Fatalf("unexpected to %v", gotTo)
	}

	body := string(gotMsg)
	for _, want := range []string{
		"Subject: Order confirmation ORD-20250812-K4XQ",
		"Content-Type: text/html",
		"Croissant",
		"Tarte Tatin",
		"Total: 29",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendOrderConfirmationRequiresRecipient(t *testing.T) {
	t.Parallel()

	m := &smtpMailer{
		cfg:  config.SMTPConfig{Host: "smtp.example.com", Port: "587", FromAddress: "orders@ovenlight.example"},
		send: func(string, smtp.Auth, string, []string, []byte) error { return nil },
	}
	if err := m.SendOrderConfirmation(context.Background(), "", confirmationFixture()); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

func TestNewWithoutSMTPConfigIsNoop(t *testing.T) {
	t.Parallel()

	m := New(config.SMTPConfig{})
	if err := m.SendOrderConfirmation(context.Background(), "lena@example.com", confirmationFixture()); err != nil {
		t.Fatalf("noop mailer must not fail: %v", err)
	}
}
