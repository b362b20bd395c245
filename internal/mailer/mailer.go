package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakeshop-backend/pkg/config"
)

// ConfirmationItem is one rendered order line.
type ConfirmationItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Confirmation is the template input for the order confirmation email.
type Confirmation struct {
	RecipientName string
	OrderNumber   string
	OrderDate     string
	Total         decimal.Decimal
	Items         []ConfirmationItem
}

// OrderMailer sends the post-checkout confirmation. Callers treat failures
// as best-effort; the order already committed.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, to string, data Confirmation) error
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<html>
<body>
  <h2>Thank you for your order, {{.RecipientName}}!</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
  <table border="0" cellpadding="4">
    <tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Subtotal</th></tr>
    {{range .Items}}
    <tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>
    {{end}}
  </table>
  <p><strong>Total: {{.Total}}</strong></p>
  <p>We will let you know as soon as your order is out for delivery.</p>
</body>
</html>`))

type smtpSender func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg  config.SMTPConfig
	send smtpSender
}

// New builds an OrderMailer from the SMTP settings. When SMTP is not
// configured the returned mailer silently drops everything, so checkout
// needs no special casing in dev environments.
func New(cfg config.SMTPConfig) OrderMailer {
	if !cfg.Enabled() {
		return &noopMailer{}
	}
	return &smtpMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *smtpMailer) SendOrderConfirmation(ctx context.Context, to string, data Confirmation) error {
	if to == "" {
		return fmt.Errorf("recipient address required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Order confirmation %s\r\n", data.OrderNumber)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.FromAddress, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

type noopMailer struct{}

func (noopMailer) SendOrderConfirmation(context.Context, string, Confirmation) error {
	return nil
}
