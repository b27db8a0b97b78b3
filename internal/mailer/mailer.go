// Package mailer sends transactional mail over SMTP with embedded HTML
// templates. Sends are synchronous and never retried; non-critical callers
// log failures instead of failing their request.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Mailer struct {
	config Config
}

func New(config Config) *Mailer {
	return &Mailer{config: config}
}

// Enabled reports whether SMTP credentials were configured at all.
func (m *Mailer) Enabled() bool {
	return m.config.Host != "" && m.config.From != ""
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer not configured")
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	headers := []string{
		"From: " + m.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}
	msg := []byte(strings.Join(headers, "\r\n"))

	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	return smtp.SendMail(addr, auth, m.config.From, []string{to}, msg)
}

func (m *Mailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendOTP mails a verification code for registration or password reset.
func (m *Mailer) SendOTP(to, code string) error {
	body, err := m.render("otp.html", map[string]string{"Code": code})
	if err != nil {
		return err
	}
	return m.send(to, "Your AURA verification code", body)
}

// OrderConfirmationData feeds the order confirmation template.
type OrderConfirmationData struct {
	Name    string
	OrderID string
	Total   float64
	Items   []OrderConfirmationItem
}

type OrderConfirmationItem struct {
	Name     string
	Quantity int
	Price    float64
}

// SendOrderConfirmation mails an order receipt. Best-effort: the order flow
// logs a failure and carries on.
func (m *Mailer) SendOrderConfirmation(to string, data OrderConfirmationData) error {
	body, err := m.render("order_confirmation.html", data)
	if err != nil {
		return err
	}
	return m.send(to, "Your AURA order "+data.OrderID, body)
}
