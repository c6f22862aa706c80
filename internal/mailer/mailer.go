// Package mailer renders and delivers the technology watch report email.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/yapa-dev/techwatch/internal/record"
)

// Subject of every report email.
const Subject = "Technology Watch Report and Prompt"

// NoNamePlaceholder is rendered when no name came back from the generator.
const NoNamePlaceholder = "No name generated by Gemini"

// Report is one record's rendered notification.
type Report struct {
	Recipient string
	Record    record.ReportRecord
	// Prompt is included verbatim for auditability.
	Prompt string
	// GeneratedName is empty when generation or extraction failed.
	GeneratedName string
}

var bodyTmpl = template.Must(template.New("report").Parse(`<html>
    <body>
        <h2 style="color:#2C3E50;">Technology Watch Report</h2>
        <p><strong>Hello,</strong></p>
        <p>Here is the data from your Notion database:</p>
        <ul>
            <li>
                <h3 style="color:#2980B9;"><strong>{{.Record.Title}}</strong></h3>
                <p><strong>Identifier:</strong> {{.Record.Identifier}}</p>
                <p><strong>URL:</strong> <a href="{{.Record.URL}}" target="_blank">{{.Record.URL}}</a></p>
                <p><strong>Publication date:</strong> {{.Record.Date}}</p>
                <p><strong>Content:</strong> {{.Record.Content}}</p>
            </li>
        </ul>
        <hr>
        <p><strong>Generated prompt:</strong></p>
        <pre>{{.Prompt}}</pre>
        <hr>
        <p><strong>Report generated by Gemini:</strong></p>
        <pre>{{.Name}}</pre>
        <p><strong>Happy reading, see you soon!</strong></p>
    </body>
</html>`))

// RenderBody produces the HTML body for a report.
func RenderBody(rep Report) (string, error) {
	name := strings.TrimSpace(rep.GeneratedName)
	if name == "" {
		name = NoNamePlaceholder
	}
	var buf bytes.Buffer
	err := bodyTmpl.Execute(&buf, struct {
		Record record.ReportRecord
		Prompt string
		Name   string
	}{
		Record: rep.Record,
		Prompt: rep.Prompt,
		Name:   name,
	})
	if err != nil {
		return "", fmt.Errorf("render report body: %w", err)
	}
	return buf.String(), nil
}

// Config holds SMTP transport settings. Defaults match a Gmail app-token
// setup, mirroring the service this relay was first deployed against.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Host) == "" {
		c.Host = "smtp.gmail.com"
	}
	if c.Port <= 0 {
		c.Port = 587
	}
	return c
}

// SMTP delivers reports over an SMTP transport.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg Config) (*SMTP, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.User) == "" {
		return nil, fmt.Errorf("email user is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("email password is required")
	}
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   strings.TrimSpace(cfg.User),
	}, nil
}

// Send renders and delivers one report. Delivery blocks until the SMTP
// conversation finishes.
func (m *SMTP) Send(rep Report) error {
	recipient := strings.TrimSpace(rep.Recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	body, err := RenderBody(rep)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", Subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
