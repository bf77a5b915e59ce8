package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

const ctaURL = "https://automatikblog.com"

//go:embed templates/*.html
var templatesFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templatesFS, "templates/report.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendDiagnosticReport(to, nome, blogURL string, report entity.DiagnosticReport) error {
	m, err := s.buildReportMessage(to, nome, blogURL, report)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

func (s *EmailSender) buildReportMessage(to, nome, blogURL string, report entity.DiagnosticReport) (*gomail.Message, error) {
	body, err := renderReport(ReportEmailData{
		Nome:        nome,
		BlogURL:     blogURL,
		Lines:       report.Lines,
		HasFailures: report.HasFailures,
		CTAURL:      ctaURL,
	})
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s, o diagnóstico do seu blog chegou 🚀", nome))
	m.SetBody("text/html", body)

	return m, nil
}

func renderReport(data ReportEmailData) (string, error) {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}
