package mail

import "github.com/xavierca1/automatik-diagnostic/internal/entity"

type ReportEmailData struct {
	Nome        string
	BlogURL     string
	Lines       []entity.ReportLine
	HasFailures bool
	CTAURL      string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
