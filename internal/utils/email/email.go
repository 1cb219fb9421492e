package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/loan-analytics/internal/config"
	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRunSummary mails a short summary of a finished report run
func (s *Sender) SendRunSummary(report *models.Report) error {
	if len(s.cfg.NotifyTo) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = s.cfg.NotifyTo
	e.Subject = Subject(report)
	e.Text = []byte(RunSummary(report))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send run summary for report %s: %v", report.ID, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Run summary sent to %s: %s", strings.Join(e.To, ", "), e.Subject)
	return nil
}

// Subject returns the mail subject for a report
func Subject(report *models.Report) string {
	for _, t := range report.Tables {
		if t.Error != "" {
			return fmt.Sprintf("Loan report %s finished with errors", report.ID)
		}
	}
	return fmt.Sprintf("Loan report %s ready", report.ID)
}

// RunSummary formats the mail body for a report
func RunSummary(report *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Loan analytics report %s\n", report.ID)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Source: %s\n\n", report.Source)

	c := report.Cleaning
	fmt.Fprintf(&b, "Rows read: %d\n", c.Input)
	fmt.Fprintf(&b, "Dropped for missing fields: %d\n", c.MissingRequired)
	fmt.Fprintf(&b, "Dropped for malformed term: %d\n", c.MalformedTerm)
	fmt.Fprintf(&b, "Cleaned records: %d\n", c.Output)
	if report.KeyRate != nil {
		fmt.Fprintf(&b, "Key rate: %.2f%%\n", *report.KeyRate)
	}

	b.WriteString("\nTables:\n")
	for _, t := range report.Tables {
		switch {
		case t.Error != "":
			fmt.Fprintf(&b, "  %-24s FAILED: %s\n", t.Name, t.Error)
		case t.Excluded > 0:
			fmt.Fprintf(&b, "  %-24s %d rows, %d records excluded\n", t.Name, len(t.Groups)+len(t.Exposures), t.Excluded)
		default:
			fmt.Fprintf(&b, "  %-24s %d rows\n", t.Name, len(t.Groups)+len(t.Exposures))
		}
	}
	b.WriteString("\nBest regards,\nLoan Analytics")
	return b.String()
}
