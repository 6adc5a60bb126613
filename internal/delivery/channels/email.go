package channels

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"cornerstone_crm/config"
	"cornerstone_crm/internal/logger"
)

// EmailMessage là nội dung email đã được cá nhân hóa, sẵn sàng gửi.
type EmailMessage struct {
	To      string
	Subject string
	Body    string // HTML body
}

// Mailer gửi email cho workflow action send_email.
// Implementation thật dùng SMTP, implementation log-only dùng khi chưa cấu hình SMTP.
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// SmtpMailer gửi email qua SMTP bằng gomail
type SmtpMailer struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// LogOnlyMailer chỉ ghi log thay vì gửi thật.
// Dùng cho môi trường development khi SMTP_HOST không được cấu hình.
type LogOnlyMailer struct{}

// NewMailer tạo Mailer phù hợp với cấu hình hiện tại.
// SMTP_HOST rỗng thì trả về LogOnlyMailer.
func NewMailer(cfg *config.Configuration) Mailer {
	if cfg == nil || cfg.SMTPHost == "" {
		logger.GetAppLogger().Warn("⚠️ [EMAIL] SMTP_HOST chưa được cấu hình, email sẽ chỉ được ghi log")
		return &LogOnlyMailer{}
	}
	return &SmtpMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromName:  cfg.SMTPFromName,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// Send gửi email qua SMTP
func (m *SmtpMailer) Send(ctx context.Context, msg *EmailMessage) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail))
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.Body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(gm); err != nil {
		logger.GetErrorLogger().WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).WithError(err).Error("❌ [EMAIL] Gửi email thất bại")
		return err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("📧 [EMAIL] Đã gửi email")
	return nil
}

// Send ghi log nội dung email thay vì gửi
func (m *LogOnlyMailer) Send(ctx context.Context, msg *EmailMessage) error {
	logger.GetAppLogger().WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}).Info("📧 [EMAIL] (log-only) Email không được gửi thật")
	return nil
}
