package channels

import (
	"context"

	"github.com/sirupsen/logrus"

	"cornerstone_crm/internal/logger"
)

// SmsMessage là nội dung SMS đã được cá nhân hóa
type SmsMessage struct {
	To   string
	Body string
}

// SmsSender gửi SMS cho workflow action send_sms.
// Hiện tại chưa tích hợp nhà cung cấp SMS nào nên chỉ có LogOnlySmsSender.
type SmsSender interface {
	Send(ctx context.Context, msg *SmsMessage) error
}

// LogOnlySmsSender ghi log SMS thay vì gửi thật
type LogOnlySmsSender struct{}

// NewSmsSender tạo SmsSender mặc định
func NewSmsSender() SmsSender {
	return &LogOnlySmsSender{}
}

// Send ghi log nội dung SMS
func (s *LogOnlySmsSender) Send(ctx context.Context, msg *SmsMessage) error {
	logger.GetAppLogger().WithFields(logrus.Fields{
		"to":   msg.To,
		"body": msg.Body,
	}).Info("📱 [SMS] (log-only) SMS không được gửi thật")
	return nil
}
