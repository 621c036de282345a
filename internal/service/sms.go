package service

import (
	"context"

	"go.uber.org/zap"
)

// LogSMSSender writes codes to the log instead of sending them. Used in
// development and anywhere no SMS provider is configured.
type LogSMSSender struct {
	log *zap.Logger
}

// NewLogSMSSender creates a logging SMS sender
func NewLogSMSSender(log *zap.Logger) *LogSMSSender {
	return &LogSMSSender{log: log}
}

// SendOTP logs the code for the given phone number
func (s *LogSMSSender) SendOTP(ctx context.Context, phone, code string) error {
	s.log.Info("sms otp issued",
		zap.String("phone", phone),
		zap.String("code", code))
	return nil
}
