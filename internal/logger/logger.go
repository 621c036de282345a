package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Development mode gets console encoding with
// caller info; anything else gets production JSON.
func New(mode string) (*zap.Logger, error) {
	if mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
