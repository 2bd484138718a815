package util

import (
	"go.uber.org/zap"
)

// NewLogger builds the production logger shared by the whole process. It is
// constructed once in main and injected; there is no package-level instance.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
