package observability

import "go.uber.org/zap"

// NewLogger builds the process logger. Development mode gets the
// human-readable console encoder.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
