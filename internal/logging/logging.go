// Package logging constructs the zap logger used for internal diagnostics
// (connection resets, config errors, run-abort events). It is never used
// for user-facing report/progress text, which stays on fmt.Print* to stdout.
package logging

import "go.uber.org/zap"

// New builds a *zap.Logger. dev selects zap.NewDevelopment's console
// encoder; otherwise zap.NewProduction's JSON encoder is used.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests and any code
// path that hasn't been handed a real logger.
func Nop() *zap.Logger { return zap.NewNop() }
