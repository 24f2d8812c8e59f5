package object

import (
	"hash/maphash"

	"go.uber.org/zap"
)

// FailureMode selects how callback-bridge failures escalate when there
// is no error return to carry them (see Runtime.Escalate).
type FailureMode int

const (
	// FailurePanic panics with a *FatalError after logging.
	FailurePanic FailureMode = iota
	// FailureFatal logs at fatal level, terminating the process.
	FailureFatal
)

// Option configures a Runtime at creation time.
type Option func(*config)

type config struct {
	logger  *zap.Logger
	seed    maphash.Seed
	failure FailureMode
}

func defaultConfig() config {
	return config{
		logger:  zap.NewNop(),
		seed:    maphash.MakeSeed(),
		failure: FailurePanic,
	}
}

// WithLogger sets the logger used for unraisable errors, escalated
// callback failures, and close-time leak reports.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHashSeed fixes the seed for object hashing. Useful for tests
// that need stable hash values across runtimes.
func WithHashSeed(seed maphash.Seed) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithCallbackFailure sets the escalation mode for failures that
// cannot be returned to the caller.
func WithCallbackFailure(m FailureMode) Option {
	return func(c *config) {
		c.failure = m
	}
}
