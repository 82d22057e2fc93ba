package envelope

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
)

// DefaultReplayWindow is the freshness window used when Options does not set one.
const DefaultReplayWindow = 10 * time.Second

// Options configures the hooks. A hook reads its Options on every call, so
// changing ReplayWindow affects the next call; callers that change it while
// hooks run concurrently must synchronize themselves.
type Options struct {
	// ReplayWindow bounds how far a message timestamp may be from now.
	ReplayWindow time.Duration

	// TimeProvider supplies the current time. Nil uses the system clock.
	TimeProvider crypto.TimeProvider

	// Logger receives hook diagnostics. Nil uses the standard logger.
	Logger *logrus.Entry

	// NonceCache, when set, makes Decrypt reject an envelope whose IV was
	// already accepted.
	NonceCache *crypto.NonceCache
}

// NewOptions returns options with the default replay window and system clock.
func NewOptions() *Options {
	return &Options{
		ReplayWindow: DefaultReplayWindow,
		TimeProvider: crypto.DefaultTimeProvider{},
	}
}

func (o *Options) window() time.Duration {
	if o == nil || o.ReplayWindow <= 0 {
		return DefaultReplayWindow
	}
	return o.ReplayWindow
}

func (o *Options) now() time.Time {
	if o == nil || o.TimeProvider == nil {
		return time.Now()
	}
	return o.TimeProvider.Now()
}

func (o *Options) logger(function string) *crypto.LoggerHelper {
	var base *logrus.Entry
	if o != nil {
		base = o.Logger
	}
	return crypto.NewLogger(base, "envelope", function)
}

func (o *Options) nonceCache() *crypto.NonceCache {
	if o == nil {
		return nil
	}
	return o.NonceCache
}
