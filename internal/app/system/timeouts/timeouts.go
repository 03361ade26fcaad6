// Package timeouts holds the deadlines handlers put on database work.
//
// Values are set once at startup from timeout_short, timeout_medium and
// timeout_long and read from any goroutine afterwards.
//   - Ping: health checks
//   - Short: single-document reads, the login-time completion check
//   - Medium: catalog lists, profile saves touching users and field data
//   - Long: startup work such as index reconciliation
package timeouts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config is one set of deadlines. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

var defaults = Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}

var (
	mu  sync.RWMutex
	cur = defaults
)

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }
func Long() time.Duration   { return Current().Long }

// Current returns the active deadlines.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the positive fields of c.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	pick := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	pick(&cur.Ping, c.Ping)
	pick(&cur.Short, c.Short)
	pick(&cur.Medium, c.Medium)
	pick(&cur.Long, c.Long)
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults
}

// Fields renders Current for the startup log.
func Fields() []zap.Field {
	c := Current()
	return []zap.Field{
		zap.Duration("timeout_ping", c.Ping),
		zap.Duration("timeout_short", c.Short),
		zap.Duration("timeout_medium", c.Medium),
		zap.Duration("timeout_long", c.Long),
	}
}

// WithTimeout is context.WithTimeout whose cancel func warns when the
// deadline, rather than the caller, ended op.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save profile fields")
//	defer cancel()
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out", zap.String("operation", op), zap.Duration("timeout", d))
		}
		cancel()
	}
}
