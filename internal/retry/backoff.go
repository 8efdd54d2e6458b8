// Package retry implements the backoff controller sitting between the
// keyword-search adapter and its quota-limited provider.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds the attempt cap and base delay shared by every call site.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig mirrors the provider quota documentation: three attempts,
// half-second base.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// RateLimitedError signals an HTTP 429 from the provider. Hint carries the
// raw rate-limit header value, which may be empty or unparseable.
type RateLimitedError struct {
	Hint string
}

func (e *RateLimitedError) Error() string {
	if e.Hint == "" {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited, retry after %q", e.Hint)
}

// Controller retries an operation with exponential backoff, honoring
// provider rate-limit hints when they parse.
type Controller struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

// New builds a controller; zero or negative config fields fall back to
// DefaultConfig values.
func New(cfg Config, logger *slog.Logger) *Controller {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	return &Controller{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Do runs op until it succeeds or the attempt cap is reached. The last
// error is returned wrapped on exhaustion; callers treat it as "no results"
// rather than aborting their run.
func (c *Controller) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == c.cfg.MaxAttempts-1 {
			break
		}

		delay := c.delayFor(lastErr, attempt)
		c.warn("attempt failed, backing off",
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", lastErr)

		if err := c.sleep(ctx, delay); err != nil {
			return fmt.Errorf("backoff interrupted: %w", err)
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// delayFor picks the provider hint when one parses, otherwise the
// exponential schedule base*2^attempt.
func (c *Controller) delayFor(err error, attempt int) time.Duration {
	if rl, ok := err.(*RateLimitedError); ok {
		if d, ok := c.parseHint(rl.Hint); ok {
			return d
		}
	}
	return c.cfg.BaseDelay * (1 << attempt)
}

// parseHint understands the two Retry-After forms: non-negative integer
// seconds and an HTTP date.
func (c *Controller) parseHint(hint string) (time.Duration, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(hint); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(hint); err == nil {
		d := at.Sub(c.now())
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func (c *Controller) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
