package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ErrScheduleTable reports a schedule table that is missing or lacks the
// expected columns. Retrying cannot fix it.
var ErrScheduleTable = errors.New("schedule table is missing or has unexpected columns")

type failure int

const (
	failPermanent failure = iota
	failTransient
	failAuth
	failSchema
)

func (f failure) String() string {
	switch f {
	case failTransient:
		return "transient"
	case failAuth:
		return "auth"
	case failSchema:
		return "schema"
	default:
		return "permanent"
	}
}

// ClickHouse server exception codes.
var exceptionFailures = map[int32]failure{
	16: failSchema, // NO_SUCH_COLUMN_IN_TABLE
	47: failSchema, // UNKNOWN_IDENTIFIER
	60: failSchema, // UNKNOWN_TABLE
	81: failSchema, // UNKNOWN_DATABASE

	159: failTransient, // TIMEOUT_EXCEEDED
	202: failTransient, // TOO_MANY_SIMULTANEOUS_QUERIES
	209: failTransient, // SOCKET_TIMEOUT
	210: failTransient, // NETWORK_ERROR

	193: failAuth, // WRONG_PASSWORD
	194: failAuth, // REQUIRED_PASSWORD
	497: failAuth, // ACCESS_DENIED
	516: failAuth, // AUTHENTICATION_FAILED
}

// Errors that crossed a text boundary still carry "code: N".
var exceptionCodePattern = regexp.MustCompile(`code:\s*(\d+)`)

var (
	authMarkers = []string{
		"authentication failed",
		"invalid credentials",
		"wrong password",
		"unknown user",
		"access denied",
	}
	transientMarkers = []string{
		"timeout",
		"eof",
		"broken pipe",
		"connection reset",
		"connection refused",
		"connection aborted",
		"connection closed",
		"use of closed network connection",
		"network is unreachable",
		"no route to host",
		"no such host",
	}
)

func classifyFailure(err error) failure {
	if err == nil || errors.Is(err, context.Canceled) {
		return failPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failTransient
	}

	var ex *clickhouse.Exception
	if errors.As(err, &ex) {
		if f, ok := exceptionFailures[ex.Code]; ok {
			return f
		}
		return failPermanent
	}

	text := strings.ToLower(err.Error())
	if m := exceptionCodePattern.FindStringSubmatch(text); m != nil {
		if code, convErr := strconv.ParseInt(m[1], 10, 32); convErr == nil {
			if f, ok := exceptionFailures[int32(code)]; ok {
				return f
			}
		}
	}
	if containsAny(text, authMarkers) {
		return failAuth
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failTransient
	}
	if containsAny(text, transientMarkers) {
		return failTransient
	}
	return failPermanent
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// retryPolicy retries transient ClickHouse failures with doubling backoff.
type retryPolicy struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
	sleep    func(context.Context, time.Duration) error
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts: 4,
		base:     200 * time.Millisecond,
		ceiling:  5 * time.Second,
		sleep:    sleepWithContext,
	}
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base
	for i := 1; i < attempt && d < p.ceiling; i++ {
		d *= 2
	}
	return min(d, p.ceiling)
}

// do runs fn until it succeeds or fails in a way retrying cannot fix.
// Schema failures come back wrapped in ErrScheduleTable.
func (p retryPolicy) do(ctx context.Context, op string, fn func() error) error {
	if p.attempts <= 0 {
		p.attempts = 1
	}
	if p.sleep == nil {
		p.sleep = sleepWithContext
	}

	for attempt := 1; ; attempt++ {
		if err := contextError(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return ctxErr
		}

		kind := classifyFailure(err)
		if kind != failTransient || attempt >= p.attempts {
			slog.Debug("ClickHouse call failed",
				slog.String("op", op),
				slog.Int("attempts", attempt),
				slog.String("failure", kind.String()),
			)
			if kind == failSchema {
				return fmt.Errorf("%w: %w", ErrScheduleTable, err)
			}
			return err
		}

		wait := p.backoff(attempt)
		slog.Debug("retrying ClickHouse call",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()),
		)
		if err := p.sleep(ctx, wait); err != nil {
			if ctxErr := contextError(ctx); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}
}

// withTotalTimeoutContext bounds all attempts together; the cause is
// DeadlineExceeded when the budget runs out.
func withTotalTimeoutContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}

	ctx, cancelCause := context.WithCancelCause(parent)
	timer := time.AfterFunc(timeout, func() {
		cancelCause(context.DeadlineExceeded)
	})

	return ctx, func() {
		timer.Stop()
		cancelCause(context.Canceled)
	}
}

func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return err
	}
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return contextError(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
