package grafana

import (
	"context"
	"errors"
	"ixadmin/internal/logging"
	"ixadmin/internal/metrics"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// newBreaker opens after 60% of at least 10 calls in a one minute window
// fail, and probes again after 30 seconds with up to 3 requests.
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			// A 4xx or an abandoned request is the caller's fault, not an outage.
			var gone *callerGoneError
			if errors.As(err, &gone) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// callerGoneError marks a failed call whose context ended first, such as a
// live tick that gave up before a slow upstream answered.
type callerGoneError struct {
	err error
}

func (e *callerGoneError) Error() string { return e.err.Error() }
func (e *callerGoneError) Unwrap() error { return e.err }

// guarded wraps fn so that failures seen after ctx is done come back as
// callerGoneError and do not count towards tripping the breaker.
func guarded(ctx context.Context, fn func() ([]byte, error)) func() ([]byte, error) {
	return func() ([]byte, error) {
		data, err := fn()
		if err != nil && ctx.Err() != nil {
			return nil, &callerGoneError{err: err}
		}
		return data, err
	}
}

func recordBreakerResult(name string, err error) {
	var gone *callerGoneError
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.As(err, &gone):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "canceled").Inc()
	case IsBreakerOpen(err):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

// IsBreakerOpen reports whether err is a rejection by an open or saturated
// half-open breaker.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
