package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/symptom-triage-server/internal/domain"
)

// ErrUnavailable is returned while the circuit around a store is open.
var ErrUnavailable = errors.New("feedback store unavailable")

// BreakerConfig tunes the circuit breaker of a ResilientStore.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	Interval            time.Duration
	Timeout             time.Duration
}

// ResilientStore guards another Store with a circuit breaker so a failing
// database is not hammered on every request. Validation errors do not count
// as failures.
type ResilientStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker
}

// NewResilientStore wraps inner.
func NewResilientStore(inner Store, cfg BreakerConfig, logger *logrus.Logger) *ResilientStore {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feedback-store",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			var validation *domain.ValidationError
			return err == nil || errors.As(err, &validation) || errors.Is(err, ErrInvalidFeedback)
		},
	})

	return &ResilientStore{inner: inner, breaker: breaker}
}

// State exposes the breaker state for health reporting.
func (r *ResilientStore) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}

func (r *ResilientStore) Save(ctx context.Context, feedback *Feedback) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Save(ctx, feedback)
	})
	return err
}

func (r *ResilientStore) Get(ctx context.Context, fingerprint string) (*Feedback, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.Get(ctx, fingerprint)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Feedback), nil
}

func (r *ResilientStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.List(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*Feedback), nil
}

func (r *ResilientStore) Count(ctx context.Context) (int64, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.Count(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (r *ResilientStore) Stats(ctx context.Context) (*Stats, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.Stats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Stats), nil
}

func (r *ResilientStore) Delete(ctx context.Context, id int64) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return err
}

func (r *ResilientStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.ExportJSON(ctx, writer)
	})
	return err
}

func (r *ResilientStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	var imported, skipped int
	_, err := r.execute(func() (interface{}, error) {
		var err error
		imported, skipped, err = r.inner.ImportJSON(ctx, reader)
		return nil, err
	})
	return imported, skipped, err
}

func (r *ResilientStore) Ping(ctx context.Context) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Ping(ctx)
	})
	return err
}

// Close closes the wrapped store. It bypasses the breaker.
func (r *ResilientStore) Close() error {
	return r.inner.Close()
}
