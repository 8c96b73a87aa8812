package feedback

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every call with err until err is cleared.
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Save(ctx context.Context, feedback *Feedback) error {
	f.calls++
	if err := feedback.Validate(); err != nil {
		return err
	}
	return f.err
}

func (f *flakyStore) Get(ctx context.Context, fingerprint string) (*Feedback, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) Count(ctx context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

func (f *flakyStore) Stats(ctx context.Context) (*Stats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return newStats(2, 1), nil
}

func (f *flakyStore) Delete(ctx context.Context, id int64) error { f.calls++; return f.err }

func (f *flakyStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	f.calls++
	return f.err
}

func (f *flakyStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	f.calls++
	return 1, 2, f.err
}

func (f *flakyStore) Ping(ctx context.Context) error { f.calls++; return f.err }
func (f *flakyStore) Close() error                   { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestResilientStore_PassesThrough(t *testing.T) {
	inner := &flakyStore{}
	store := NewResilientStore(inner, BreakerConfig{}, quietLogger())
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)

	imported, skipped, err := store.ImportJSON(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 2, skipped)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestResilientStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewResilientStore(inner, BreakerConfig{ConsecutiveFailures: 3, Timeout: time.Minute}, quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.Ping(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	assert.Equal(t, gobreaker.StateOpen, store.State())

	err := store.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the store")
}

func TestResilientStore_ValidationDoesNotTrip(t *testing.T) {
	inner := &flakyStore{}
	store := NewResilientStore(inner, BreakerConfig{ConsecutiveFailures: 2}, quietLogger())
	ctx := context.Background()

	invalid := sampleFeedback("Fever", true)
	invalid.Fingerprint = ""

	for i := 0; i < 5; i++ {
		assert.Error(t, store.Save(ctx, invalid))
	}

	assert.Equal(t, gobreaker.StateClosed, store.State())
	assert.NoError(t, store.Save(ctx, sampleFeedback("Fever", true)))
}

func TestResilientStore_RecoversAfterTimeout(t *testing.T) {
	inner := &flakyStore{err: errors.New("timeout")}
	store := NewResilientStore(inner, BreakerConfig{ConsecutiveFailures: 1, Timeout: 20 * time.Millisecond}, quietLogger())
	ctx := context.Background()

	require.Error(t, store.Ping(ctx))
	require.Equal(t, gobreaker.StateOpen, store.State())

	inner.err = nil
	time.Sleep(40 * time.Millisecond)

	assert.NoError(t, store.Ping(ctx))
	assert.Equal(t, gobreaker.StateClosed, store.State())
}
