package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("provider down")

func newTestCB() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func TestCircuitBreaker_AbreAposFalhasConsecutivas(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errProvider })
		assert.ErrorIs(t, err, errProvider)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open short-circuits without calling fn
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SucessoZeraContagem(t *testing.T) {
	cb := newTestCB()

	require.Error(t, cb.Execute(func() error { return errProvider }))
	require.Error(t, cb.Execute(func() error { return errProvider }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errProvider }))
	require.Error(t, cb.Execute(func() error { return errProvider }))

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_RecuperaViaHalfOpen(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errProvider })
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two probe successes close it again
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FalhaNaProbeReabre(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errProvider })
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errProvider })
	assert.Equal(t, CBOpen, cb.State())
}
