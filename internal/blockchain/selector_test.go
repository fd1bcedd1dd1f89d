// internal/blockchain/selector_test.go
package blockchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectorPrefersLivePrimary(t *testing.T) {
	s, err := NewSelector([]string{"http://primary", "http://backup"}, zap.NewNop())
	require.NoError(t, err)

	var probed []string
	s.probe = func(ctx context.Context, conn *Connection) error {
		probed = append(probed, conn.url)
		return nil
	}

	for i := 0; i < 2; i++ {
		conn, err := s.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "http://primary", conn.URL())
	}
	assert.Equal(t, []string{"http://primary", "http://primary"}, probed,
		"a live primary must never be skipped")
}

func TestSelectorFallsBackInOrder(t *testing.T) {
	s, err := NewSelector([]string{"http://primary", "http://backup", "http://last"}, zap.NewNop())
	require.NoError(t, err)

	var probed []string
	s.probe = func(ctx context.Context, conn *Connection) error {
		probed = append(probed, conn.url)
		if conn.url == "http://last" {
			return nil
		}
		return errors.New("connection refused")
	}

	conn, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://last", conn.URL())
	assert.Equal(t, []string{"http://primary", "http://backup", "http://last"}, probed)
}

func TestSelectorAllEndpointsDown(t *testing.T) {
	s, err := NewSelector([]string{"http://primary", "http://backup"}, zap.NewNop())
	require.NoError(t, err)

	s.probe = func(ctx context.Context, conn *Connection) error {
		return errors.New("connection refused")
	}

	_, err = s.Acquire(context.Background())
	require.ErrorIs(t, err, ErrAllEndpointsDown)
}

func TestNewSelectorRejectsEmptyList(t *testing.T) {
	_, err := NewSelector(nil, zap.NewNop())
	require.Error(t, err)
}

func TestNewSelectorSkipsInvalidURLs(t *testing.T) {
	s, err := NewSelector([]string{"://bad", "http://good"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://good"}, s.endpoints)
}
