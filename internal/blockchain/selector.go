// internal/blockchain/selector.go
package blockchain

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

// Selector выбирает живой эндпоинт из упорядоченного списка: первый в
// списке — основной, остальные — резервные. Внутри нет ни backoff, ни
// ротации: кто вызывает, тот и решает, когда пробовать снова.
type Selector struct {
	endpoints []string
	probe     func(ctx context.Context, conn *Connection) error
	logger    *zap.Logger
}

// NewSelector создает селектор из списка RPC URL в порядке приоритета.
func NewSelector(endpoints []string, logger *zap.Logger) (*Selector, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	var valid []string
	for _, urlStr := range endpoints {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		valid = append(valid, urlStr)
	}
	if len(valid) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	return &Selector{
		endpoints: valid,
		probe: func(ctx context.Context, conn *Connection) error {
			return conn.probe(ctx)
		},
		logger: logger.Named("rpc-selector"),
	}, nil
}

// Acquire пробует эндпоинты строго по порядку и возвращает сессию против
// первого живого. Основной эндпоинт всегда проверяется первым, даже если
// в прошлый раз отвечал резервный. Ошибка только когда недоступны все.
func (s *Selector) Acquire(ctx context.Context) (*Connection, error) {
	for _, endpoint := range s.endpoints {
		conn := newConnection(endpoint, s.logger)

		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.probe(probeCtx, conn)
		cancel()

		if err != nil {
			s.logger.Warn("Endpoint probe failed, falling back",
				zap.String("url", endpoint),
				zap.Error(err))
			continue
		}

		return conn, nil
	}

	return nil, ErrAllEndpointsDown
}
