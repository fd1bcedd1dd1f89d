// internal/blockchain/connection.go
package blockchain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Connection представляет живую сессию против одного RPC эндпоинта.
// При любом сбое соединение заменяется целиком через Selector, а не
// чинится на месте.
type Connection struct {
	rpc    *rpc.Client
	url    string
	logger *zap.Logger
}

func newConnection(url string, logger *zap.Logger) *Connection {
	return &Connection{
		rpc:    rpc.New(url),
		url:    url,
		logger: logger,
	}
}

// URL возвращает адрес эндпоинта, за которым закреплена сессия.
func (c *Connection) URL() string {
	return c.url
}

// probe проверяет подключение к RPC узлу
func (c *Connection) probe(ctx context.Context) error {
	// Пробуем получить версию узла как более легкий запрос
	version, err := c.rpc.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	// Если версия получена успешно, пробуем получить последний блокхеш
	_, err = c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", c.url),
		zap.String("solana_core", version.SolanaCore))

	return nil
}

// Slot возвращает текущую высоту сети.
func (c *Connection) Slot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, NewError(err, c.url, "getSlot")
	}
	return slot, nil
}

// AccountData возвращает сырые байты аккаунта.
func (c *Connection) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, NewError(err, c.url, "getAccountInfo")
	}
	if result.Value == nil {
		return nil, NewError(fmt.Errorf("%w: %s", ErrAccountNotFound, account), c.url, "getAccountInfo")
	}
	return result.Value.Data.GetBinary(), nil
}

// LatestBlockhash возвращает свежий blockhash и высоту, до которой он валиден.
func (c *Connection) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, 0, NewError(err, c.url, "getLatestBlockhash")
	}
	return result.Value.Blockhash, result.Value.LastValidBlockHeight, nil
}

// FeeForMessage запрашивает стоимость подготовленного сообщения в лампортах.
// nil означает, что узел не смог оценить сообщение.
func (c *Connection) FeeForMessage(ctx context.Context, msg *solana.Message) (*uint64, error) {
	encoded, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := c.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(encoded), rpc.CommitmentConfirmed)
	if err != nil {
		return nil, NewError(err, c.url, "getFeeForMessage")
	}
	return result.Value, nil
}

// Simulate выполняет dry-run транзакции без коммита. Возвращает
// ErrSimulationReverted, если исполнение завершилось бы ошибкой.
func (c *Connection) Simulate(ctx context.Context, tx *solana.Transaction) error {
	result, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return NewError(err, c.url, "simulateTransaction")
	}
	if result.Value != nil && result.Value.Err != nil {
		return fmt.Errorf("%w: %v", ErrSimulationReverted, result.Value.Err)
	}
	return nil
}

// Send отправляет подписанную транзакцию в сеть.
func (c *Connection) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, NewError(err, c.url, "sendTransaction")
	}
	return sig, nil
}
