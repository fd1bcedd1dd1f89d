// internal/blockchain/errors.go
package blockchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAllEndpointsDown возникает, когда ни один RPC эндпоинт не отвечает
	ErrAllEndpointsDown = errors.New("no reachable RPC endpoints")

	// ErrAccountNotFound возникает, когда аккаунт отсутствует в ledger
	ErrAccountNotFound = errors.New("account not found")

	// ErrSimulationReverted возникает, когда симуляция предсказывает revert
	ErrSimulationReverted = errors.New("transaction simulation reverted")
)

// Error представляет ошибку RPC с дополнительным контекстом
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает новую ошибку RPC
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsBlockhashExpired сообщает, относится ли ошибка к классу истечения
// blockhash: сеть больше не принимает validity anchor транзакции.
func IsBlockhashExpired(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "BlockhashNotFound") ||
		strings.Contains(msg, "Blockhash not found") ||
		strings.Contains(msg, "block height exceeded")
}
