package reservation

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLSTATE коды, при которых PostgreSQL откатывает транзакцию целиком
const (
	codeSerializationFailure pq.ErrorCode = "40001"
	codeDeadlockDetected     pq.ErrorCode = "40P01"
)

// execError оборачивает ошибку драйвера, выделяя прерванные сервером транзакции
func execError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s - %s (%s)", ErrTxAborted, op, pqErr.Message, pqErr.Code)
		}
		return fmt.Errorf("%w: %s - %s (%s)", ErrExecQuery, op, pqErr.Message, pqErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
}
