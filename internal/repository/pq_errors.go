package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQLのSQLSTATE
const (
	sqlStateUniqueViolation = pq.ErrorCode("23505")
	sqlStateCheckViolation  = pq.ErrorCode("23514")
)

// isConstraintViolation はerrが指定SQLSTATEの制約違反かどうかを返す。
// constraintが空でない場合は制約名も一致する必要がある。
func isConstraintViolation(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
