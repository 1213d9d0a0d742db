package pgerrors

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE коды, которые сервис обрабатывает явно
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeExclusionViolation   = "23P01"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// Code возвращает SQLSTATE ошибки Postgres (или пустую строку)
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return Code(err) == CodeForeignKeyViolation
}

// IsExclusionViolation нарушение EXCLUDE-ограничения (пересечение интервалов)
func IsExclusionViolation(err error) bool {
	return Code(err) == CodeExclusionViolation
}

// IsSerializationFailure конфликт сериализуемых транзакций или дедлок; транзакцию можно повторить
func IsSerializationFailure(err error) bool {
	code := Code(err)
	return code == CodeSerializationFailure || code == CodeDeadlockDetected
}
