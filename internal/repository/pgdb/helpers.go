package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

// postgresDuplicate сообщает, что ошибка вызвана конфликтом уникального ключа.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
