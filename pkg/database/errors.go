package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/mall/pkg/domainerr"
)

// PostgreSQL SQLSTATE codes the classifier distinguishes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Kind is the storage failure category.
type Kind int

const (
	KindConnection Kind = iota + 1
	KindQuery
	KindDuplicate
	KindNotFound
	KindOther
)

var kindLabels = map[Kind]string{
	KindConnection: "Connection error",
	KindQuery:      "Query error",
	KindDuplicate:  "Duplicate data",
	KindNotFound:   "Data not found",
	KindOther:      "Other database error",
}

func (k Kind) String() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a storage-level failure. Message is the driver text (or a fixed
// phrase for not-found and pool timeouts) without the kind prefix.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is matches on kind, so errors.Is(err, &database.Error{Kind: database.KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NotFound is the error repositories return when a lookup yields no row.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Requested data not found"}
}

// Classify turns any error raised by pgx or database/sql into a *Error.
// A nil input yields nil and an already classified error passes through.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return de
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Kind: KindDuplicate, Message: pgErr.Message}
		case pgForeignKeyViolation:
			return &Error{Kind: KindQuery, Message: "Foreign key violation: " + pgErr.Message}
		case "":
			return &Error{Kind: KindOther, Message: pgErr.Message}
		default:
			return &Error{Kind: KindQuery, Message: pgErr.Message}
		}
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NotFound()
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &Error{Kind: KindConnection, Message: "Database connection pool timeout"}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, sql.ErrConnDone) {
		return &Error{Kind: KindConnection, Message: err.Error()}
	}

	return &Error{Kind: KindOther, Message: err.Error()}
}

// ToDomain folds a storage failure into a domain SaveError. It never produces a
// DeleteError.
func ToDomain(err *Error) *domainerr.Error {
	switch err.Kind {
	case KindNotFound:
		return domainerr.Save("Not found:" + err.Message)
	case KindDuplicate:
		return domainerr.Save("Duplicate:" + err.Message)
	default:
		return domainerr.Save(err.Error())
	}
}
