package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/feedesk/internal/log"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

// Postgres error codes the store translates into business errors
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
)

// postgresStore implements Store straight against the backend database.
// The per-entity methods live in the *_repository.go files.
type postgresStore struct {
	db     *sqlx.DB
	logger *log.Logger
}

func NewPostgresStore(db *sqlx.DB, logger *log.Logger) Store {
	if logger == nil {
		logger = log.Nop()
	}
	return &postgresStore{db: db, logger: logger.WithComponent(log.ComponentStorage)}
}

func (r *postgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// dbError logs an untranslated driver failure and wraps it as a database error
func (r *postgresStore) dbError(ctx context.Context, operation string, err error) error {
	r.logger.WarnContext(ctx, "query failed",
		log.FieldOperation, operation,
		log.FieldError, err,
	)
	return customError.WrapDatabaseError(err)
}
