package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
)

func ReadFailure(op string, err error) error {
	return domainagg.Wrap(domainagg.CodeReadFailure, op, fmt.Errorf("load child values: %w", err))
}

func WriteFailure(op string, err error) error {
	return domainagg.Wrap(domainagg.CodeWriteFailure, op, fmt.Errorf("write parent rollup: %w", err))
}

var pgErrorCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,  // unique_violation
	"23503": domainagg.CodeNotFound,  // foreign_key_violation
	"40001": domainagg.CodeRetryable, // serialization_failure
	"40P01": domainagg.CodeRetryable, // deadlock_detected
	"55P03": domainagg.CodeRetryable, // lock_not_available
}

// Drivers without typed errors (sqlite) are classified by message.
var messageCodes = []struct {
	fragment string
	code     domainagg.ErrorCode
}{
	{"duplicate key", domainagg.CodeConflict},
	{"unique constraint", domainagg.CodeConflict},
	{"foreign key constraint", domainagg.CodeNotFound},
	{"database is locked", domainagg.CodeRetryable},
	{"deadlock", domainagg.CodeRetryable},
	{"could not serialize", domainagg.CodeRetryable},
	{"timeout", domainagg.CodeRetryable},
}

// MapError classifies a persistence failure under op. Errors that already carry a
// code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domainagg.CodeOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, ok := pgErrorCodes[pgErr.Code]; ok {
			return domainagg.Wrap(code, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range messageCodes {
		if strings.Contains(msg, m.fragment) {
			return domainagg.Wrap(m.code, op, err)
		}
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}
