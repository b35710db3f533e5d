package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/platform/resilience"
)

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeCheckViolation      pq.ErrorCode = "23514"
)

// classifyError maps driver errors onto the roster store taxonomy.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, roster.ErrStoreUnavailable) ||
		errors.Is(err, roster.ErrRecordNotFound) ||
		errors.Is(err, roster.ErrConstraintViolation) ||
		errors.Is(err, roster.ErrIrreconcilableSwap) {
		return err
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%s: %w: %w", op, roster.ErrStoreUnavailable, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, roster.ErrRecordNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation, codeCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, roster.ErrConstraintViolation, pqErr.Message)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, roster.ErrRecordNotFound, pqErr.Message)
		}
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%s: %w: %w", op, roster.ErrStoreUnavailable, err)
		}
		return crerr.Wrapf(err, "postgres %s (%s)", op, pqErr.Code.Name())
	}

	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %w", op, roster.ErrStoreUnavailable, err)
	}
	return crerr.Wrapf(err, "postgres %s", op)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUnavailable(err error) bool {
	return errors.Is(err, roster.ErrStoreUnavailable)
}
