package roster

import "errors"

var (
	ErrStoreUnavailable    = errors.New("team store unavailable")
	ErrRecordNotFound      = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrIrreconcilableSwap  = errors.New("irreconcilable swap")
	ErrInvalidScore        = errors.New("invalid score")
)
