package tenant

import "errors"

var (
	// ErrDomainNotFound is returned when no domain exists for the given id
	ErrDomainNotFound = errors.New("domain not found")
)
