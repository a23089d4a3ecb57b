package reconcile

import (
	"errors"
	"fmt"
)

// Side names which store an error came from.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

var (
	// ErrConnection matches any ConnectionError.
	ErrConnection = errors.New("connection failed")

	// ErrQuery matches any QueryError.
	ErrQuery = errors.New("query failed")
)

// ConnectionError means a session with a store could not be established.
type ConnectionError struct {
	Side Side
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Side, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// QueryError means a store rejected a well-formed request.
type QueryError struct {
	Side  Side
	Op    string
	Table string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s %s on %s failed: %v", e.Side, e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Side, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }
