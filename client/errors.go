package client

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnknownBackend = errors.New("railcache client: unknown backend")
	ErrBadOption      = errors.New("railcache client: bad option value")
)

// OpError reports a failed store operation. The adapter never shows it to its callers;
// it reaches loggers and hooks only.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("railcache client: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op, key string, err error) error {
	return &OpError{Op: op, Key: key, Err: errors.WithStack(err)}
}
