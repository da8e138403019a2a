//go:build !unix

package ptysession

import (
	"errors"
)

type sysState struct{}

// Start is not supported on this platform.
func Start(path string, args []string, opts Options) (*Session, error) {
	return nil, &SessionError{Op: "open", Err: errors.ErrUnsupported}
}

// Collect is not supported on this platform.
func (s *Session) Collect() ([]byte, error) {
	return nil, &SessionError{Op: "read", Err: errors.ErrUnsupported}
}

// Close is a no-op on this platform.
func (s *Session) Close() error {
	return nil
}
