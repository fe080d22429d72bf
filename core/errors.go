package core

import "errors"

var (
	ErrClosed              = errors.New("connection manager closed")
	ErrMalformedFrame      = errors.New("malformed frame")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidConfig       = errors.New("invalid config")
)
