package queue

import "github.com/pkg/errors"

var (
	ErrClosed       = errors.New("queue: closed")
	ErrNotFound     = errors.New("queue: no such queue")
	ErrExists       = errors.New("queue: already exists")
	ErrHandleTaken  = errors.New("queue: handle already open")
	ErrMessageSize  = errors.New("queue: message exceeds maximum size")
	ErrInvalidName  = errors.New("queue: invalid name")
	ErrInvalidAttr  = errors.New("queue: invalid attributes")
	ErrTypeMismatch = errors.New("queue: message type mismatch")
)
