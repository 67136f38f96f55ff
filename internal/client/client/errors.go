package client

import "errors"

var (
	ErrUnavailable = errors.New("remote unavailable")
	ErrNotFound    = errors.New("remote record not found")
	ErrDecode      = errors.New("unexpected response shape")
)
