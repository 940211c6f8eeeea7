package domain

import "errors"

var (
	ErrNoActiveSession = errors.New("no active vote session")
	ErrMessageGone     = errors.New("message no longer exists")
)
